// Package pnl derives a single realized profit/loss per trade from its
// recorded high-price observations. It is the one authoritative home of the
// high filtering, exit selection, and P/L rules; every consumer (statistics,
// HTTP, CLI) goes through an Engine rather than re-deriving any of them.
package pnl

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ContractMultiplier converts per-unit option prices into dollar amounts.
// It models the standard 100-share contract and is not configurable.
const ContractMultiplier = 100.0

// DefaultLossModifierPercent is the loss applied when no eligible high
// remains to sell into: a full loss of the entry cost.
const DefaultLossModifierPercent = 100.0

// FilterConfig reduces a trade's highs to the subset eligible for exit
// selection. Each constraint is independently optional; an unset (nil, NaN,
// or empty) constraint filters nothing. Enabled constraints are ANDed.
type FilterConfig struct {
	// MaxGainPercent excludes highs whose gain over the entry price exceeds
	// this percentage.
	MaxGainPercent *float64 `json:"maxGainPercent,omitempty"`
	// MaxHighTimeOfDay excludes highs whose wall-clock "HH:MM" component
	// sorts after this cutoff.
	MaxHighTimeOfDay string `json:"maxHighTimeOfDay,omitempty"`
	// MaxDaysPassed excludes highs observed more than this many calendar
	// days after entry.
	MaxDaysPassed *int `json:"maxDaysPassed,omitempty"`
}

func (c FilterConfig) gainLimit() (float64, bool) {
	if c.MaxGainPercent == nil || math.IsNaN(*c.MaxGainPercent) {
		return 0, false
	}
	return *c.MaxGainPercent, true
}

// PolicyKind discriminates the exit-selection policies.
type PolicyKind int

const (
	// PolicyRank picks the high at a fixed ordinal rank of the
	// price-descending order (rank 0 is the highest price).
	PolicyRank PolicyKind = iota
	// PolicyAverage sells at the arithmetic mean of all eligible highs.
	PolicyAverage
	// PolicyMedian sells at the median of all eligible highs.
	PolicyMedian
)

// ExitPolicy selects which eligible high (or synthetic price) represents the
// realized sale. The zero value is rank 0, selling at the highest high.
type ExitPolicy struct {
	Kind PolicyKind
	Rank int
}

func RankPolicy(rank int) ExitPolicy { return ExitPolicy{Kind: PolicyRank, Rank: rank} }
func AveragePolicy() ExitPolicy      { return ExitPolicy{Kind: PolicyAverage} }
func MedianPolicy() ExitPolicy       { return ExitPolicy{Kind: PolicyMedian} }

// ParseExitPolicy accepts the wire forms of an exit policy: a non-negative
// integer rank, "avg" (or "average"), or "median".
func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "avg", "average":
		return AveragePolicy(), nil
	case "median":
		return MedianPolicy(), nil
	}
	rank, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || rank < 0 {
		return ExitPolicy{}, fmt.Errorf("invalid exit policy %q", s)
	}
	return RankPolicy(rank), nil
}

// UnmarshalJSON accepts either a JSON number (rank) or the literals
// "avg"/"average"/"median".
func (p *ExitPolicy) UnmarshalJSON(data []byte) error {
	var rank int
	if err := json.Unmarshal(data, &rank); err == nil {
		if rank < 0 {
			return fmt.Errorf("exit policy rank must be non-negative, got %d", rank)
		}
		*p = RankPolicy(rank)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("exit policy must be a rank or \"avg\"/\"median\"")
	}
	parsed, err := ParseExitPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON renders the policy in its wire form.
func (p ExitPolicy) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PolicyAverage:
		return json.Marshal("avg")
	case PolicyMedian:
		return json.Marshal("median")
	default:
		return json.Marshal(p.Rank)
	}
}

// Options bundles everything the engine needs to score a trade.
type Options struct {
	Filter FilterConfig `json:"filter"`
	Policy ExitPolicy   `json:"exitPolicy"`
	// LossModifierPercent is the percentage lost when no eligible high
	// exists. Nil means the default full loss of 100.
	LossModifierPercent *float64 `json:"lossModifierPercent,omitempty"`
}

func (o Options) lossModifier() float64 {
	if o.LossModifierPercent == nil {
		return DefaultLossModifierPercent
	}
	return *o.LossModifierPercent
}
