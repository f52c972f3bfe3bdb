package pnl

import (
	"sort"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/timeutil"
)

// Engine applies one fixed Options set to trades. It holds no mutable state
// and is safe to share; callers rebuild derived results from a fresh trade
// snapshot after any mutation.
type Engine struct {
	opts Options
}

// NewEngine creates an engine for the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Result is the realized P/L of a single trade.
type Result struct {
	Dollars float64 `json:"dollars"`
	Percent float64 `json:"percent"`
	// Exit is the observation the trade sold into, when the exit was a
	// concrete recorded high. Nil for synthetic (average/median) exits,
	// treat-as-loss trades, and the no-highs loss fallback.
	Exit *domain.HighObservation `json:"-"`
}

// FilterHighs reduces the trade's highs to those eligible for exit
// selection. Treat-as-loss trades and trades without highs always yield an
// empty result. Order is preserved; sorting belongs to selection.
func (e *Engine) FilterHighs(t *domain.Trade) []domain.HighObservation {
	if t.TreatAsLoss || len(t.Highs) == 0 {
		return nil
	}
	eligible := make([]domain.HighObservation, 0, len(t.Highs))
	gainLimit, gainSet := e.opts.Filter.gainLimit()
	for _, h := range t.Highs {
		if gainSet && percentGain(t.AverageEntry, h.Price) > gainLimit {
			continue
		}
		if cutoff := e.opts.Filter.MaxHighTimeOfDay; cutoff != "" && timeutil.TimeOfDay(h.ObservedAt) > cutoff {
			continue
		}
		if max := e.opts.Filter.MaxDaysPassed; max != nil && timeutil.CalendarDaysBetween(t.EntryTime, h.ObservedAt) > *max {
			continue
		}
		eligible = append(eligible, h)
	}
	return eligible
}

// ExitResult is the price a selection produced. High is nil for the
// synthetic average/median policies, whose result has no identity and can
// never serve as an override target.
type ExitResult struct {
	Price float64
	High  *domain.HighObservation
}

// SelectExit picks the representative exit among the eligible highs
// according to the engine's policy. Nil when highs is empty. This never
// consults treat-as-loss or overrides; that logic lives in Compute.
func SelectExit(highs []domain.HighObservation, policy ExitPolicy) *ExitResult {
	if len(highs) == 0 {
		return nil
	}
	switch policy.Kind {
	case PolicyAverage:
		var sum float64
		for _, h := range highs {
			sum += h.Price
		}
		return &ExitResult{Price: sum / float64(len(highs))}
	case PolicyMedian:
		prices := make([]float64, len(highs))
		for i, h := range highs {
			prices[i] = h.Price
		}
		sort.Float64s(prices)
		mid := len(prices) / 2
		if len(prices)%2 == 0 {
			return &ExitResult{Price: (prices[mid-1] + prices[mid]) / 2}
		}
		return &ExitResult{Price: prices[mid]}
	default:
		// Stable sort keeps ties in their original relative order.
		sorted := make([]domain.HighObservation, len(highs))
		copy(sorted, highs)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
		rank := policy.Rank
		if rank < 0 {
			rank = 0
		}
		if rank > len(sorted)-1 {
			rank = len(sorted) - 1
		}
		return &ExitResult{Price: sorted[rank].Price, High: &sorted[rank]}
	}
}

// SelectExit applies the engine's configured policy.
func (e *Engine) SelectExit(highs []domain.HighObservation) *ExitResult {
	return SelectExit(highs, e.opts.Policy)
}

// Compute derives the trade's realized P/L. Resolution order, first match
// wins:
//
//  1. treat-as-loss: fixed full loss, ignoring the loss modifier;
//  2. a resolvable high override: that high is the exit unconditionally,
//     even if filtering would exclude it;
//  3. filter then select: the chosen exit prices the trade;
//  4. no eligible high: the modifier-driven loss.
//
// Pure function of its inputs; a zero entry price propagates as a
// non-finite percent rather than a panic.
func (e *Engine) Compute(t *domain.Trade) Result {
	if t.TreatAsLoss {
		return Result{
			Dollars: -t.AverageEntry * ContractMultiplier,
			Percent: -100,
		}
	}

	if override := t.OverrideHigh(); override != nil {
		return e.priced(t, override.Price, override)
	}

	if sel := e.SelectExit(e.FilterHighs(t)); sel != nil {
		return e.priced(t, sel.Price, sel.High)
	}

	lossPercent := -e.opts.lossModifier()
	return Result{
		Dollars: (lossPercent / 100) * t.AverageEntry * ContractMultiplier,
		Percent: lossPercent,
	}
}

func (e *Engine) priced(t *domain.Trade, exitPrice float64, exit *domain.HighObservation) Result {
	return Result{
		Dollars: (exitPrice - t.AverageEntry) * ContractMultiplier,
		Percent: percentGain(t.AverageEntry, exitPrice),
		Exit:    exit,
	}
}

// ComputeAll scores every non-excluded trade. The returned map is the
// contract input of analytics aggregation: excluded trades appear in
// neither the map nor the statistics.
func (e *Engine) ComputeAll(trades []*domain.Trade) map[string]Result {
	results := make(map[string]Result, len(trades))
	for _, t := range trades {
		if t.Excluded {
			continue
		}
		results[t.ID] = e.Compute(t)
	}
	return results
}

func percentGain(entry, price float64) float64 {
	return (price - entry) / entry * 100
}
