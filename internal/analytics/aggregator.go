package analytics

import (
	"context"
	"sort"
	"time"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/pnl"
	"optionsjournal/internal/ports"
	"optionsjournal/internal/timeutil"
)

// Aggregator computes a Summary from a trade snapshot and the per-trade P/L
// map produced by the same engine. The engine is needed again here because
// the timing statistics run over each trade's eligible (filtered) highs.
type Aggregator struct {
	engine *pnl.Engine
	logger ports.Logger
}

// NewAggregator creates an aggregator bound to one engine configuration.
func NewAggregator(engine *pnl.Engine, logger ports.Logger) *Aggregator {
	return &Aggregator{engine: engine, logger: logger}
}

// Summarize aggregates all non-excluded trades. A trade missing from the
// P/L map is a caller contract violation: it is logged and skipped, never a
// crash. An empty input yields zero counts and nil timing statistics.
func (a *Aggregator) Summarize(ctx context.Context, trades []*domain.Trade, results map[string]pnl.Result) *Summary {
	s := &Summary{}

	var positiveDollars, absoluteDollars float64
	var highGaps, highLowGaps []time.Duration

	for _, t := range trades {
		if t.Excluded {
			continue
		}
		r, ok := results[t.ID]
		if !ok {
			if a.logger != nil {
				a.logger.Warn(ctx, "trade missing from P/L map, skipping in aggregation", map[string]interface{}{"tradeID": t.ID})
			}
			continue
		}

		s.TotalProfitDollars += r.Dollars
		s.TotalCostDollars += t.AverageEntry * pnl.ContractMultiplier

		// A zero-dollar outcome counts as a loss, not a push.
		win := !t.TreatAsLoss && r.Dollars > 0
		if win {
			s.WinCount++
			positiveDollars += r.Dollars
		} else {
			s.LossCount++
		}
		if r.Dollars >= 0 {
			absoluteDollars += r.Dollars
		} else {
			absoluteDollars -= r.Dollars
		}

		switch t.OptionType {
		case domain.Call:
			s.Calls++
		case domain.Put:
			s.Puts++
		}
		for _, tt := range t.Types() {
			switch tt {
			case domain.TypeZeroDTE:
				s.ZeroDTE++
			case domain.TypeSwing:
				s.Swings++
			case domain.TypeSwingDay:
				s.SwingsDay++
			}
		}

		if !t.EntryTime.IsZero() {
			if idx, ok := timeutil.WeekdayIndex(t.EntryTime.Weekday()); ok {
				s.TradesByDay[idx]++
				s.PLByDayBought[idx] += r.Dollars
				if win {
					s.WinLossByDay[idx].Wins++
				} else {
					s.WinLossByDay[idx].Losses++
				}
			}
		}

		if soldAt, ok := exitDay(t, r); ok {
			if idx, ok := timeutil.WeekdayIndex(soldAt.Weekday()); ok {
				s.PLByDaySold[idx] += r.Dollars
			}
		}

		a.collectTimingGaps(t, &highGaps, &highLowGaps)
	}

	if n := s.WinCount + s.LossCount; n > 0 {
		s.WinRatio = float64(s.WinCount) / float64(n) * 100
	}
	if absoluteDollars > 0 {
		s.WeightedWinRatio = positiveDollars / absoluteDollars * 100
	}
	if s.TotalCostDollars != 0 {
		s.TotalPercent = s.TotalProfitDollars / s.TotalCostDollars * 100
	}

	s.AvgTimeBetweenHighs = millisPtr(meanDuration(highGaps))
	s.MedianTimeBetweenHighs = millisPtr(medianDuration(highGaps))
	s.AvgHighToLow = millisPtr(meanDuration(highLowGaps))
	s.MedianHighToLow = millisPtr(medianDuration(highLowGaps))

	return s
}

// exitDay resolves the weekday a trade was sold on: the selected exit high
// when one exists, else the expiry-or-entry timestamp.
func exitDay(t *domain.Trade, r pnl.Result) (time.Time, bool) {
	switch {
	case r.Exit != nil && !r.Exit.ObservedAt.IsZero():
		return r.Exit.ObservedAt, true
	case !t.ExpiryTime.IsZero():
		return t.ExpiryTime, true
	case !t.EntryTime.IsZero():
		return t.EntryTime, true
	}
	return time.Time{}, false
}

// collectTimingGaps records, for trades with at least two eligible highs,
// the successive chronological gaps between highs and the absolute gap
// between the two highest-priced highs.
func (a *Aggregator) collectTimingGaps(t *domain.Trade, highGaps, highLowGaps *[]time.Duration) {
	highs := a.engine.FilterHighs(t)
	if len(highs) < 2 {
		return
	}

	chron := make([]time.Time, len(highs))
	for i, h := range highs {
		chron[i] = h.ObservedAt
	}
	sort.Slice(chron, func(i, j int) bool { return chron[i].Before(chron[j]) })
	for i := 1; i < len(chron); i++ {
		*highGaps = append(*highGaps, chron[i].Sub(chron[i-1]))
	}

	byPrice := make([]domain.HighObservation, len(highs))
	copy(byPrice, highs)
	sort.SliceStable(byPrice, func(i, j int) bool { return byPrice[i].Price > byPrice[j].Price })
	gap := byPrice[0].ObservedAt.Sub(byPrice[1].ObservedAt)
	if gap < 0 {
		gap = -gap
	}
	*highLowGaps = append(*highLowGaps, gap)
}

func meanDuration(ds []time.Duration) *time.Duration {
	if len(ds) == 0 {
		return nil
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	mean := sum / time.Duration(len(ds))
	return &mean
}

func medianDuration(ds []time.Duration) *time.Duration {
	if len(ds) == 0 {
		return nil
	}
	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &median
}
