// Package filters narrows trade lists for display: date range, verification,
// ticker, trade type, and weekday selection, plus the available-filter
// options derived from a snapshot. High-price eligibility filtering is a
// different concern and lives in pnl.
package filters

import (
	"sort"
	"strings"
	"time"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/timeutil"
)

// Query is a set of trade-list filters. Zero-valued fields select everything.
type Query struct {
	StartDate  *time.Time            `json:"startDate,omitempty"`
	EndDate    *time.Time            `json:"endDate,omitempty"`
	Verified   domain.VerifiedFilter `json:"verified,omitempty"`
	Tickers    []string              `json:"tickers,omitempty"`
	TradeTypes []domain.TradeType    `json:"tradeTypes,omitempty"`
	DaysOfWeek []string              `json:"daysOfWeek,omitempty"`
	SortBy     string                `json:"sortBy,omitempty"` // "newest" (default) or "oldest"
}

// Apply runs every filter of the query in sequence and sorts the result.
// The input slice is never mutated.
func Apply(trades []*domain.Trade, q Query) []*domain.Trade {
	result := ByDate(trades, q.StartDate, q.EndDate)
	result = ByVerified(result, q.Verified)
	result = ByTickers(result, q.Tickers)
	result = ByTradeTypes(result, q.TradeTypes)
	result = ByDaysOfWeek(result, q.DaysOfWeek)
	return SortByDate(result, q.SortBy)
}

// ByDate keeps trades whose entry time falls inside the inclusive range.
// Trades without an entry time never match a date filter.
func ByDate(trades []*domain.Trade, start, end *time.Time) []*domain.Trade {
	if start == nil && end == nil {
		return trades
	}
	var out []*domain.Trade
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		if start != nil && t.EntryTime.Before(*start) {
			continue
		}
		if end != nil && t.EntryTime.After(*end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ByVerified keeps trades matching the verification selector.
func ByVerified(trades []*domain.Trade, v domain.VerifiedFilter) []*domain.Trade {
	if v == "" || v == domain.VerifiedAll {
		return trades
	}
	var out []*domain.Trade
	for _, t := range trades {
		if (v == domain.VerifiedOnly) == t.Verified {
			out = append(out, t)
		}
	}
	return out
}

// ByTickers keeps trades whose ticker is in the selection, compared
// case-insensitively.
func ByTickers(trades []*domain.Trade, tickers []string) []*domain.Trade {
	if len(tickers) == 0 {
		return trades
	}
	want := make(map[string]struct{}, len(tickers))
	for _, tk := range tickers {
		if tk = strings.ToUpper(strings.TrimSpace(tk)); tk != "" {
			want[tk] = struct{}{}
		}
	}
	var out []*domain.Trade
	for _, t := range trades {
		if _, ok := want[strings.ToUpper(t.Ticker)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ByTradeTypes keeps trades carrying any of the selected classification
// tags. Unclassifiable trades (missing timestamps) never match.
func ByTradeTypes(trades []*domain.Trade, types []domain.TradeType) []*domain.Trade {
	if len(types) == 0 {
		return trades
	}
	var out []*domain.Trade
	for _, t := range trades {
		for _, want := range types {
			if t.HasType(want) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// ByDaysOfWeek keeps trades entered on one of the selected weekdays,
// given as lowercase English day names.
func ByDaysOfWeek(trades []*domain.Trade, days []string) []*domain.Trade {
	if len(days) == 0 {
		return trades
	}
	want := make(map[string]struct{}, len(days))
	for _, d := range days {
		want[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	var out []*domain.Trade
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		if _, ok := want[strings.ToLower(timeutil.DayName(t.EntryTime))]; ok {
			out = append(out, t)
		}
	}
	return out
}

// SortByDate returns a copy of trades ordered by entry time, newest first
// unless order is "oldest".
func SortByDate(trades []*domain.Trade, order string) []*domain.Trade {
	sorted := make([]*domain.Trade, len(trades))
	copy(sorted, trades)
	oldest := order == "oldest"
	sort.SliceStable(sorted, func(i, j int) bool {
		if oldest {
			return sorted[i].EntryTime.Before(sorted[j].EntryTime)
		}
		return sorted[j].EntryTime.Before(sorted[i].EntryTime)
	})
	return sorted
}

// Available describes the filter options present in a trade snapshot, used
// to populate the dashboard's filter widgets.
type Available struct {
	Tickers    []string           `json:"tickers"`
	TradeTypes []domain.TradeType `json:"tradeTypes"`
	DaysOfWeek []string           `json:"daysOfWeek"`
	DaysPassed []int              `json:"daysPassed"`
}

// AvailableFilters collects the distinct tickers, trade types, entry
// weekdays (Monday-first), and high-observation day offsets present in the
// snapshot.
func AvailableFilters(trades []*domain.Trade) Available {
	tickerSet := make(map[string]struct{})
	typeSet := make(map[domain.TradeType]struct{})
	daySet := make(map[string]struct{})
	daysPassedSet := make(map[int]struct{})

	for _, t := range trades {
		if t.Ticker != "" {
			tickerSet[strings.ToUpper(t.Ticker)] = struct{}{}
		}
		for _, tt := range t.Types() {
			typeSet[tt] = struct{}{}
		}
		if !t.EntryTime.IsZero() {
			daySet[timeutil.DayName(t.EntryTime)] = struct{}{}
			for _, h := range t.Highs {
				if h.ObservedAt.IsZero() {
					continue
				}
				daysPassedSet[timeutil.CalendarDaysBetween(t.EntryTime, h.ObservedAt)] = struct{}{}
			}
		}
	}

	av := Available{
		Tickers:    make([]string, 0, len(tickerSet)),
		TradeTypes: make([]domain.TradeType, 0, len(typeSet)),
		DaysOfWeek: make([]string, 0, len(daySet)),
		DaysPassed: make([]int, 0, len(daysPassedSet)),
	}
	for tk := range tickerSet {
		av.Tickers = append(av.Tickers, tk)
	}
	sort.Strings(av.Tickers)
	for tt := range typeSet {
		av.TradeTypes = append(av.TradeTypes, tt)
	}
	sort.Slice(av.TradeTypes, func(i, j int) bool { return av.TradeTypes[i] < av.TradeTypes[j] })
	// Monday-first week order, weekends included when present.
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		if _, ok := daySet[day]; ok {
			av.DaysOfWeek = append(av.DaysOfWeek, day)
		}
	}
	for d := range daysPassedSet {
		av.DaysPassed = append(av.DaysPassed, d)
	}
	sort.Ints(av.DaysPassed)
	return av
}
