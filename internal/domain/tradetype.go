package domain

import (
	"optionsjournal/internal/timeutil"
)

// Types classifies the trade by holding horizon. The result is empty when
// entry or expiry timestamps are missing (such trades are excluded from all
// day-based bucketing), otherwise it contains either {0dte} or {swing} with
// an optional additional {swing-day} tag.
//
// A swing trade earns swing-day only when it is not treat-as-loss, has at
// least one recorded high, and every recorded high (not just the selected
// exit) falls on the entry calendar day.
func (t *Trade) Types() []TradeType {
	if t.EntryTime.IsZero() || t.ExpiryTime.IsZero() {
		return nil
	}
	if timeutil.SameCalendarDay(t.EntryTime, t.ExpiryTime) {
		return []TradeType{TypeZeroDTE}
	}
	types := []TradeType{TypeSwing}
	if t.isSwingDay() {
		types = append(types, TypeSwingDay)
	}
	return types
}

func (t *Trade) isSwingDay() bool {
	if t.TreatAsLoss || len(t.Highs) == 0 {
		return false
	}
	for _, h := range t.Highs {
		if !timeutil.SameCalendarDay(h.ObservedAt, t.EntryTime) {
			return false
		}
	}
	return true
}

// PrimaryType reduces the tag set to a single mutually exclusive label with
// 0dte > swing-day > swing precedence. Empty string when unclassifiable.
func (t *Trade) PrimaryType() TradeType {
	types := t.Types()
	if len(types) == 0 {
		return ""
	}
	if types[0] == TypeZeroDTE {
		return TypeZeroDTE
	}
	if len(types) > 1 {
		return TypeSwingDay
	}
	return TypeSwing
}

// HasType reports whether the trade carries the given classification tag.
func (t *Trade) HasType(tt TradeType) bool {
	for _, candidate := range t.Types() {
		if candidate == tt {
			return true
		}
	}
	return false
}
