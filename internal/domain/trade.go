package domain

import "time"

// Trade represents one logged option position and its recorded price highs.
type Trade struct {
	ID             string            `json:"id"`                       // Opaque unique identifier, assigned at creation
	Ticker         string            `json:"ticker"`                   // Instrument symbol, uppercase
	AverageEntry   float64           `json:"averageEntryPrice"`        // Cost basis per contract unit
	StrikePrice    float64           `json:"strikePrice"`              // Informational, no effect on P/L math
	OptionType     OptionType        `json:"optionType"`               // call or put
	EntryTime      time.Time         `json:"entryTimestamp"`           // When the position was opened
	ExpiryTime     time.Time         `json:"expiryTimestamp"`          // Contract expiry
	Verified       bool              `json:"verified"`                 // Filterable flag, no computational effect
	Excluded       bool              `json:"excluded"`                 // Omitted from aggregate statistics when true
	TreatAsLoss    bool              `json:"treatAsLoss"`              // Forces a fixed full loss regardless of highs
	HighOverrideID string            `json:"highOverrideId,omitempty"` // Pins one high as the exit price, bypassing selection
	Highs          []HighObservation `json:"highs"`                    // Owned exclusively by this trade, may be empty
	Images         []string          `json:"images,omitempty"`         // Opaque URLs, no computational role
}

// HighObservation is one recorded post-entry price peak.
type HighObservation struct {
	ID         string    `json:"id"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
}

// FindHigh returns the high with the given id, or nil if the trade owns no
// such observation. An unresolvable id is not an error: callers fall through
// to normal exit selection.
func (t *Trade) FindHigh(id string) *HighObservation {
	if id == "" {
		return nil
	}
	for i := range t.Highs {
		if t.Highs[i].ID == id {
			return &t.Highs[i]
		}
	}
	return nil
}

// OverrideHigh resolves HighOverrideID against the trade's own highs.
func (t *Trade) OverrideHigh() *HighObservation {
	return t.FindHigh(t.HighOverrideID)
}

// TradePatch carries a partial update. Nil fields are left untouched.
// HighOverrideID set to the empty string clears the override.
type TradePatch struct {
	Ticker         *string     `json:"ticker,omitempty"`
	AverageEntry   *float64    `json:"averageEntryPrice,omitempty"`
	StrikePrice    *float64    `json:"strikePrice,omitempty"`
	OptionType     *OptionType `json:"optionType,omitempty"`
	EntryTime      *time.Time  `json:"entryTimestamp,omitempty"`
	ExpiryTime     *time.Time  `json:"expiryTimestamp,omitempty"`
	Verified       *bool       `json:"verified,omitempty"`
	Excluded       *bool       `json:"excluded,omitempty"`
	TreatAsLoss    *bool       `json:"treatAsLoss,omitempty"`
	HighOverrideID *string     `json:"highOverrideId,omitempty"`
	Images         *[]string   `json:"images,omitempty"`
}

// Apply copies the set fields of the patch onto the trade.
func (p *TradePatch) Apply(t *Trade) {
	if p.Ticker != nil {
		t.Ticker = *p.Ticker
	}
	if p.AverageEntry != nil {
		t.AverageEntry = *p.AverageEntry
	}
	if p.StrikePrice != nil {
		t.StrikePrice = *p.StrikePrice
	}
	if p.OptionType != nil {
		t.OptionType = *p.OptionType
	}
	if p.EntryTime != nil {
		t.EntryTime = *p.EntryTime
	}
	if p.ExpiryTime != nil {
		t.ExpiryTime = *p.ExpiryTime
	}
	if p.Verified != nil {
		t.Verified = *p.Verified
	}
	if p.Excluded != nil {
		t.Excluded = *p.Excluded
	}
	if p.TreatAsLoss != nil {
		t.TreatAsLoss = *p.TreatAsLoss
	}
	if p.HighOverrideID != nil {
		t.HighOverrideID = *p.HighOverrideID
	}
	if p.Images != nil {
		t.Images = *p.Images
	}
}
