package domain

// OptionType represents the side of an option contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// TradeType classifies a trade by its holding horizon.
type TradeType string

const (
	// TypeZeroDTE marks trades entered and expiring on the same calendar day.
	TypeZeroDTE TradeType = "0dte"
	// TypeSwing marks multi-day trades.
	TypeSwing TradeType = "swing"
	// TypeSwingDay marks swing trades whose recorded highs all occurred on
	// the entry day, i.e. trades that completed as day trades.
	TypeSwingDay TradeType = "swing-day"
)

// VerifiedFilter selects trades by their verification flag.
type VerifiedFilter string

const (
	VerifiedAll  VerifiedFilter = "all"
	VerifiedOnly VerifiedFilter = "verified"
	Unverified   VerifiedFilter = "unverified"
)
