package analytics

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/pnl"
)

// captureLogger records warnings so tests can assert skip behaviour.
type captureLogger struct {
	warns []string
}

func (l *captureLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (l *captureLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (l *captureLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.warns = append(l.warns, msg)
}
func (l *captureLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var monday = time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func newAggregator(opts pnl.Options) (*Aggregator, *pnl.Engine, *captureLogger) {
	engine := pnl.NewEngine(opts)
	logger := &captureLogger{}
	return NewAggregator(engine, logger), engine, logger
}

func TestSummarizeEmpty(t *testing.T) {
	agg, engine, _ := newAggregator(pnl.Options{})
	s := agg.Summarize(context.Background(), nil, engine.ComputeAll(nil))

	if s.WinCount != 0 || s.LossCount != 0 || s.TotalProfitDollars != 0 {
		t.Errorf("empty input: got counts %d/%d, dollars %v", s.WinCount, s.LossCount, s.TotalProfitDollars)
	}
	if s.AvgTimeBetweenHighs != nil || s.MedianTimeBetweenHighs != nil ||
		s.AvgHighToLow != nil || s.MedianHighToLow != nil {
		t.Error("empty input: timing statistics must be nil")
	}
}

func TestSummarizeRatios(t *testing.T) {
	// One +100 win against two -50 losses: the plain ratio and the
	// dollar-weighted ratio must diverge.
	friday := time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		{
			ID: "a", Ticker: "SPY", AverageEntry: 1.0, OptionType: domain.Call,
			EntryTime: monday, ExpiryTime: friday,
			Highs: []domain.HighObservation{{ID: "h1", Price: 2.0, ObservedAt: monday.Add(time.Hour)}},
		},
		{
			ID: "b", Ticker: "SPY", AverageEntry: 1.0, OptionType: domain.Put,
			EntryTime: monday, ExpiryTime: friday,
		},
		{
			ID: "c", Ticker: "SPY", AverageEntry: 1.0, OptionType: domain.Put,
			EntryTime: monday, ExpiryTime: friday,
		},
	}
	agg, engine, _ := newAggregator(pnl.Options{LossModifierPercent: floatPtr(50)})
	s := agg.Summarize(context.Background(), trades, engine.ComputeAll(trades))

	if s.WinCount != 1 || s.LossCount != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", s.WinCount, s.LossCount)
	}
	if got := s.WinRatio; got < 33.3 || got > 33.4 {
		t.Errorf("WinRatio = %v, want 33.33", got)
	}
	// positive 100 over absolute 200.
	if s.WeightedWinRatio != 50 {
		t.Errorf("WeightedWinRatio = %v, want 50", s.WeightedWinRatio)
	}
	if s.TotalProfitDollars != 0 {
		t.Errorf("TotalProfitDollars = %v, want 0", s.TotalProfitDollars)
	}
	if s.TotalCostDollars != 300 {
		t.Errorf("TotalCostDollars = %v, want 300", s.TotalCostDollars)
	}
	if s.Calls != 1 || s.Puts != 2 {
		t.Errorf("composition = %d calls / %d puts, want 1/2", s.Calls, s.Puts)
	}
	// a: swing + swing-day (single same-day high); b, c: plain swings.
	if s.Swings != 3 || s.SwingsDay != 1 || s.ZeroDTE != 0 {
		t.Errorf("types = swings %d, swingsDay %d, zeroDTE %d, want 3/1/0", s.Swings, s.SwingsDay, s.ZeroDTE)
	}
}

func TestSummarizeDayBuckets(t *testing.T) {
	friday := time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)
	trades := []*domain.Trade{
		{
			ID: "a", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: friday,
			Highs: []domain.HighObservation{{ID: "h1", Price: 2.0, ObservedAt: monday.Add(time.Hour)}},
		},
		// No highs: sold bucket falls back to the expiry day.
		{ID: "b", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: friday},
	}
	agg, engine, _ := newAggregator(pnl.Options{})
	s := agg.Summarize(context.Background(), trades, engine.ComputeAll(trades))

	if s.TradesByDay != (DayCounts{2, 0, 0, 0, 0}) {
		t.Errorf("TradesByDay = %v", s.TradesByDay)
	}
	if s.WinLossByDay[0] != (WinLoss{Wins: 1, Losses: 1}) {
		t.Errorf("Monday win/loss = %+v", s.WinLossByDay[0])
	}
	if s.PLByDayBought != (DayAmounts{0, 0, 0, 0, 0}) {
		t.Errorf("PLByDayBought = %v", s.PLByDayBought)
	}
	// Win sold into its Monday high, full-loss fallback lands on expiry Friday.
	if s.PLByDaySold != (DayAmounts{100, 0, 0, 0, -100}) {
		t.Errorf("PLByDaySold = %v", s.PLByDaySold)
	}
}

func TestSummarizeZeroDTE(t *testing.T) {
	trades := []*domain.Trade{{
		ID: "a", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: monday.Add(6 * time.Hour),
		Highs: []domain.HighObservation{{ID: "h1", Price: 1.5, ObservedAt: monday.Add(time.Hour)}},
	}}
	agg, engine, _ := newAggregator(pnl.Options{})
	s := agg.Summarize(context.Background(), trades, engine.ComputeAll(trades))

	if s.ZeroDTE != 1 || s.Swings != 0 || s.SwingsDay != 0 {
		t.Errorf("types = zeroDTE %d, swings %d, swingsDay %d, want 1/0/0", s.ZeroDTE, s.Swings, s.SwingsDay)
	}
}

func TestSummarizeSkipsExcludedAndMissing(t *testing.T) {
	trades := []*domain.Trade{
		{ID: "a", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: monday, Excluded: true},
		{ID: "b", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: monday},
	}
	agg, _, logger := newAggregator(pnl.Options{})
	// Deliberately empty map: "b" must be logged and skipped, not crash.
	s := agg.Summarize(context.Background(), trades, map[string]pnl.Result{})

	if s.WinCount != 0 || s.LossCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", s.WinCount, s.LossCount)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want exactly one for the missing trade", logger.warns)
	}
}

func TestSummarizeTimingGaps(t *testing.T) {
	trades := []*domain.Trade{{
		ID: "a", AverageEntry: 1.0, EntryTime: monday, ExpiryTime: monday.AddDate(0, 0, 4),
		Highs: []domain.HighObservation{
			{ID: "h1", Price: 5, ObservedAt: monday},
			{ID: "h2", Price: 9, ObservedAt: monday.Add(10 * time.Minute)},
			{ID: "h3", Price: 7, ObservedAt: monday.Add(30 * time.Minute)},
		},
	}}
	agg, engine, _ := newAggregator(pnl.Options{})
	s := agg.Summarize(context.Background(), trades, engine.ComputeAll(trades))

	// Chronological gaps 10m and 20m.
	if got := s.AvgTimeBetweenHighs; got == nil || got.Duration() != 15*time.Minute {
		t.Errorf("AvgTimeBetweenHighs = %v, want 15m", got)
	}
	if got := s.MedianTimeBetweenHighs; got == nil || got.Duration() != 15*time.Minute {
		t.Errorf("MedianTimeBetweenHighs = %v, want 15m", got)
	}
	// Highest (9) to second-highest (7) are 20m apart.
	if got := s.AvgHighToLow; got == nil || got.Duration() != 20*time.Minute {
		t.Errorf("AvgHighToLow = %v, want 20m", got)
	}
}

func TestDayBucketJSONOrder(t *testing.T) {
	raw, err := json.Marshal(DayCounts{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Monday":1,"Tuesday":2,"Wednesday":3,"Thursday":4,"Friday":5}`
	if string(raw) != want {
		t.Errorf("DayCounts JSON = %s, want %s", raw, want)
	}

	raw, err = json.Marshal(DayAmounts{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), `{"Monday":0`) {
		t.Errorf("DayAmounts JSON = %s, want Monday-first object", raw)
	}
}

func TestMillisJSON(t *testing.T) {
	raw, err := json.Marshal(Millis(1500 * time.Microsecond))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "1.5" {
		t.Errorf("Millis JSON = %s, want 1.5", raw)
	}

	s := &Summary{}
	raw, err = json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"avgTimeBetweenHighs":null`) {
		t.Errorf("nil timing stat must serialize as null, got %s", raw)
	}
}
