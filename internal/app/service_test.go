package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/pnl"
	"optionsjournal/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stubRepo is an in-memory ports.TradeRepository.
type stubRepo struct {
	trades  []*domain.Trade
	created *domain.Trade
}

func (r *stubRepo) GetAll(ctx context.Context) ([]*domain.Trade, error) { return r.trades, nil }
func (r *stubRepo) Create(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	r.created = trade
	return trade, nil
}
func (r *stubRepo) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	for _, t := range r.trades {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}
func (r *stubRepo) Update(ctx context.Context, id string, patch *domain.TradePatch) (*domain.Trade, error) {
	t, _ := r.FindByID(ctx, id)
	if t != nil {
		patch.Apply(t)
	}
	return t, nil
}
func (r *stubRepo) Delete(ctx context.Context, id string) (*domain.Trade, error) {
	return r.FindByID(ctx, id)
}
func (r *stubRepo) AppendHigh(ctx context.Context, tradeID string, price float64, observedAt time.Time) (*domain.HighObservation, error) {
	t, _ := r.FindByID(ctx, tradeID)
	if t == nil {
		return nil, ports.ErrNotFound
	}
	h := domain.HighObservation{ID: "h", Price: price, ObservedAt: observedAt}
	t.Highs = append(t.Highs, h)
	return &h, nil
}

func newTestService(t *testing.T, repo *stubRepo) *JournalService {
	t.Helper()
	svc, err := NewJournalService(&mockLogger{}, repo, 100)
	require.NoError(t, err)
	return svc
}

func TestNewJournalServiceValidation(t *testing.T) {
	_, err := NewJournalService(nil, &stubRepo{}, 100)
	assert.Error(t, err)
	_, err = NewJournalService(&mockLogger{}, nil, 100)
	assert.Error(t, err)
	_, err = NewJournalService(&mockLogger{}, &stubRepo{}, -1)
	assert.Error(t, err)
}

func TestCreateTradeValidation(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.CreateTrade(ctx, &domain.Trade{Ticker: "  ", OptionType: domain.Call})
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))

	_, err = svc.CreateTrade(ctx, &domain.Trade{Ticker: "SPY", OptionType: "straddle"})
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))

	_, err = svc.CreateTrade(ctx, &domain.Trade{Ticker: "SPY", OptionType: domain.Put})
	require.NoError(t, err)
	assert.NotNil(t, repo.created)
}

func TestRecordHighRequiresObservedAt(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	_, err := svc.RecordHigh(context.Background(), "id", 2.0, time.Time{})
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestSummaryAppliesDefaultLossModifier(t *testing.T) {
	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	repo := &stubRepo{trades: []*domain.Trade{{
		ID: "a", Ticker: "SPY", AverageEntry: 2.0, OptionType: domain.Call,
		EntryTime: entry, ExpiryTime: entry.AddDate(0, 0, 4),
	}}}

	svc, err := NewJournalService(&mockLogger{}, repo, 50)
	require.NoError(t, err)

	// No modifier in the request: the service default of 50 applies.
	result, err := svc.Summary(context.Background(), pnl.Options{})
	require.NoError(t, err)
	require.Contains(t, result.PLByTradeID, "a")
	assert.Equal(t, -100.0, result.PLByTradeID["a"].Dollars)
	assert.Equal(t, -50.0, result.PLByTradeID["a"].Percent)

	// An explicit modifier wins over the default.
	full := 100.0
	result, err = svc.Summary(context.Background(), pnl.Options{LossModifierPercent: &full})
	require.NoError(t, err)
	assert.Equal(t, -200.0, result.PLByTradeID["a"].Dollars)
	assert.Equal(t, 1, result.Summary.LossCount)
}
