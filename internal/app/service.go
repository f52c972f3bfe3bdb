package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"optionsjournal/internal/analytics"
	"optionsjournal/internal/domain"
	"optionsjournal/internal/filters"
	"optionsjournal/internal/pnl"
	"optionsjournal/internal/ports"
)

// JournalService orchestrates the trade journal: CRUD against the
// repository and derived statistics over snapshots. Because flags like
// treatAsLoss, excluded, and the high override change between calls, every
// derived result is recomputed in full from a fresh snapshot; there is no
// incremental state to fall out of sync.
type JournalService struct {
	logger ports.Logger
	repo   ports.TradeRepository

	// Loss modifier applied when a summary request does not carry one.
	defaultLossModifier float64
}

// NewJournalService creates a new application service instance.
func NewJournalService(logger ports.Logger, repo ports.TradeRepository, defaultLossModifier float64) (*JournalService, error) {
	if logger == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	if defaultLossModifier < 0 {
		return nil, fmt.Errorf("default loss modifier cannot be negative")
	}
	return &JournalService{logger: logger, repo: repo, defaultLossModifier: defaultLossModifier}, nil
}

// Trades returns every stored trade.
func (s *JournalService) Trades(ctx context.Context) ([]*domain.Trade, error) {
	return s.repo.GetAll(ctx)
}

// CreateTrade validates and stores a new trade. Highs always start empty.
func (s *JournalService) CreateTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	if strings.TrimSpace(trade.Ticker) == "" {
		return nil, fmt.Errorf("%w: ticker is required", ports.ErrInvalidRequest)
	}
	if trade.OptionType != domain.Call && trade.OptionType != domain.Put {
		return nil, fmt.Errorf("%w: optionType must be call or put", ports.ErrInvalidRequest)
	}
	return s.repo.Create(ctx, trade)
}

// FindTrade returns the trade with the given id, or nil, nil when unknown.
func (s *JournalService) FindTrade(ctx context.Context, id string) (*domain.Trade, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateTrade applies a partial patch. Returns nil, nil when the trade is
// unknown.
func (s *JournalService) UpdateTrade(ctx context.Context, id string, patch *domain.TradePatch) (*domain.Trade, error) {
	return s.repo.Update(ctx, id, patch)
}

// DeleteTrade removes a trade and its highs. Returns nil, nil when unknown.
func (s *JournalService) DeleteTrade(ctx context.Context, id string) (*domain.Trade, error) {
	return s.repo.Delete(ctx, id)
}

// RecordHigh appends a high-price observation to a trade.
func (s *JournalService) RecordHigh(ctx context.Context, tradeID string, price float64, observedAt time.Time) (*domain.HighObservation, error) {
	if observedAt.IsZero() {
		return nil, fmt.Errorf("%w: observedAt is required", ports.ErrInvalidRequest)
	}
	return s.repo.AppendHigh(ctx, tradeID, price, observedAt)
}

// FilteredTrades applies the trade-list query and reports the filter
// options available in the filtered result.
func (s *JournalService) FilteredTrades(ctx context.Context, q filters.Query) ([]*domain.Trade, filters.Available, error) {
	trades, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, filters.Available{}, err
	}
	filtered := filters.Apply(trades, q)
	return filtered, filters.AvailableFilters(filtered), nil
}

// SummaryResult bundles the aggregate statistics with the per-trade P/L map
// they were computed from.
type SummaryResult struct {
	Summary     *analytics.Summary    `json:"summary"`
	PLByTradeID map[string]pnl.Result `json:"plByTradeId"`
}

// Summary recomputes the whole derived state for the current snapshot under
// the given engine options: P/L per non-excluded trade, then the aggregate.
func (s *JournalService) Summary(ctx context.Context, opts pnl.Options) (*SummaryResult, error) {
	trades, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if opts.LossModifierPercent == nil {
		opts.LossModifierPercent = &s.defaultLossModifier
	}
	engine := pnl.NewEngine(opts)
	results := engine.ComputeAll(trades)
	summary := analytics.NewAggregator(engine, s.logger).Summarize(ctx, trades, results)
	return &SummaryResult{Summary: summary, PLByTradeID: results}, nil
}
