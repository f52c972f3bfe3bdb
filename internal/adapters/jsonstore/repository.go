// Package jsonstore implements ports.TradeRepository over a single flat
// JSON file. Every operation is a whole-file read-modify-write: adequate at
// journal scale under the single-user assumption.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/ports"
)

// Repository stores trades in one pretty-printed JSON array file.
type Repository struct {
	path   string
	logger ports.Logger

	// Serializes read-modify-write cycles when the repository is embedded
	// in a concurrent host such as the HTTP server.
	mu sync.Mutex
}

// Config holds configuration for the JSON file repository.
type Config struct {
	Path   string
	Logger ports.Logger
}

// NewRepository creates a flat-file repository. The parent directory is
// created if missing; a missing file reads as an empty journal.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for JSON store")
	}
	path := cfg.Path
	if path == "" {
		path = "./data/trades.json"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(path), err)
		cfg.Logger.Error(context.Background(), err, "JSON store initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "JSON trade store ready", map[string]interface{}{"path": path})

	return &Repository{path: path, logger: cfg.Logger}, nil
}

func (r *Repository) read() ([]*domain.Trade, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []*domain.Trade{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading '%s': %v", ports.ErrStoreIO, r.path, err)
	}
	var trades []*domain.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("%w: '%s': %v", ports.ErrStoreCorrupt, r.path, err)
	}
	return trades, nil
}

func (r *Repository) write(trades []*domain.Trade) error {
	data, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding trades: %v", ports.ErrStoreIO, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing '%s': %v", ports.ErrStoreIO, r.path, err)
	}
	return nil
}

// GetAll retrieves every stored trade.
func (r *Repository) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Create stores a new trade with a fresh id and an empty highs list.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.read()
	if err != nil {
		return nil, err
	}

	stored := *trade
	stored.ID = uuid.NewString()
	stored.Ticker = strings.ToUpper(stored.Ticker)
	stored.Highs = []domain.HighObservation{}

	trades = append(trades, &stored)
	if err := r.write(trades); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "trade created", map[string]interface{}{"tradeID": stored.ID, "ticker": stored.Ticker})
	return &stored, nil
}

// FindByID retrieves a trade by id. Returns nil, nil when not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.read()
	if err != nil {
		return nil, err
	}
	return findTrade(trades, id), nil
}

// Update applies a patch to a stored trade. Returns nil, nil when the trade
// does not exist.
func (r *Repository) Update(ctx context.Context, id string, patch *domain.TradePatch) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.read()
	if err != nil {
		return nil, err
	}
	trade := findTrade(trades, id)
	if trade == nil {
		return nil, nil
	}
	patch.Apply(trade)
	if err := r.write(trades); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "trade updated", map[string]interface{}{"tradeID": trade.ID})
	return trade, nil
}

// Delete removes a trade and its highs together. Returns nil, nil when the
// trade does not exist.
func (r *Repository) Delete(ctx context.Context, id string) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.read()
	if err != nil {
		return nil, err
	}
	for i, t := range trades {
		if t.ID == strings.TrimSpace(id) {
			trades = append(trades[:i], trades[i+1:]...)
			if err := r.write(trades); err != nil {
				return nil, err
			}
			r.logger.Info(ctx, "trade deleted", map[string]interface{}{"tradeID": t.ID})
			return t, nil
		}
	}
	return nil, nil
}

// AppendHigh records a new high observation against a trade.
func (r *Repository) AppendHigh(ctx context.Context, tradeID string, price float64, observedAt time.Time) (*domain.HighObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.read()
	if err != nil {
		return nil, err
	}
	trade := findTrade(trades, tradeID)
	if trade == nil {
		return nil, fmt.Errorf("%w: trade '%s'", ports.ErrNotFound, tradeID)
	}

	high := domain.HighObservation{
		ID:         uuid.NewString(),
		Price:      price,
		ObservedAt: observedAt,
	}
	trade.Highs = append(trade.Highs, high)
	if err := r.write(trades); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "high recorded", map[string]interface{}{"tradeID": trade.ID, "price": price})
	return &high, nil
}

func findTrade(trades []*domain.Trade, id string) *domain.Trade {
	id = strings.TrimSpace(id)
	for _, t := range trades {
		if t.ID == id {
			return t
		}
	}
	return nil
}
