package ports

import (
	"context"
	"time"

	"optionsjournal/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journal
// trades. Implementations own id assignment and persistence; callers treat
// returned trades as immutable snapshots.
type TradeRepository interface {
	// GetAll retrieves every stored trade.
	GetAll(ctx context.Context) ([]*domain.Trade, error)
	// Create stores a new trade, assigns its ID, and returns the stored copy.
	// The highs list of a new trade is always initialized empty.
	Create(ctx context.Context, trade *domain.Trade) (*domain.Trade, error)
	// FindByID retrieves a trade by its unique ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id string) (*domain.Trade, error)
	// Update applies a partial patch to an existing trade and returns the
	// updated copy. Returns nil, nil if the trade does not exist.
	Update(ctx context.Context, id string, patch *domain.TradePatch) (*domain.Trade, error)
	// Delete removes a trade and its highs together, returning the deleted
	// copy. Returns nil, nil if the trade does not exist.
	Delete(ctx context.Context, id string) (*domain.Trade, error)
	// AppendHigh records a new high-price observation against a trade and
	// returns the stored observation with its assigned ID.
	AppendHigh(ctx context.Context, tradeID string, price float64, observedAt time.Time) (*domain.HighObservation, error)
}
