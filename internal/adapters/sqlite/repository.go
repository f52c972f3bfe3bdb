// Package sqlite implements ports.TradeRepository on SQLite, as the
// alternative to the default flat-file store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"optionsjournal/internal/domain"
	"optionsjournal/internal/ports"
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite trade store ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		average_entry REAL NOT NULL,
		strike_price REAL NOT NULL DEFAULT 0,
		option_type TEXT NOT NULL,
		entry_time TIMESTAMP NULL,
		expiry_time TIMESTAMP NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		excluded INTEGER NOT NULL DEFAULT 0,
		treat_as_loss INTEGER NOT NULL DEFAULT 0,
		high_override_id TEXT NOT NULL DEFAULT '',
		images TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS highs (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
		price REAL NOT NULL,
		observed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_highs_trade_id ON highs (trade_id);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades (entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

const tradeColumns = `id, ticker, average_entry, strike_price, option_type,
	entry_time, expiry_time, verified, excluded, treat_as_loss, high_override_id, images`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*domain.Trade, error) {
	var t domain.Trade
	var entry, expiry sql.NullTime
	var images string
	err := row.Scan(&t.ID, &t.Ticker, &t.AverageEntry, &t.StrikePrice, &t.OptionType,
		&entry, &expiry, &t.Verified, &t.Excluded, &t.TreatAsLoss, &t.HighOverrideID, &images)
	if err != nil {
		return nil, err
	}
	if entry.Valid {
		t.EntryTime = entry.Time
	}
	if expiry.Valid {
		t.ExpiryTime = expiry.Time
	}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &t.Images); err != nil {
			return nil, fmt.Errorf("decoding images for trade %s: %w", t.ID, err)
		}
	}
	t.Highs = []domain.HighObservation{}
	return &t, nil
}

func (r *Repository) loadHighs(ctx context.Context, trade *domain.Trade) error {
	const query = `SELECT id, price, observed_at FROM highs WHERE trade_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, trade.ID)
	if err != nil {
		return fmt.Errorf("%w: highs for trade %s: %v", ports.ErrQueryFailed, trade.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var h domain.HighObservation
		if err := rows.Scan(&h.ID, &h.Price, &h.ObservedAt); err != nil {
			return fmt.Errorf("failed to scan high row: %w", err)
		}
		trade.Highs = append(trade.Highs, h)
	}
	return rows.Err()
}

// GetAll retrieves every stored trade with its highs.
func (r *Repository) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades ORDER BY entry_time DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: all trades: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during GetAll: %w", err)
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	for _, t := range trades {
		if err := r.loadHighs(ctx, t); err != nil {
			return nil, err
		}
	}
	return trades, nil
}

// Create stores a new trade with a fresh id and an empty highs list.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	stored := *trade
	stored.ID = uuid.NewString()
	stored.Ticker = strings.ToUpper(stored.Ticker)
	stored.Highs = []domain.HighObservation{}

	images, err := json.Marshal(stored.Images)
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}

	const query = `
	INSERT INTO trades (id, ticker, average_entry, strike_price, option_type,
	                    entry_time, expiry_time, verified, excluded, treat_as_loss, high_override_id, images)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, stored.ID, stored.Ticker, stored.AverageEntry,
		stored.StrikePrice, stored.OptionType, nullTime(stored.EntryTime), nullTime(stored.ExpiryTime),
		stored.Verified, stored.Excluded, stored.TreatAsLoss, stored.HighOverrideID, string(images))
	if err != nil {
		return nil, fmt.Errorf("%w: creating trade: %v", ports.ErrQueryFailed, err)
	}
	r.logger.Info(ctx, "trade created", map[string]interface{}{"tradeID": stored.ID, "ticker": stored.Ticker})
	return &stored, nil
}

// FindByID retrieves a trade by id. Returns nil, nil when not found.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = ?`
	t, err := scanTrade(r.db.QueryRowContext(ctx, query, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: trade by id %s: %v", ports.ErrQueryFailed, id, err)
	}
	if err := r.loadHighs(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies a patch to a stored trade. Returns nil, nil when the trade
// does not exist.
func (r *Repository) Update(ctx context.Context, id string, patch *domain.TradePatch) (*domain.Trade, error) {
	trade, err := r.FindByID(ctx, id)
	if err != nil || trade == nil {
		return nil, err
	}
	patch.Apply(trade)

	images, err := json.Marshal(trade.Images)
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}

	const query = `
	UPDATE trades
	SET ticker = ?, average_entry = ?, strike_price = ?, option_type = ?,
	    entry_time = ?, expiry_time = ?, verified = ?, excluded = ?,
	    treat_as_loss = ?, high_override_id = ?, images = ?
	WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query, trade.Ticker, trade.AverageEntry, trade.StrikePrice,
		trade.OptionType, nullTime(trade.EntryTime), nullTime(trade.ExpiryTime), trade.Verified,
		trade.Excluded, trade.TreatAsLoss, trade.HighOverrideID, string(images), trade.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: updating trade %s: %v", ports.ErrUpdateFailed, id, err)
	}
	r.logger.Info(ctx, "trade updated", map[string]interface{}{"tradeID": trade.ID})
	return trade, nil
}

// Delete removes a trade; its highs cascade. Returns nil, nil when the
// trade does not exist.
func (r *Repository) Delete(ctx context.Context, id string) (*domain.Trade, error) {
	trade, err := r.FindByID(ctx, id)
	if err != nil || trade == nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, trade.ID); err != nil {
		return nil, fmt.Errorf("%w: deleting trade %s: %v", ports.ErrDeleteFailed, id, err)
	}
	r.logger.Info(ctx, "trade deleted", map[string]interface{}{"tradeID": trade.ID})
	return trade, nil
}

// AppendHigh records a new high observation against a trade.
func (r *Repository) AppendHigh(ctx context.Context, tradeID string, price float64, observedAt time.Time) (*domain.HighObservation, error) {
	trade, err := r.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("%w: trade '%s'", ports.ErrNotFound, tradeID)
	}

	high := domain.HighObservation{
		ID:         uuid.NewString(),
		Price:      price,
		ObservedAt: observedAt,
	}
	const query = `INSERT INTO highs (id, trade_id, price, observed_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, high.ID, trade.ID, high.Price, high.ObservedAt); err != nil {
		return nil, fmt.Errorf("%w: appending high to trade %s: %v", ports.ErrQueryFailed, tradeID, err)
	}
	r.logger.Info(ctx, "high recorded", map[string]interface{}{"tradeID": trade.ID, "price": price})
	return &high, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
