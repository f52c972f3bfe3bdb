package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsjournal/internal/domain"
	"optionsjournal/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "options-journal-sqlite-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func newTestTrade(ticker string) *domain.Trade {
	entry := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	return &domain.Trade{
		Ticker:       ticker,
		AverageEntry: 2.0,
		StrikePrice:  500,
		OptionType:   domain.Call,
		EntryTime:    entry,
		ExpiryTime:   entry.AddDate(0, 0, 4),
		Images:       []string{"/uploads/a.png"},
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestTrade("spy"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "SPY", created.Ticker)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, domain.Call, found.OptionType)
	assert.Equal(t, []string{"/uploads/a.png"}, found.Images)
	assert.True(t, found.EntryTime.Equal(created.EntryTime))
	assert.NotNil(t, found.Highs)

	missing, err := repo.FindByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_MissingTimestampsRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Trade{Ticker: "SPY", OptionType: domain.Put})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, found.EntryTime.IsZero())
	assert.True(t, found.ExpiryTime.IsZero())
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestTrade("SPY"))
	require.NoError(t, err)

	treatAsLoss := true
	updated, err := repo.Update(ctx, created.ID, &domain.TradePatch{TreatAsLoss: &treatAsLoss})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.TreatAsLoss)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, found.TreatAsLoss)

	none, err := repo.Update(ctx, "no-such-id", &domain.TradePatch{TreatAsLoss: &treatAsLoss})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRepository_DeleteCascadesHighs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestTrade("SPY"))
	require.NoError(t, err)
	_, err = repo.AppendHigh(ctx, created.ID, 3.0, created.EntryTime.Add(time.Hour))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	var count int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM highs`).Scan(&count))
	assert.Zero(t, count, "highs must be removed with their trade")

	none, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRepository_AppendHigh(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestTrade("SPY"))
	require.NoError(t, err)

	observed := created.EntryTime.Add(30 * time.Minute)
	_, err = repo.AppendHigh(ctx, created.ID, 2.5, observed)
	require.NoError(t, err)
	_, err = repo.AppendHigh(ctx, created.ID, 3.0, observed.Add(time.Hour))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Highs, 2)
	assert.Equal(t, 2.5, found.Highs[0].Price, "insertion order is preserved")
	assert.Equal(t, 3.0, found.Highs[1].Price)

	_, err = repo.AppendHigh(ctx, "no-such-id", 1.0, observed)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRepository_GetAll(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trades, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	_, err = repo.Create(ctx, newTestTrade("SPY"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestTrade("QQQ"))
	require.NoError(t, err)

	trades, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}
