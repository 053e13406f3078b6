package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack-be/internal/db"
	"github.com/calvinwijaya/blackjack-be/internal/game"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testRound(t *testing.T, id string, created time.Time) *game.Round {
	t.Helper()
	e := game.NewEngine(game.NewLockedSource(5), game.WithIDGenerator(func() string { return id }))
	r, _, err := e.Register()
	require.NoError(t, err)
	r.DtInsert = created
	r.DtUpdate = created
	return &r
}

func openSQLite(t *testing.T) *DatabaseStore {
	t.Helper()
	database, err := db.NewDatabase(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "blackjack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewDatabaseStore(database)
}

// runStoreTests exercises the Store contract against any implementation
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		r := testRound(t, "a", epoch)
		bet := 10
		r.CurrentBet = &bet
		r.Wallet = 90
		require.NoError(t, s.Save(ctx, r))

		got, err := s.Load(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		assert.True(t, r.DtInsert.Equal(got.DtInsert))
		assert.Equal(t, r.PossibleCards, got.PossibleCards)
		assert.Equal(t, r.Player, got.Player)
		assert.Equal(t, r.Dealer, got.Dealer)
		assert.Equal(t, 90, got.Wallet)
		require.NotNil(t, got.CurrentBet)
		assert.Equal(t, 10, *got.CurrentBet)
		assert.Nil(t, got.Message)
	})

	t.Run("save replaces", func(t *testing.T) {
		s := newStore(t)
		r := testRound(t, "a", epoch)
		require.NoError(t, s.Save(ctx, r))

		r.Wallet = 42
		r.GameOver = true
		require.NoError(t, s.Save(ctx, r))

		got, err := s.Load(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 42, got.Wallet)
		assert.True(t, got.GameOver)

		summaries, err := s.LoadSummaries(ctx)
		require.NoError(t, err)
		assert.Len(t, summaries, 1)
	})

	t.Run("summaries newest first", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, testRound(t, "old", epoch)))
		require.NoError(t, s.Save(ctx, testRound(t, "new", epoch.Add(time.Hour))))

		summaries, err := s.LoadSummaries(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "new", summaries[0].ID)
		assert.Equal(t, "old", summaries[1].ID)
		assert.Equal(t, game.InitialWallet, summaries[0].Wallet)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, testRound(t, "a", epoch)))
		require.NoError(t, s.RecordResult(ctx, RoundResult{RoundID: "a", Bet: 5, Result: game.ResultLose, CreatedAt: epoch}))

		require.NoError(t, s.Remove(ctx, "a"))
		_, err := s.Load(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Remove(ctx, "a"), ErrNotFound)
	})

	t.Run("stats", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, testRound(t, "a", epoch)))

		results := []RoundResult{
			{RoundID: "a", Bet: 10, Result: game.ResultWin, Payout: 20, WalletAfter: 110, CreatedAt: epoch},
			{RoundID: "a", Bet: 10, Result: game.ResultPush, Payout: 10, WalletAfter: 110, CreatedAt: epoch.Add(time.Minute)},
			{RoundID: "a", Bet: 30, Result: game.ResultBust, Payout: 0, WalletAfter: 80, CreatedAt: epoch.Add(2 * time.Minute)},
		}
		for _, r := range results {
			require.NoError(t, s.RecordResult(ctx, r))
		}

		stats, err := s.Stats(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.RoundsPlayed)
		assert.Equal(t, 1, stats.RoundsWon)
		assert.Equal(t, 1, stats.RoundsPushed)
		assert.Equal(t, 50, stats.TotalBets)
		assert.Equal(t, 30, stats.TotalPayouts)
		assert.True(t, stats.LastPlayed.Equal(epoch.Add(2*time.Minute)))

		_, err = s.Stats(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(*testing.T) Store { return NewMemoryStore() })
}

func TestDatabaseStoreSQLite(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store { return openSQLite(t) })
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := testRound(t, "a", epoch)
	require.NoError(t, s.Save(ctx, r))

	// Mutating the caller's round must not leak into the store
	r.Player.Cards[0] = game.Hidden
	r.Wallet = 1

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, game.InitialWallet, got.Wallet)
	assert.NotEqual(t, r.Player.Cards[0], got.Player.Cards[0])
}
