package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calvinwijaya/blackjack-be/internal/game"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNoRows is returned when a lookup matches nothing
var ErrNoRows = errors.New("no rows")

type Database struct {
	db     *sql.DB
	driver string
}

// Result is one row of the game_results table
type Result struct {
	GameID      string
	Bet         int
	Result      string
	Payout      int
	WalletAfter int
	CreatedAt   time.Time
}

// NewDatabase opens a connection for driver and creates the tables
func NewDatabase(ctx context.Context, driver, dsn string) (*Database, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	d := &Database{db: db, driver: driver}
	if err := d.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Driver returns the driver name the database was opened with
func (d *Database) Driver() string {
	return d.driver
}

// rebind rewrites $N placeholders into the form the driver expects
func (d *Database) rebind(query string) string {
	if d.driver == DriverSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// initTables creates the necessary tables if they don't exist
func (d *Database) initTables(ctx context.Context) error {
	stateType, serial := "JSONB", "SERIAL PRIMARY KEY"
	if d.driver == DriverSQLite {
		stateType, serial = "TEXT", "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	// Games table
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			wallet INTEGER NOT NULL,
			game_over BOOLEAN NOT NULL DEFAULT FALSE,
			game_state `+stateType+` NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating games table: %w", err)
	}

	// Game results table
	_, err = d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			id `+serial+`,
			game_id TEXT NOT NULL REFERENCES games (id) ON DELETE CASCADE,
			bet INTEGER NOT NULL,
			result TEXT NOT NULL,
			payout INTEGER NOT NULL,
			wallet_after INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating game_results table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveGame upserts a round
func (d *Database) SaveGame(ctx context.Context, r *game.Round) error {
	// Convert game state to JSON
	gameState, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO games (id, created_at, updated_at, wallet, game_over, game_state)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET updated_at = $3, wallet = $4, game_over = $5, game_state = $6
	`),
		r.ID, r.DtInsert.UTC(), r.DtUpdate.UTC(), r.Wallet, r.GameOver, string(gameState))
	return err
}

// GetGame retrieves a round by ID
func (d *Database) GetGame(ctx context.Context, id string) (*game.Round, error) {
	var gameState []byte
	var r game.Round

	err := d.db.QueryRowContext(ctx, d.rebind(`
		SELECT game_state FROM games WHERE id = $1
	`), id).Scan(&gameState)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, err
	}

	if err := json.Unmarshal(gameState, &r); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}

	return &r, nil
}

// DeleteGame removes a round and its results
func (d *Database) DeleteGame(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, d.rebind("DELETE FROM game_results WHERE game_id = $1"), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, d.rebind("DELETE FROM games WHERE id = $1"), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}

	return tx.Commit()
}

// GetGameSummaries returns id, creation time and wallet for every round, newest first
func (d *Database) GetGameSummaries(ctx context.Context) ([]game.Summary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, created_at, wallet FROM games ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []game.Summary{}
	for rows.Next() {
		var s game.Summary
		if err := rows.Scan(&s.ID, &s.DtInsert, &s.Wallet); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// SaveGameResult appends a settled result for a round
func (d *Database) SaveGameResult(ctx context.Context, res Result) error {
	_, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO game_results (game_id, bet, result, payout, wallet_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`),
		res.GameID, res.Bet, res.Result, res.Payout, res.WalletAfter, res.CreatedAt.UTC())
	return err
}

// GetGameResults returns every result recorded for a round, oldest first
func (d *Database) GetGameResults(ctx context.Context, id string) ([]Result, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT game_id, bet, result, payout, wallet_after, created_at
		FROM game_results WHERE game_id = $1 ORDER BY id
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.Bet, &r.Result, &r.Payout, &r.WalletAfter, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// GameExists reports whether a round with id is stored
func (d *Database) GameExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, d.rebind("SELECT 1 FROM games WHERE id = $1"), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
