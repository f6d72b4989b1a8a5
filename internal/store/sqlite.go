// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

const backendName = "sqlite"

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Closed trades. timestamp holds unix nanoseconds so ordering is numeric.
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		stop_loss REAL DEFAULT 0,
		take_profit REAL DEFAULT 0,
		profit REAL NOT NULL,
		profit_percent REAL NOT NULL,
		outcome TEXT NOT NULL,
		position_size REAL NOT NULL,
		strategy TEXT,
		emotions TEXT,
		notes TEXT,
		screenshots TEXT,
		playbook_id TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Strategy playbooks
	CREATE TABLE IF NOT EXISTS playbooks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		market_conditions TEXT,
		setup_checklist TEXT,
		exit_rules TEXT,
		risk_rules TEXT,
		screenshots TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		last_updated INTEGER NOT NULL
	);

	-- User profile
	CREATE TABLE IF NOT EXISTS profile (
		id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		experience INTEGER NOT NULL DEFAULT 0,
		badges TEXT,
		settings TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Flat key-value state (unlocked achievements, streaks, challenges)
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveTrade inserts or replaces a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, t *models.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (id, timestamp, symbol, direction, entry_price, exit_price, stop_loss, take_profit, profit, profit_percent, outcome, position_size, strategy, emotions, notes, screenshots, playbook_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Timestamp.UnixNano(), t.Symbol, string(t.Direction), t.EntryPrice, t.ExitPrice, t.StopLoss, t.TakeProfit,
		t.Profit, t.ProfitPercent, string(t.Outcome), t.PositionSize, t.Strategy, encodeList(t.Emotions), t.Notes, encodeList(t.Screenshots), t.PlaybookID)
	if err != nil {
		return apperrors.NewStorageError(backendName, "save trade", t.ID, err)
	}
	return nil
}

// DeleteTrade removes a trade. Deleting a missing id is not an error.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id); err != nil {
		return apperrors.NewStorageError(backendName, "delete trade", id, err)
	}
	return nil
}

const tradeColumns = "id, timestamp, symbol, direction, entry_price, exit_price, stop_loss, take_profit, profit, profit_percent, outcome, position_size, strategy, emotions, notes, screenshots, playbook_id"

// GetTrade retrieves a single trade by id.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.TradeNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(backendName, "get trade", id, err)
	}
	return &t, nil
}

// GetTrades retrieves trades matching filter in id order. Trade ids are
// ULIDs, so this is the order they were logged in.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy)
	}
	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, string(filter.Direction))
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate.UnixNano())
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate.UnixNano())
	}

	query += " ORDER BY id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(backendName, "query trades", "", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStorageError(backendName, "scan trade", "", err)
		}
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(r rowScanner) (models.Trade, error) {
	var t models.Trade
	var ts int64
	var direction, outcome string
	var strategy, emotions, notes, shots, playbook sql.NullString

	if err := r.Scan(&t.ID, &ts, &t.Symbol, &direction, &t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TakeProfit,
		&t.Profit, &t.ProfitPercent, &outcome, &t.PositionSize, &strategy, &emotions, &notes, &shots, &playbook); err != nil {
		return models.Trade{}, err
	}

	t.Timestamp = time.Unix(0, ts)
	t.Direction = models.Direction(direction)
	t.Outcome = models.Outcome(outcome)
	t.Strategy = strategy.String
	t.Notes = notes.String
	t.PlaybookID = playbook.String
	t.Emotions = decodeList(emotions.String)
	t.Screenshots = decodeList(shots.String)
	return t, nil
}

// SavePlaybook inserts or replaces a playbook.
func (s *SQLiteStore) SavePlaybook(ctx context.Context, p *models.Playbook) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO playbooks (id, name, description, category, market_conditions, setup_checklist, exit_rules, risk_rules, screenshots, version, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Category, encodeList(p.MarketConditions), encodeList(p.SetupChecklist),
		encodeList(p.ExitRules), encodeList(p.RiskRules), encodeList(p.Screenshots), p.Version, p.LastUpdated.UnixNano())
	if err != nil {
		return apperrors.NewStorageError(backendName, "save playbook", p.ID, err)
	}
	return nil
}

// DeletePlaybook removes a playbook.
func (s *SQLiteStore) DeletePlaybook(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM playbooks WHERE id = ?", id); err != nil {
		return apperrors.NewStorageError(backendName, "delete playbook", id, err)
	}
	return nil
}

// GetPlaybooks returns all playbooks ordered by name.
func (s *SQLiteStore) GetPlaybooks(ctx context.Context) ([]models.Playbook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, market_conditions, setup_checklist, exit_rules, risk_rules, screenshots, version, last_updated
		FROM playbooks ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, apperrors.NewStorageError(backendName, "query playbooks", "", err)
	}
	defer rows.Close()

	var playbooks []models.Playbook
	for rows.Next() {
		var p models.Playbook
		var description, category, conditions, setup, exit, risk, shots sql.NullString
		var updated int64
		if err := rows.Scan(&p.ID, &p.Name, &description, &category, &conditions, &setup, &exit, &risk, &shots, &p.Version, &updated); err != nil {
			return nil, apperrors.NewStorageError(backendName, "scan playbook", "", err)
		}
		p.Description = description.String
		p.Category = category.String
		p.MarketConditions = decodeList(conditions.String)
		p.SetupChecklist = decodeList(setup.String)
		p.ExitRules = decodeList(exit.String)
		p.RiskRules = decodeList(risk.String)
		p.Screenshots = decodeList(shots.String)
		p.LastUpdated = time.Unix(0, updated)
		playbooks = append(playbooks, p)
	}

	return playbooks, rows.Err()
}

// SaveUser inserts or replaces the user profile.
func (s *SQLiteStore) SaveUser(ctx context.Context, u *models.User) error {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return apperrors.NewStorageError(backendName, "save user", u.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profile (id, name, email, experience, badges, settings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, u.ID, u.Name, u.Email, u.Experience, encodeList(u.Badges), string(settings))
	if err != nil {
		return apperrors.NewStorageError(backendName, "save user", u.ID, err)
	}
	return nil
}

// GetUser loads a profile. Level is not stored; callers derive it from
// Experience.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	var name, email, badges, settings sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, experience, badges, settings FROM profile WHERE id = ?
	`, id).Scan(&u.ID, &name, &email, &u.Experience, &badges, &settings)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "profile %q", id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(backendName, "get user", id, err)
	}

	u.Name = name.String
	u.Email = email.String
	u.Badges = decodeList(badges.String)
	u.Settings = models.DefaultSettings()
	if settings.String != "" {
		if err := json.Unmarshal([]byte(settings.String), &u.Settings); err != nil {
			return nil, apperrors.NewStorageError(backendName, "decode settings", id, err)
		}
	}
	return &u, nil
}

// Get implements kv.Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStorageError(backendName, "get", key, err)
	}
	return value, true, nil
}

// Set implements kv.Store.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return apperrors.NewStorageError(backendName, "set", key, err)
	}
	return nil
}

// Remove implements kv.Store.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return apperrors.NewStorageError(backendName, "remove", key, err)
	}
	return nil
}

// Clear implements kv.Store. Only the kv table is emptied.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv"); err != nil {
		return apperrors.NewStorageError(backendName, "clear", "", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
