package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

// SQLHistory persists the bounded history in sqlite or mysql, so stats
// survive restarts. The cap is enforced after every append by deleting
// the oldest rows.
type SQLHistory struct {
	db     *sql.DB
	cap    int
	logger *zap.Logger
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS analytics_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at TEXT NOT NULL,
		rule_name TEXT NOT NULL,
		confidence REAL NOT NULL,
		action_kinds TEXT NOT NULL
	)
`

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS analytics_history (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		recorded_at VARCHAR(64) NOT NULL,
		rule_name VARCHAR(255) NOT NULL,
		confidence DOUBLE NOT NULL,
		action_kinds TEXT NOT NULL
	)
`

// NewSQLiteHistory opens (and if needed creates) a sqlite-backed history.
func NewSQLiteHistory(dbPath string, cap int, logger *zap.Logger) (*SQLHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return newSQLHistory(db, sqliteSchema, cap, logger)
}

// NewMySQLHistory opens a mysql-backed history.
func NewMySQLHistory(dsn string, cap int, logger *zap.Logger) (*SQLHistory, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to mysql: %w", err)
	}
	return newSQLHistory(db, mysqlSchema, cap, logger)
}

func newSQLHistory(db *sql.DB, schema string, cap int, logger *zap.Logger) (*SQLHistory, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating analytics_history table: %w", err)
	}
	return &SQLHistory{db: db, cap: cap, logger: logger}, nil
}

// Append inserts entries in order and drops rows beyond the cap.
func (h *SQLHistory) Append(ctx context.Context, entries []core.AnalyticsEntry) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		kinds := make([]string, 0, len(e.Actions))
		for _, k := range e.Actions {
			kinds = append(kinds, string(k))
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO analytics_history (recorded_at, rule_name, confidence, action_kinds)
			VALUES (?, ?, ?, ?)
		`, e.Timestamp.UTC().Format(time.RFC3339), e.Rule, e.Confidence, strings.Join(kinds, ","))
		if err != nil {
			return fmt.Errorf("inserting history entry: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM analytics_history
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id FROM analytics_history ORDER BY id DESC LIMIT ?
			) keep
		)
	`, h.cap)
	if err != nil {
		return fmt.Errorf("truncating history: %w", err)
	}

	return tx.Commit()
}

// Recent returns up to limit entries, oldest first.
func (h *SQLHistory) Recent(ctx context.Context, limit int) ([]core.AnalyticsEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT recorded_at, rule_name, confidence, action_kinds FROM (
			SELECT id, recorded_at, rule_name, confidence, action_kinds
			FROM analytics_history ORDER BY id DESC LIMIT ?
		) recent ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []core.AnalyticsEntry
	for rows.Next() {
		var recordedAt, rule, kindsRaw string
		var confidence float64
		if err := rows.Scan(&recordedAt, &rule, &confidence, &kindsRaw); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			h.logger.Warn("Skipping history row with bad timestamp", zap.String("recorded_at", recordedAt))
			continue
		}
		var kinds []core.ActionKind
		if kindsRaw != "" {
			for _, k := range strings.Split(kindsRaw, ",") {
				kinds = append(kinds, core.ActionKind(k))
			}
		}
		out = append(out, core.AnalyticsEntry{
			Timestamp:  ts,
			Rule:       rule,
			Confidence: confidence,
			Actions:    kinds,
		})
	}
	return out, rows.Err()
}

// Count returns the number of retained entries.
func (h *SQLHistory) Count(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analytics_history`).Scan(&n)
	return n, err
}

// Close closes the database handle.
func (h *SQLHistory) Close() error { return h.db.Close() }
