package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/0SRAF0/TravelPlaner/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps reads from blocking the occasional cache refresh.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS profile (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activities (
		activity_id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		score REAL NOT NULL,
		description TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activities_trip ON activities(trip_id, score);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetProfile retrieves the local profile. There is at most one row.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, created_at, updated_at FROM profile LIMIT 1`)

	var p domain.Profile
	var createdAt, updatedAt int64
	err := row.Scan(&p.UserID, &p.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile row: %w", err)
	}

	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// SaveProfile creates or replaces the local profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at`,
		p.UserID, p.Name, p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// ReplaceActivities swaps the cached activity list for a trip inside a
// transaction so readers never observe a partial refresh.
func (s *SQLiteStore) ReplaceActivities(ctx context.Context, tripID string, activities []domain.Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activity refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE trip_id = ?`, tripID); err != nil {
		return fmt.Errorf("clear activity cache: %w", err)
	}

	now := time.Now().Unix()
	for _, a := range activities {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities (activity_id, trip_id, name, category, score, description, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, tripID, a.Name, a.Category, a.Score, a.Description, now)
		if err != nil {
			return fmt.Errorf("insert activity %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activity refresh: %w", err)
	}
	return nil
}

// ListActivities returns cached activities matching the query.
func (s *SQLiteStore) ListActivities(ctx context.Context, q ActivityQuery) ([]domain.Activity, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT activity_id, trip_id, name, category, score, description
		FROM activities WHERE trip_id = ?`)
	args := []interface{}{q.TripID}

	if q.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, q.Category)
	}
	if q.MinScore > 0 {
		sb.WriteString(` AND score >= ?`)
		args = append(args, q.MinScore)
	}
	sb.WriteString(` ORDER BY score DESC`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var description sql.NullString
		if err := rows.Scan(&a.ID, &a.TripID, &a.Name, &a.Category, &a.Score, &description); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		a.Description = description.String
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return result, nil
}
