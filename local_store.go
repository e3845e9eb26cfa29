package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// localStore owns the on-device SQLite database. One handle is opened per
// process and every unit of work is a single statement or one transaction.
type localStore struct {
	db *sql.DB
}

// openLocalStore opens (creating if needed) the database at path and applies
// pending migrations. Use ":memory:" only in tests that never reopen.
func openLocalStore(ctx context.Context, path string) (*localStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers, which keeps the single-row
	// profile invariant simple to reason about.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &localStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *localStore) Close() error {
	return s.db.Close()
}

/* ─── Migrations ─────────────────────────────────────────────────────── */

type migration struct {
	version int
	name    string
	sql     string
	// seed runs in the same transaction, so seed data lands exactly once.
	seed func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "profile_meal_plans_steps",
		sql: `
CREATE TABLE IF NOT EXISTS user_profile (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT,
  target_calories INTEGER NOT NULL,
  current_weight REAL NOT NULL,
  age INTEGER,
  gender TEXT,
  activity_level TEXT,
  diet_preference TEXT,
  height REAL,
  firebase_uid TEXT
);

CREATE TABLE IF NOT EXISTS meal_plans (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  min_calories INTEGER NOT NULL,
  max_calories INTEGER NOT NULL CHECK(max_calories > min_calories),
  diet_type TEXT NOT NULL CHECK(diet_type IN ('Veg', 'Non-Veg')),
  breakfast TEXT NOT NULL,
  lunch TEXT NOT NULL,
  dinner TEXT NOT NULL,
  snacks TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meal_plans_diet_type ON meal_plans(diet_type, min_calories);

CREATE TABLE IF NOT EXISTS daily_steps (
  date TEXT PRIMARY KEY,
  steps INTEGER NOT NULL CHECK(steps >= 0),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`,
		seed: seedMealPlans,
	},
	{
		version: 2,
		name:    "directory_and_resources",
		sql: `
CREATE TABLE IF NOT EXISTS doctors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  specialty TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS helplines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  number TEXT NOT NULL,
  description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mental_health_content (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  type TEXT NOT NULL CHECK(type IN ('Video', 'Tip')),
  category TEXT NOT NULL,
  content_data TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mental_health_category ON mental_health_content(category);
`,
		seed: seedResources,
	},
}

// migrate applies every migration not yet recorded in schema_migrations,
// each in its own transaction together with its seed data.
func (s *localStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if m.seed != nil {
			if err := m.seed(ctx, tx); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("seed migration version %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}

/* ─── Settings ───────────────────────────────────────────────────────── */

const (
	settingStepCounterEnabled = "step_counter_enabled"
	settingStepGoal           = "step_goal"
	settingSessionUID         = "session_uid"
	settingSessionToken       = "session_token"
)

// getSetting returns the stored value and whether the key exists.
func (s *localStore) getSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *localStore) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

/* ─── Session ────────────────────────────────────────────────────────── */

// session returns the signed-in cloud uid and local bearer token, or empty
// strings when nobody has logged in on this device.
func (s *localStore) session(ctx context.Context) (uid, token string, err error) {
	uid, _, err = s.getSetting(ctx, settingSessionUID)
	if err != nil {
		return "", "", err
	}
	token, _, err = s.getSetting(ctx, settingSessionToken)
	if err != nil {
		return "", "", err
	}
	return uid, token, nil
}

func (s *localStore) setSession(ctx context.Context, uid, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback()
	for key, value := range map[string]string{settingSessionUID: uid, settingSessionToken: token} {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	return tx.Commit()
}

func (s *localStore) clearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key IN (?, ?)`,
		settingSessionUID, settingSessionToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
