/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db pkg/db/db.go provides SQLite persistence for settings, threshold
// history and cached device health.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

const (
	// every BEGIN takes the write lock up front so read-merge-write updates
	// are serialized across processes sharing the file.
	dsnOptions = "?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"

	createTablesSQL = `
	-- Current value per setting key
	CREATE TABLE IF NOT EXISTS application_settings (
		setting_key TEXT PRIMARY KEY,
		setting_value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Every value a setting key has held
	CREATE TABLE IF NOT EXISTS settings_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		setting_key TEXT NOT NULL,
		setting_value TEXT NOT NULL,
		effective_at TIMESTAMP NOT NULL
	);

	-- Threshold versions; the highest id is current
	CREATE TABLE IF NOT EXISTS thresholds_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		check_in_hours INTEGER NOT NULL,
		recon_hours INTEGER NOT NULL,
		pending_command_hours INTEGER NOT NULL,
		effective_at TIMESTAMP NOT NULL
	);

	-- Last computed health per device
	CREATE TABLE IF NOT EXISTS cached_device_health (
		device_id TEXT PRIMARY KEY,
		device_name TEXT NOT NULL,
		serial_number TEXT NOT NULL,
		status TEXT NOT NULL,
		verdict_blob TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		thresholds_version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settings_history_key
		ON settings_history(setting_key, id);
	CREATE INDEX IF NOT EXISTS idx_cached_device_health_fetched
		ON cached_device_health(fetched_at);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New opens the database at dbPath and initializes the schema.
func New(dbPath string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("sqlite3", dbPath+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedOpenDB, err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", errFailedToEnableWAL, err)
	}

	db := &DB{
		DB:     sqlDB,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", errFailedToInit, err)
	}

	return db, nil
}

func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToBeginTx, err)
	}

	if err := fn(tx); err != nil {
		db.rollback(tx)

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", errFailedToCommit, err)
	}

	return nil
}

func (db *DB) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		db.logger.Warn("Error rolling back transaction", zap.Error(err))
	}
}

func (db *DB) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		db.logger.Warn("Failed to close rows", zap.Error(err))
	}
}
