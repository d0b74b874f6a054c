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

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

const (
	selectCurrentThresholdsSQL = `
		SELECT id, check_in_hours, recon_hours, pending_command_hours, effective_at
		FROM thresholds_history
		ORDER BY id DESC
		LIMIT 1`

	insertThresholdsSQL = `
		INSERT INTO thresholds_history (check_in_hours, recon_hours, pending_command_hours, effective_at)
		VALUES (?, ?, ?, ?)`

	selectSettingSQL = `
		SELECT setting_value, updated_at
		FROM application_settings
		WHERE setting_key = ?`

	upsertSettingSQL = `
		INSERT INTO application_settings (setting_key, setting_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET
			setting_value = excluded.setting_value,
			updated_at = excluded.updated_at`

	insertSettingHistorySQL = `
		INSERT INTO settings_history (setting_key, setting_value, effective_at)
		VALUES (?, ?, ?)`

	selectSettingsVersionSQL = `SELECT COALESCE(MAX(id), 0) FROM settings_history`
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EnsureDefaults seeds thresholds and group settings when none have been
// written yet. Existing values are left alone.
func (db *DB) EnsureDefaults(ctx context.Context, th models.Thresholds, groups models.GroupSettings) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := currentThresholds(ctx, tx); errors.Is(err, models.ErrSettingsNotFound) {
			if _, err := db.insertThresholds(ctx, tx, th); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if _, err := loadGroupSettings(ctx, tx); errors.Is(err, models.ErrSettingsNotFound) {
			return db.writeGroupSettings(ctx, tx, groups)
		} else if err != nil {
			return err
		}

		return nil
	})
}

// CurrentSettings reads the current thresholds and group settings inside one
// transaction.
func (db *DB) CurrentSettings(ctx context.Context) (models.EvaluationSettings, error) {
	var settings models.EvaluationSettings

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		th, err := currentThresholds(ctx, tx)
		if err != nil {
			return err
		}

		groups, err := loadGroupSettings(ctx, tx)
		if err != nil {
			return err
		}

		settings = models.EvaluationSettings{Thresholds: th, Groups: groups}

		return nil
	})
	if err != nil {
		return models.EvaluationSettings{}, err
	}

	return settings, nil
}

// CurrentThresholds returns the highest thresholds version.
func (db *DB) CurrentThresholds(ctx context.Context) (models.Thresholds, error) {
	return currentThresholds(ctx, db.DB)
}

// UpdateThresholds reads the current version, applies mutate and appends the
// result as a new version, all in one write-locked transaction. Nothing is
// written when mutate fails.
func (db *DB) UpdateThresholds(
	ctx context.Context, mutate func(current models.Thresholds) (models.Thresholds, error),
) (models.Thresholds, error) {
	if mutate == nil {
		return models.Thresholds{}, ErrNilMutation
	}

	var updated models.Thresholds

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := currentThresholds(ctx, tx)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}

		updated, err = db.insertThresholds(ctx, tx, next)

		return err
	})
	if err != nil {
		return models.Thresholds{}, err
	}

	return updated, nil
}

// ThresholdHistory returns up to limit versions, newest first.
func (db *DB) ThresholdHistory(ctx context.Context, limit int) ([]models.Thresholds, error) {
	const querySQL = `
		SELECT id, check_in_hours, recon_hours, pending_command_hours, effective_at
		FROM thresholds_history
		ORDER BY id DESC
		LIMIT ?`

	rows, err := db.QueryContext(ctx, querySQL, limit)
	if err != nil {
		return nil, fmt.Errorf("%w thresholds history: %w", errFailedToQuery, err)
	}
	defer db.closeRows(rows)

	var history []models.Thresholds

	for rows.Next() {
		var th models.Thresholds
		if err := rows.Scan(&th.Version, &th.CheckInHours, &th.ReconHours, &th.PendingCommandHours, &th.EffectiveAt); err != nil {
			return nil, fmt.Errorf("%w thresholds row: %w", errFailedToScan, err)
		}

		history = append(history, th)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w thresholds history: %w", errFailedToQuery, err)
	}

	return history, nil
}

// GroupSettings returns the current compliance and monitored groups.
func (db *DB) GroupSettings(ctx context.Context) (models.GroupSettings, error) {
	return loadGroupSettings(ctx, db.DB)
}

// UpdateGroupSettings applies mutate to the current group settings and
// writes both keys plus their history rows in one transaction.
func (db *DB) UpdateGroupSettings(
	ctx context.Context, mutate func(current models.GroupSettings) (models.GroupSettings, error),
) (models.GroupSettings, error) {
	if mutate == nil {
		return models.GroupSettings{}, ErrNilMutation
	}

	var updated models.GroupSettings

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := loadGroupSettings(ctx, tx)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}

		if err := db.writeGroupSettings(ctx, tx, next); err != nil {
			return err
		}

		updated, err = loadGroupSettings(ctx, tx)

		return err
	})
	if err != nil {
		return models.GroupSettings{}, err
	}

	return updated, nil
}

func currentThresholds(ctx context.Context, q queryer) (models.Thresholds, error) {
	var th models.Thresholds

	err := q.QueryRowContext(ctx, selectCurrentThresholdsSQL).Scan(
		&th.Version,
		&th.CheckInHours,
		&th.ReconHours,
		&th.PendingCommandHours,
		&th.EffectiveAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Thresholds{}, models.ErrSettingsNotFound
	}

	if err != nil {
		return models.Thresholds{}, fmt.Errorf("%w current thresholds: %w", errFailedToQuery, err)
	}

	return th, nil
}

func (db *DB) insertThresholds(ctx context.Context, tx *sql.Tx, th models.Thresholds) (models.Thresholds, error) {
	th.EffectiveAt = db.now()

	result, err := tx.ExecContext(ctx, insertThresholdsSQL,
		th.CheckInHours,
		th.ReconHours,
		th.PendingCommandHours,
		th.EffectiveAt,
	)
	if err != nil {
		return models.Thresholds{}, fmt.Errorf("%w thresholds: %w", errFailedToInsert, err)
	}

	if th.Version, err = result.LastInsertId(); err != nil {
		return models.Thresholds{}, fmt.Errorf("%w thresholds id: %w", errFailedToInsert, err)
	}

	return th, nil
}

func loadGroupSettings(ctx context.Context, q queryer) (models.GroupSettings, error) {
	var (
		gs        models.GroupSettings
		monitored string
	)

	err := q.QueryRowContext(ctx, selectSettingSQL, models.SettingKeyComplianceGroup).Scan(&gs.ComplianceGroup, &gs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupSettings{}, models.ErrSettingsNotFound
	}

	if err != nil {
		return models.GroupSettings{}, fmt.Errorf("%w compliance group: %w", errFailedToQuery, err)
	}

	monitoredAt := gs.UpdatedAt

	err = q.QueryRowContext(ctx, selectSettingSQL, models.SettingKeyMonitoredGroups).Scan(&monitored, &monitoredAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		gs.MonitoredGroups = []string{}
	case err != nil:
		return models.GroupSettings{}, fmt.Errorf("%w monitored groups: %w", errFailedToQuery, err)
	default:
		if err := json.Unmarshal([]byte(monitored), &gs.MonitoredGroups); err != nil {
			return models.GroupSettings{}, fmt.Errorf("%w monitored groups: %w", errFailedToDecode, err)
		}
	}

	if monitoredAt.After(gs.UpdatedAt) {
		gs.UpdatedAt = monitoredAt
	}

	if err := q.QueryRowContext(ctx, selectSettingsVersionSQL).Scan(&gs.Version); err != nil {
		return models.GroupSettings{}, fmt.Errorf("%w settings version: %w", errFailedToQuery, err)
	}

	return gs, nil
}

func (db *DB) writeGroupSettings(ctx context.Context, tx *sql.Tx, gs models.GroupSettings) error {
	monitored := gs.MonitoredGroups
	if monitored == nil {
		monitored = []string{}
	}

	encoded, err := json.Marshal(monitored)
	if err != nil {
		return fmt.Errorf("%w monitored groups: %w", errFailedToEncode, err)
	}

	now := db.now()

	for _, kv := range [][2]string{
		{models.SettingKeyComplianceGroup, gs.ComplianceGroup},
		{models.SettingKeyMonitoredGroups, string(encoded)},
	} {
		if _, err := tx.ExecContext(ctx, upsertSettingSQL, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("%w setting %s: %w", errFailedToInsert, kv[0], err)
		}

		if _, err := tx.ExecContext(ctx, insertSettingHistorySQL, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("%w setting history %s: %w", errFailedToInsert, kv[0], err)
		}
	}

	return nil
}
