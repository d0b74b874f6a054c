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
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

// GetEntry loads the cached health for deviceID. The boolean is false when
// no row exists.
func (db *DB) GetEntry(ctx context.Context, deviceID string) (models.CacheEntry, bool, error) {
	const querySQL = `
		SELECT verdict_blob, fetched_at, thresholds_version
		FROM cached_device_health
		WHERE device_id = ?`

	var (
		blob  string
		entry = models.CacheEntry{DeviceID: deviceID}
	)

	err := db.QueryRowContext(ctx, querySQL, deviceID).Scan(&blob, &entry.FetchedAt, &entry.ThresholdsVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CacheEntry{}, false, nil
	}

	if err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("%w cached health: %w", errFailedToQuery, err)
	}

	if err := json.Unmarshal([]byte(blob), &entry.Health); err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("%w cached health: %w", errFailedToDecode, err)
	}

	return entry, true, nil
}

// PutEntry inserts or replaces the cached health for entry.DeviceID.
func (db *DB) PutEntry(ctx context.Context, entry *models.CacheEntry) error {
	const upsertSQL = `
		INSERT INTO cached_device_health
			(device_id, device_name, serial_number, status, verdict_blob, fetched_at, thresholds_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			device_name = excluded.device_name,
			serial_number = excluded.serial_number,
			status = excluded.status,
			verdict_blob = excluded.verdict_blob,
			fetched_at = excluded.fetched_at,
			thresholds_version = excluded.thresholds_version`

	blob, err := json.Marshal(entry.Health)
	if err != nil {
		return fmt.Errorf("%w cached health: %w", errFailedToEncode, err)
	}

	_, err = db.ExecContext(ctx, upsertSQL,
		entry.DeviceID,
		entry.Health.Device.Name,
		entry.Health.Device.SerialNumber,
		string(entry.Health.Status),
		string(blob),
		entry.FetchedAt.UTC(),
		entry.ThresholdsVersion,
	)
	if err != nil {
		return fmt.Errorf("%w cached health: %w", errFailedToInsert, err)
	}

	return nil
}

// DeleteEntriesBefore removes cached health fetched before cutoff and
// returns the number of rows removed.
func (db *DB) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM cached_device_health WHERE fetched_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w cached health: %w", errFailedToDelete, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w cached health: %w", errFailedToDelete, err)
	}

	return n, nil
}
