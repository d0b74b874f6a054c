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

package cache

import (
	"context"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

//go:generate mockgen -destination=mock_cache.go -package=cache github.com/mfreeman451/fleetradar/pkg/cache Backend

// Backend stores one entry per device. Implementations must be safe for
// concurrent use; writes to different devices need no coordination.
type Backend interface {
	// GetEntry reports false when the device has no entry.
	GetEntry(ctx context.Context, deviceID string) (models.CacheEntry, bool, error)
	// PutEntry overwrites any previous entry for the device.
	PutEntry(ctx context.Context, entry *models.CacheEntry) error
	// DeleteEntriesBefore removes entries fetched before cutoff.
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// FreshFunc reports whether a stored entry may be served instead of
// refreshing.
type FreshFunc func(entry models.CacheEntry) bool

// RefreshFunc fetches and evaluates a device.
type RefreshFunc func(ctx context.Context) (models.DeviceHealth, error)
