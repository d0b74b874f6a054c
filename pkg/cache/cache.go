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

// Package cache pkg/cache/cache.go keeps per-device health snapshots and makes
// sure at most one refresh per device is in flight.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached verdict stays fresh.
const DefaultTTL = 300 * time.Second

// Cache wraps a Backend with store-failure degradation and single-flight
// refreshes.
type Cache struct {
	backend Backend
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithMetrics records write failures and refresh outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New returns a Cache over backend.
func New(backend Backend, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		backend: backend,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the stored entry for deviceID. A backend failure is logged
// and reported as a miss so the caller fetches fresh data instead.
func (c *Cache) Get(ctx context.Context, deviceID string) (models.CacheEntry, bool) {
	entry, ok, err := c.backend.GetEntry(ctx, deviceID)
	if err != nil {
		storeErr := &models.CacheStoreError{Op: "get", DeviceID: deviceID, Err: err}

		c.logger.Warn("Cache read failed, treating as miss",
			zap.String("device_id", deviceID),
			zap.Error(storeErr))
		c.metrics.CacheLookup(metrics.LookupError)

		return models.CacheEntry{}, false
	}

	return entry, ok
}

// Put writes health through to the backend, replacing the previous entry.
// The entry is returned even when the write fails so the caller can still
// use the verdict; the error is a *models.CacheStoreError.
func (c *Cache) Put(ctx context.Context, deviceID string, health models.DeviceHealth, thresholdsVersion int64) (models.CacheEntry, error) {
	entry := models.CacheEntry{
		DeviceID:          deviceID,
		Health:            health,
		FetchedAt:         c.now(),
		ThresholdsVersion: thresholdsVersion,
	}

	entry.Health.Cached = false

	if err := c.backend.PutEntry(ctx, &entry); err != nil {
		storeErr := &models.CacheStoreError{Op: "put", DeviceID: deviceID, Err: err}

		c.logger.Warn("Cache write failed, returning uncached verdict",
			zap.String("device_id", deviceID),
			zap.Error(storeErr))
		c.metrics.CacheWriteError()

		return entry, storeErr
	}

	return entry, nil
}

// IsFresh reports whether entry is younger than ttl at now.
func IsFresh(entry models.CacheEntry, ttl time.Duration, now time.Time) bool {
	if entry.FetchedAt.IsZero() {
		return false
	}

	return now.Sub(entry.FetchedAt) < ttl
}

// SingleFlightRefresh runs refresh for deviceID and writes the result
// through. Concurrent calls for the same device share one execution and
// receive the same entry or the same error.
//
// When fresh is non-nil the stored entry is read again inside the flight and
// served, marked cached, if fresh accepts it. A caller that missed just
// before an earlier flight wrote through then reuses that result instead of
// fetching again. A nil fresh always refreshes.
//
// The shared execution is not canceled when one caller gives up; each
// caller stops waiting when its own ctx is done. refresh is expected to
// bound its own upstream work.
func (c *Cache) SingleFlightRefresh(
	ctx context.Context, deviceID string, fresh FreshFunc, refresh RefreshFunc,
) (models.CacheEntry, error) {
	if refresh == nil {
		return models.CacheEntry{}, errNilRefresh
	}

	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(deviceID, func() (interface{}, error) {
		if fresh != nil {
			if entry, ok := c.Get(shared, deviceID); ok && fresh(entry) {
				entry.Health.Cached = true

				return entry, nil
			}
		}

		health, err := c.runRefresh(shared, refresh)
		c.metrics.Refresh(err == nil)

		if err != nil {
			return models.CacheEntry{}, err
		}

		entry, _ := c.Put(shared, deviceID, health, health.ThresholdsVersion)

		return entry, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.CacheEntry{}, res.Err
		}

		return res.Val.(models.CacheEntry), nil
	case <-ctx.Done():
		return models.CacheEntry{}, ctx.Err()
	}
}

// Forget drops any in-flight refresh for deviceID so the next call starts a
// new one.
func (c *Cache) Forget(deviceID string) {
	c.group.Forget(deviceID)
}

// Reap deletes entries fetched before cutoff.
func (c *Cache) Reap(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := c.backend.DeleteEntriesBefore(ctx, cutoff)
	if err != nil {
		return 0, &models.CacheStoreError{Op: "reap", Err: err}
	}

	c.metrics.EntriesReaped(n)

	return n, nil
}

// runRefresh converts a panic in refresh into an error so it reaches every
// waiting caller.
func (*Cache) runRefresh(ctx context.Context, refresh RefreshFunc) (health models.DeviceHealth, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errRefreshPanic, r)
		}
	}()

	return refresh(ctx)
}
