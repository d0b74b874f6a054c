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
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReapInterval = 1 * time.Hour
	defaultRetention    = 24 * time.Hour
	reapTimeout         = 1 * time.Minute
)

// ReaperConfig controls how often old entries are removed and how old they
// must be.
type ReaperConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// Reaper periodically deletes cache entries older than the retention window.
// Freshness is always checked on read, so the reaper only bounds storage.
type Reaper struct {
	cache  *Cache
	config ReaperConfig
	logger *zap.Logger
	now    func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewReaper creates a reaper for c.
func NewReaper(c *Cache, config ReaperConfig, logger *zap.Logger) *Reaper {
	if config.Interval <= 0 {
		config.Interval = defaultReapInterval
	}

	if config.Retention <= 0 {
		config.Retention = defaultRetention
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reaper{
		cache:  c,
		config: config,
		logger: logger,
		now:    c.now,
		stopCh: make(chan struct{}),
	}
}

// Start runs the reap loop until ctx is done or Stop is called.
func (r *Reaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.logger.Info("Cache reaper started",
		zap.Duration("interval", r.config.Interval),
		zap.Duration("retention", r.config.Retention))

	r.ReapOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stopCh:
			r.logger.Info("Cache reaper stopped")

			return nil
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// Stop ends the loop started by Start.
func (r *Reaper) Stop(context.Context) error {
	r.stopOnce.Do(func() { close(r.stopCh) })

	return nil
}

// ReapOnce removes entries older than the retention window.
func (r *Reaper) ReapOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, reapTimeout)
	defer cancel()

	n, err := r.cache.Reap(ctx, r.now().Add(-r.config.Retention))
	if err != nil {
		r.logger.Error("Cache reap failed", zap.Error(err))

		return
	}

	if n > 0 {
		r.logger.Info("Reaped stale cache entries", zap.Int64("count", n))
	}
}
