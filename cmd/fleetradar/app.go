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

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/cache"
	"github.com/mfreeman451/fleetradar/pkg/config"
	"github.com/mfreeman451/fleetradar/pkg/db"
	"github.com/mfreeman451/fleetradar/pkg/jamf"
	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/monitor"
	"github.com/mfreeman451/fleetradar/pkg/thresholds"
	"go.uber.org/zap"
)

// app holds the long-lived components. They are built once and shared by
// reference.
type app struct {
	metrics      *metrics.Metrics
	db           *db.DB
	store        *thresholds.Store
	cache        *cache.Cache
	reaper       *cache.Reaper
	orchestrator *monitor.Orchestrator
	pingers      pingers
	closers      []func() error
}

type appOptions struct {
	// ephemeral keeps settings and cache in memory and never opens the
	// database.
	ephemeral bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	if err := cfg.ValidateSource(); err != nil {
		return nil, err
	}

	a := &app{metrics: metrics.New()}

	repo, err := a.settingsRepository(cfg, logger, opts)
	if err != nil {
		return nil, a.closeWith(err)
	}

	a.store, err = thresholds.NewStore(ctx, repo, cfg.EvaluationDefaults(), logger.Named("thresholds"))
	if err != nil {
		return nil, a.closeWith(err)
	}

	backend, err := a.cacheBackend(ctx, cfg, opts)
	if err != nil {
		return nil, a.closeWith(err)
	}

	a.cache = cache.New(backend, logger.Named("cache"), cache.WithMetrics(a.metrics))
	a.reaper = cache.NewReaper(a.cache, cache.ReaperConfig{
		Interval:  time.Duration(cfg.Cache.ReapInterval),
		Retention: time.Duration(cfg.Cache.Retention),
	}, logger.Named("reaper"))

	source, err := jamf.NewClient(jamf.Config{
		BaseURL:           cfg.Jamf.URL,
		ClientID:          cfg.Jamf.ClientID,
		ClientSecret:      cfg.Jamf.ClientSecret,
		Timeout:           time.Duration(cfg.Jamf.Timeout),
		RequestsPerSecond: cfg.Jamf.RequestsPerSecond,
		Burst:             cfg.Jamf.Burst,
		MaxRetries:        *cfg.Jamf.MaxRetries,
		RetryDelay:        time.Duration(cfg.Jamf.RetryDelay),
		MaxRetryDelay:     time.Duration(cfg.Jamf.MaxRetryDelay),
		PageSize:          cfg.Jamf.PageSize,
	}, logger.Named("jamf"), jamf.WithMetrics(a.metrics))
	if err != nil {
		return nil, a.closeWith(err)
	}

	a.orchestrator = monitor.New(source, a.store, a.cache, monitor.Config{
		TTL:                         time.Duration(cfg.Cache.TTL),
		MaxConcurrency:              cfg.Monitor.MaxConcurrency,
		DeviceTimeout:               time.Duration(cfg.Monitor.DeviceTimeout),
		InvalidateOnThresholdChange: cfg.Cache.InvalidateOnThresholdChange,
	}, logger.Named("monitor"), monitor.WithMetrics(a.metrics))

	return a, nil
}

func (a *app) settingsRepository(cfg *config.Config, logger *zap.Logger, opts appOptions) (thresholds.Repository, error) {
	if opts.ephemeral {
		return thresholds.NewMemoryRepository(), nil
	}

	database, err := db.New(cfg.DBPath, logger.Named("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
	}

	a.db = database
	a.pingers = append(a.pingers, database)
	a.closers = append(a.closers, database.Close)

	return database, nil
}

func (a *app) cacheBackend(ctx context.Context, cfg *config.Config, opts appOptions) (cache.Backend, error) {
	if opts.ephemeral {
		return cache.NewMemoryBackend(), nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return cache.NewMemoryBackend(), nil
	case config.CacheBackendRedis:
		rb, err := cache.NewRedisBackend(ctx, cache.RedisOptions{
			Addr:      cfg.Cache.Redis.Addr,
			Password:  cfg.Cache.Redis.Password,
			DB:        cfg.Cache.Redis.DB,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
			Retention: time.Duration(cfg.Cache.Retention),
		})
		if err != nil {
			return nil, err
		}

		a.pingers = append(a.pingers, rb)
		a.closers = append(a.closers, rb.Close)

		return rb, nil
	default:
		return a.db, nil
	}
}

// Close releases the database and cache connections.
func (a *app) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}

func (a *app) closeWith(err error) error {
	return errors.Join(err, a.Close())
}

// pingers checks every backing store.
type pingers []interface {
	Ping(ctx context.Context) error
}

func (p pingers) Ping(ctx context.Context) error {
	for _, pinger := range p {
		if err := pinger.Ping(ctx); err != nil {
			return err
		}
	}

	return nil
}
