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

// Package monitor pkg/monitor/orchestrator.go resolves device health for one
// device or a whole batch, choosing per device between the cache and a
// fresh upstream fetch.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/cache"
	"github.com/mfreeman451/fleetradar/pkg/health"
	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates the device source, the settings store and the
// health cache. It is safe for concurrent use.
type Orchestrator struct {
	source   DeviceSource
	settings SettingsProvider
	cache    HealthCache
	config   Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for evaluation and freshness checks.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithMetrics records cache lookups, failures and batch statistics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an Orchestrator.
func New(
	source DeviceSource, settings SettingsProvider, c HealthCache, config Config, logger *zap.Logger, opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		source:   source,
		settings: settings,
		cache:    c,
		config:   config.withDefaults(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// EvaluateFleet lists every device at the source and evaluates them all.
func (o *Orchestrator) EvaluateFleet(ctx context.Context, useCache bool) (*BatchResult, error) {
	devices, err := o.source.ListDevices(ctx)
	if err != nil {
		o.logSourceError("Failed to list devices", err)

		return nil, err
	}

	ids := make([]string, 0, len(devices))
	for i := range devices {
		ids = append(ids, devices[i].ID)
	}

	return o.EvaluateAll(ctx, ids, useCache)
}

// EvaluateAll resolves every device in deviceIDs with at most
// MaxConcurrency tasks in flight. One settings snapshot is used for the whole
// batch. A device that fails is reported in Failures and never aborts the
// others; the only error returned is a failure to load settings.
//
// Duplicate ids are evaluated once.
func (o *Orchestrator) EvaluateAll(ctx context.Context, deviceIDs []string, useCache bool) (*BatchResult, error) {
	start := time.Now()

	settings, err := o.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettingsUnavailable, err)
	}

	ids := uniqueIDs(deviceIDs)
	outcomes := make([]outcome, len(ids))

	var g errgroup.Group

	g.SetLimit(o.config.MaxConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = o.evaluate(ctx, &settings, id, useCache)

			// per-device failures are carried in the outcome
			return nil
		})
	}

	_ = g.Wait()

	result := o.collect(outcomes, &settings)

	o.metrics.BatchCompleted(time.Since(start), result.Summary.Healthy, result.Summary.Caution, result.Summary.Unhealthy)
	o.logger.Info("Batch evaluated",
		zap.Int("requested", len(ids)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int64("thresholds_version", result.ThresholdsVersion),
		zap.Bool("use_cache", useCache),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// EvaluateOne resolves a single device. Unlike a batch, a failure is
// returned to the caller as a typed error.
func (o *Orchestrator) EvaluateOne(ctx context.Context, deviceID string, useCache bool) (*models.DeviceHealth, error) {
	settings, err := o.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettingsUnavailable, err)
	}

	dh, err := o.resolve(ctx, &settings, deviceID, useCache)
	if err != nil {
		o.recordFailure(deviceID, err)

		return nil, err
	}

	return &dh, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, settings *models.EvaluationSettings, deviceID string, useCache bool) outcome {
	dh, err := o.resolve(ctx, settings, deviceID, useCache)
	if err != nil {
		failure := o.recordFailure(deviceID, err)

		return outcome{failure: &failure}
	}

	return outcome{health: &dh}
}

// resolve serves a fresh cache entry when allowed and otherwise refreshes
// through the cache's single-flight group.
func (o *Orchestrator) resolve(
	ctx context.Context, settings *models.EvaluationSettings, deviceID string, useCache bool,
) (models.DeviceHealth, error) {
	if err := ctx.Err(); err != nil {
		return models.DeviceHealth{}, err
	}

	if deviceID == "" {
		return models.DeviceHealth{}, &models.EvaluationError{Reason: reasonEmptyDeviceID}
	}

	if useCache {
		if dh, ok := o.cached(ctx, settings, deviceID); ok {
			return dh, nil
		}
	}

	snapshot := *settings

	// a cache-allowed caller rechecks inside the flight so a refresh that
	// completed after its miss is reused rather than fetched again
	var fresh cache.FreshFunc
	if useCache {
		fresh = func(entry models.CacheEntry) bool {
			return o.isFresh(&entry, &snapshot)
		}
	}

	entry, err := o.cache.SingleFlightRefresh(ctx, deviceID, fresh, func(ctx context.Context) (models.DeviceHealth, error) {
		return o.refresh(ctx, &snapshot, deviceID)
	})
	if err != nil {
		return models.DeviceHealth{}, err
	}

	return entry.Health, nil
}

func (o *Orchestrator) cached(ctx context.Context, settings *models.EvaluationSettings, deviceID string) (models.DeviceHealth, bool) {
	entry, ok := o.cache.Get(ctx, deviceID)
	if !ok {
		o.metrics.CacheLookup(metrics.LookupMiss)

		return models.DeviceHealth{}, false
	}

	if !o.isFresh(&entry, settings) {
		o.metrics.CacheLookup(metrics.LookupStale)

		return models.DeviceHealth{}, false
	}

	o.metrics.CacheLookup(metrics.LookupHit)

	dh := entry.Health
	dh.Cached = true

	return dh, true
}

func (o *Orchestrator) isFresh(entry *models.CacheEntry, settings *models.EvaluationSettings) bool {
	if !cache.IsFresh(*entry, o.config.TTL, o.now()) {
		return false
	}

	if o.config.InvalidateOnThresholdChange && entry.ThresholdsVersion != settings.Thresholds.Version {
		return false
	}

	return true
}

// refresh fetches facts and evaluates them. It runs inside the cache's
// single-flight group.
func (o *Orchestrator) refresh(ctx context.Context, settings *models.EvaluationSettings, deviceID string) (models.DeviceHealth, error) {
	facts, err := o.fetch(ctx, deviceID)
	if err != nil {
		return models.DeviceHealth{}, err
	}

	now := o.now()

	verdict, err := health.Evaluate(facts, *settings, now)
	if err != nil {
		var evalErr *models.EvaluationError
		if errors.As(err, &evalErr) && evalErr.DeviceID == "" {
			evalErr.DeviceID = deviceID
		}

		return models.DeviceHealth{}, err
	}

	return models.DeviceHealth{
		Device:            facts.DeviceBasicInfo,
		Health:            verdict,
		Status:            verdict.Status,
		LastChecked:       now,
		ThresholdsVersion: settings.Thresholds.Version,
	}, nil
}

// fetch bounds one upstream call by DeviceTimeout, even when the source
// does not honor its context.
func (o *Orchestrator) fetch(ctx context.Context, deviceID string) (*models.DeviceFacts, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.DeviceTimeout)
	defer cancel()

	type fetchResult struct {
		facts *models.DeviceFacts
		err   error
	}

	ch := make(chan fetchResult, 1)

	go func() {
		facts, err := o.source.GetDeviceDetail(ctx, deviceID)
		ch <- fetchResult{facts: facts, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(res.err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %w", res.err, context.DeadlineExceeded)
			}

			return nil, res.err
		}

		if res.facts == nil {
			return nil, &models.EvaluationError{DeviceID: deviceID, Reason: reasonNoFacts}
		}

		return res.facts, nil
	case <-ctx.Done():
		return nil, &models.UpstreamFetchError{Op: "device detail", DeviceID: deviceID, Err: ctx.Err()}
	}
}

func (o *Orchestrator) collect(outcomes []outcome, settings *models.EvaluationSettings) *BatchResult {
	result := &BatchResult{
		Results:           make([]models.DeviceHealth, 0, len(outcomes)),
		Failures:          []models.DeviceFailure{},
		ThresholdsVersion: settings.Thresholds.Version,
	}

	for i := range outcomes {
		switch {
		case outcomes[i].health != nil:
			result.Results = append(result.Results, *outcomes[i].health)
		case outcomes[i].failure != nil:
			result.Failures = append(result.Failures, *outcomes[i].failure)
		}
	}

	result.Succeeded = len(result.Results)
	result.Failed = len(result.Failures)
	result.Summary = models.NewStatusSummary(result.Results, result.Failed, o.now())
	result.Summary.ThresholdsVersion = settings.Thresholds.Version

	return result
}

// recordFailure logs and counts a per-device failure. Credential failures
// are logged at error level because they usually affect every device.
func (o *Orchestrator) recordFailure(deviceID string, err error) models.DeviceFailure {
	failure := models.DeviceFailure{
		DeviceID: deviceID,
		Kind:     models.ClassifyFailure(err),
		Reason:   err.Error(),
	}

	fields := []zap.Field{
		zap.String("device_id", deviceID),
		zap.String("kind", string(failure.Kind)),
		zap.Error(err),
	}

	if failure.Kind == models.FailureUpstreamAuth {
		o.logger.Error("Upstream rejected credentials while evaluating device", fields...)
	} else {
		o.logger.Warn("Device evaluation failed", fields...)
	}

	o.metrics.DeviceFailure(string(failure.Kind))

	return failure
}

func (o *Orchestrator) logSourceError(msg string, err error) {
	var authErr *models.UpstreamAuthError
	if errors.As(err, &authErr) {
		o.logger.Error(msg, zap.String("kind", string(models.FailureUpstreamAuth)), zap.Error(err))

		return
	}

	o.logger.Warn(msg, zap.Error(err))
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
