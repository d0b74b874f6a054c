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

package monitor

import (
	"time"

	"github.com/mfreeman451/fleetradar/pkg/cache"
	"github.com/mfreeman451/fleetradar/pkg/models"
)

const (
	DefaultMaxConcurrency = 10
	DefaultDeviceTimeout  = 30 * time.Second
)

// Config bounds the fan-out of a batch.
type Config struct {
	// TTL is how long a cached verdict is served without refetching.
	TTL time.Duration
	// MaxConcurrency caps simultaneous per-device tasks; the rest queue.
	MaxConcurrency int
	// DeviceTimeout bounds one upstream fetch.
	DeviceTimeout time.Duration
	// InvalidateOnThresholdChange treats entries computed under an older
	// thresholds version as stale.
	InvalidateOnThresholdChange bool
}

func (c *Config) withDefaults() Config {
	out := *c

	if out.TTL <= 0 {
		out.TTL = cache.DefaultTTL
	}

	if out.MaxConcurrency <= 0 {
		out.MaxConcurrency = DefaultMaxConcurrency
	}

	if out.DeviceTimeout <= 0 {
		out.DeviceTimeout = DefaultDeviceTimeout
	}

	return out
}

// BatchResult is the outcome of evaluating a set of devices. Results holds
// only devices that resolved; every other requested device is in Failures.
type BatchResult struct {
	Results           []models.DeviceHealth  `json:"results"`
	Succeeded         int                    `json:"succeeded"`
	Failed            int                    `json:"failed"`
	Failures          []models.DeviceFailure `json:"failures"`
	Summary           models.StatusSummary   `json:"summary"`
	ThresholdsVersion int64                  `json:"thresholds_version"`
}

// outcome is the result of one per-device task: exactly one field is set.
type outcome struct {
	health  *models.DeviceHealth
	failure *models.DeviceFailure
}
