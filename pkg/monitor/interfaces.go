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
	"context"

	"github.com/mfreeman451/fleetradar/pkg/cache"
	"github.com/mfreeman451/fleetradar/pkg/models"
)

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/mfreeman451/fleetradar/pkg/monitor DeviceSource,SettingsProvider

// DeviceSource is the fleet-management platform. Failures must be returned
// as *models.UpstreamAuthError or *models.UpstreamFetchError.
type DeviceSource interface {
	ListDevices(ctx context.Context) ([]models.DeviceBasicInfo, error)
	GetDeviceDetail(ctx context.Context, deviceID string) (*models.DeviceFacts, error)
}

// SettingsProvider returns the thresholds and groups in force.
type SettingsProvider interface {
	Current(ctx context.Context) (models.EvaluationSettings, error)
}

// HealthCache is the subset of *cache.Cache the orchestrator needs.
type HealthCache interface {
	Get(ctx context.Context, deviceID string) (models.CacheEntry, bool)
	SingleFlightRefresh(
		ctx context.Context, deviceID string, fresh cache.FreshFunc, refresh cache.RefreshFunc,
	) (models.CacheEntry, error)
}

var _ HealthCache = (*cache.Cache)(nil)
