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

package api

import (
	"context"

	"github.com/mfreeman451/fleetradar/pkg/models"
	"github.com/mfreeman451/fleetradar/pkg/monitor"
	"github.com/mfreeman451/fleetradar/pkg/thresholds"
)

//go:generate mockgen -destination=mock_api.go -package=api github.com/mfreeman451/fleetradar/pkg/api HealthService,SettingsService,Pinger

// HealthService evaluates devices.
type HealthService interface {
	EvaluateFleet(ctx context.Context, useCache bool) (*monitor.BatchResult, error)
	EvaluateOne(ctx context.Context, deviceID string, useCache bool) (*models.DeviceHealth, error)
}

// SettingsService reads and updates thresholds and group settings.
type SettingsService interface {
	Thresholds(ctx context.Context) (models.Thresholds, error)
	Update(ctx context.Context, update models.ThresholdsUpdate) (models.Thresholds, error)
	History(ctx context.Context, limit int) ([]models.Thresholds, error)
	Groups(ctx context.Context) (models.GroupSettings, error)
	UpdateGroups(ctx context.Context, update models.GroupSettingsUpdate) (models.GroupSettings, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ HealthService   = (*monitor.Orchestrator)(nil)
	_ SettingsService = (*thresholds.Store)(nil)
)
