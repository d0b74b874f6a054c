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

package thresholds

import (
	"context"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

// Repository persists versioned thresholds and group settings. Update
// methods must run read, mutate and append as one exclusive transaction and
// write nothing when mutate fails.
type Repository interface {
	EnsureDefaults(ctx context.Context, th models.Thresholds, groups models.GroupSettings) error
	// CurrentSettings reads thresholds and group settings from one
	// consistent snapshot.
	CurrentSettings(ctx context.Context) (models.EvaluationSettings, error)
	CurrentThresholds(ctx context.Context) (models.Thresholds, error)
	UpdateThresholds(ctx context.Context, mutate func(models.Thresholds) (models.Thresholds, error)) (models.Thresholds, error)
	ThresholdHistory(ctx context.Context, limit int) ([]models.Thresholds, error)
	GroupSettings(ctx context.Context) (models.GroupSettings, error)
	UpdateGroupSettings(
		ctx context.Context, mutate func(models.GroupSettings) (models.GroupSettings, error),
	) (models.GroupSettings, error)
}
