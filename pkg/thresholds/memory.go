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
	"sync"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

// MemoryRepository keeps the full history in process memory. It is lost on
// restart and is meant for tests and one-shot runs.
type MemoryRepository struct {
	mu         sync.RWMutex
	thresholds []models.Thresholds
	groups     []models.GroupSettings
	now        func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) EnsureDefaults(_ context.Context, th models.Thresholds, groups models.GroupSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.thresholds) == 0 {
		r.appendThresholds(th)
	}

	if len(r.groups) == 0 {
		r.appendGroups(groups)
	}

	return nil
}

func (r *MemoryRepository) CurrentSettings(context.Context) (models.EvaluationSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.thresholds) == 0 || len(r.groups) == 0 {
		return models.EvaluationSettings{}, models.ErrSettingsNotFound
	}

	return models.EvaluationSettings{
		Thresholds: r.thresholds[len(r.thresholds)-1],
		Groups:     cloneGroups(r.groups[len(r.groups)-1]),
	}, nil
}

func (r *MemoryRepository) CurrentThresholds(context.Context) (models.Thresholds, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.thresholds) == 0 {
		return models.Thresholds{}, models.ErrSettingsNotFound
	}

	return r.thresholds[len(r.thresholds)-1], nil
}

func (r *MemoryRepository) UpdateThresholds(
	_ context.Context, mutate func(models.Thresholds) (models.Thresholds, error),
) (models.Thresholds, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.thresholds) == 0 {
		return models.Thresholds{}, models.ErrSettingsNotFound
	}

	next, err := mutate(r.thresholds[len(r.thresholds)-1])
	if err != nil {
		return models.Thresholds{}, err
	}

	return r.appendThresholds(next), nil
}

func (r *MemoryRepository) ThresholdHistory(_ context.Context, limit int) ([]models.Thresholds, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]models.Thresholds, 0, len(r.thresholds))

	for i := len(r.thresholds) - 1; i >= 0 && len(history) < limit; i-- {
		history = append(history, r.thresholds[i])
	}

	return history, nil
}

func (r *MemoryRepository) GroupSettings(context.Context) (models.GroupSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.groups) == 0 {
		return models.GroupSettings{}, models.ErrSettingsNotFound
	}

	return cloneGroups(r.groups[len(r.groups)-1]), nil
}

func (r *MemoryRepository) UpdateGroupSettings(
	_ context.Context, mutate func(models.GroupSettings) (models.GroupSettings, error),
) (models.GroupSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.groups) == 0 {
		return models.GroupSettings{}, models.ErrSettingsNotFound
	}

	next, err := mutate(cloneGroups(r.groups[len(r.groups)-1]))
	if err != nil {
		return models.GroupSettings{}, err
	}

	return cloneGroups(r.appendGroups(next)), nil
}

// appendThresholds must be called with mu held.
func (r *MemoryRepository) appendThresholds(th models.Thresholds) models.Thresholds {
	th.Version = int64(len(r.thresholds) + 1)
	th.EffectiveAt = r.now()
	r.thresholds = append(r.thresholds, th)

	return th
}

// appendGroups must be called with mu held.
func (r *MemoryRepository) appendGroups(gs models.GroupSettings) models.GroupSettings {
	gs = cloneGroups(gs)
	gs.Version = int64(len(r.groups) + 1)
	gs.UpdatedAt = r.now()
	r.groups = append(r.groups, gs)

	return gs
}

func cloneGroups(gs models.GroupSettings) models.GroupSettings {
	monitored := make([]string, len(gs.MonitoredGroups))
	copy(monitored, gs.MonitoredGroups)
	gs.MonitoredGroups = monitored

	return gs
}
