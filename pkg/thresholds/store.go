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

// Package thresholds pkg/thresholds/store.go owns the versioned health
// thresholds and the compliance/monitored group names.
package thresholds

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// Store is the only writer of thresholds and group settings. Every accepted
// update becomes a new version; earlier versions are kept by the repository.
type Store struct {
	repo   Repository
	logger *zap.Logger

	// writeMu serializes updates issued through this process. The
	// repository transaction serializes them across processes.
	writeMu sync.Mutex
}

// NewStore seeds defaults into repo when it holds no version yet.
func NewStore(ctx context.Context, repo Repository, defaults models.EvaluationSettings, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ValidateThresholds(defaults.Thresholds); err != nil {
		return nil, err
	}

	groups, err := normalizeGroups(defaults.Groups)
	if err != nil {
		return nil, err
	}

	if err := repo.EnsureDefaults(ctx, defaults.Thresholds, groups); err != nil {
		return nil, storeError("seed settings", err)
	}

	return &Store{repo: repo, logger: logger}, nil
}

// Current returns the thresholds and group settings in force right now. Both
// come from one repository read, so a concurrent update of either is seen
// entirely or not at all.
func (s *Store) Current(ctx context.Context) (models.EvaluationSettings, error) {
	settings, err := s.repo.CurrentSettings(ctx)
	if err != nil {
		return models.EvaluationSettings{}, storeError("read settings", err)
	}

	return settings, nil
}

// Thresholds returns the current thresholds version.
func (s *Store) Thresholds(ctx context.Context) (models.Thresholds, error) {
	th, err := s.repo.CurrentThresholds(ctx)
	if err != nil {
		return models.Thresholds{}, storeError("read thresholds", err)
	}

	return th, nil
}

// Update validates the provided fields, merges them over the current version
// and appends the result as the new current version. A rejected update
// writes nothing.
func (s *Store) Update(ctx context.Context, update models.ThresholdsUpdate) (models.Thresholds, error) {
	if update.IsEmpty() {
		return models.Thresholds{}, &models.ValidationError{Message: errNoThresholdFields.Error()}
	}

	if err := validateUpdate(update); err != nil {
		return models.Thresholds{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := s.repo.UpdateThresholds(ctx, func(current models.Thresholds) (models.Thresholds, error) {
		next := update.Apply(current)

		return next, ValidateThresholds(next)
	})
	if err != nil {
		return models.Thresholds{}, storeError("update thresholds", err)
	}

	s.logger.Info("Thresholds updated",
		zap.Int64("thresholds_version", updated.Version),
		zap.Int("check_in_hours", updated.CheckInHours),
		zap.Int("recon_hours", updated.ReconHours),
		zap.Int("pending_command_hours", updated.PendingCommandHours))

	return updated, nil
}

// History returns up to limit thresholds versions, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]models.Thresholds, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	history, err := s.repo.ThresholdHistory(ctx, limit)
	if err != nil {
		return nil, storeError("read thresholds history", err)
	}

	return history, nil
}

// Groups returns the current compliance and monitored group names.
func (s *Store) Groups(ctx context.Context) (models.GroupSettings, error) {
	gs, err := s.repo.GroupSettings(ctx)
	if err != nil {
		return models.GroupSettings{}, storeError("read group settings", err)
	}

	return gs, nil
}

// UpdateGroups replaces the provided group fields and records a new version.
func (s *Store) UpdateGroups(ctx context.Context, update models.GroupSettingsUpdate) (models.GroupSettings, error) {
	if update.IsEmpty() {
		return models.GroupSettings{}, &models.ValidationError{Message: errNoGroupFields.Error()}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := s.repo.UpdateGroupSettings(ctx, func(current models.GroupSettings) (models.GroupSettings, error) {
		if update.ComplianceGroup != nil {
			current.ComplianceGroup = *update.ComplianceGroup
		}

		if update.MonitoredGroups != nil {
			current.MonitoredGroups = *update.MonitoredGroups
		}

		return normalizeGroups(current)
	})
	if err != nil {
		return models.GroupSettings{}, storeError("update group settings", err)
	}

	s.logger.Info("Group settings updated",
		zap.Int64("settings_version", updated.Version),
		zap.String("compliance_group", updated.ComplianceGroup),
		zap.Strings("monitored_groups", updated.MonitoredGroups))

	return updated, nil
}

// ValidateThresholds checks every hour value against its inclusive bounds
// and reports the first field out of range.
func ValidateThresholds(th models.Thresholds) error {
	checks := []struct {
		field string
		value int
		max   int
	}{
		{"check_in_hours", th.CheckInHours, models.MaxCheckInHours},
		{"recon_hours", th.ReconHours, models.MaxReconHours},
		{"pending_command_hours", th.PendingCommandHours, models.MaxPendingCommandHours},
	}

	for _, c := range checks {
		if c.value < models.MinThresholdHours || c.value > c.max {
			return &models.ValidationError{Field: c.field, Value: c.value, Min: models.MinThresholdHours, Max: c.max}
		}
	}

	return nil
}

// validateUpdate checks only the fields the caller provided, so the error
// names the field they sent.
func validateUpdate(u models.ThresholdsUpdate) error {
	checks := []struct {
		field string
		value *int
		max   int
	}{
		{"check_in_hours", u.CheckInHours, models.MaxCheckInHours},
		{"recon_hours", u.ReconHours, models.MaxReconHours},
		{"pending_command_hours", u.PendingCommandHours, models.MaxPendingCommandHours},
	}

	for _, c := range checks {
		if c.value == nil {
			continue
		}

		if *c.value < models.MinThresholdHours || *c.value > c.max {
			return &models.ValidationError{Field: c.field, Value: *c.value, Min: models.MinThresholdHours, Max: c.max}
		}
	}

	return nil
}

// normalizeGroups trims names, drops duplicates and sorts the monitored list.
func normalizeGroups(gs models.GroupSettings) (models.GroupSettings, error) {
	gs.ComplianceGroup = strings.TrimSpace(gs.ComplianceGroup)
	if gs.ComplianceGroup == "" {
		return models.GroupSettings{}, &models.ValidationError{Field: "compliance_group", Message: errBlankGroup.Error()}
	}

	seen := make(map[string]struct{}, len(gs.MonitoredGroups))
	monitored := make([]string, 0, len(gs.MonitoredGroups))

	for _, name := range gs.MonitoredGroups {
		name = strings.TrimSpace(name)
		if name == "" {
			return models.GroupSettings{}, &models.ValidationError{Field: "monitored_groups", Message: errBlankGroup.Error()}
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		monitored = append(monitored, name)
	}

	sort.Strings(monitored)
	gs.MonitoredGroups = monitored

	return gs, nil
}

// storeError leaves validation and not-found errors as they are and wraps
// everything else as a persistence failure.
func storeError(op string, err error) error {
	var storeErr *models.CacheStoreError

	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrSettingsNotFound),
		errors.As(err, &storeErr):
		return err
	default:
		return &models.CacheStoreError{Op: op, Err: err}
	}
}
