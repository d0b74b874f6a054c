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

package models

import "time"

const (
	DefaultCheckInHours        = 24
	DefaultReconHours          = 24
	DefaultPendingCommandHours = 6
	DefaultComplianceGroup     = "Compliance"
)

// Accepted threshold bounds, inclusive.
const (
	MinThresholdHours      = 1
	MaxCheckInHours        = 168
	MaxReconHours          = 168
	MaxPendingCommandHours = 72
)

const (
	SettingKeyComplianceGroup = "compliance_group"
	SettingKeyMonitoredGroups = "monitored_groups"
)

// Thresholds is one version of the staleness limits. Version increases by
// one with every accepted update; the highest version is the current one.
type Thresholds struct {
	Version             int64     `json:"version"`
	CheckInHours        int       `json:"check_in_hours"`
	ReconHours          int       `json:"recon_hours"`
	PendingCommandHours int       `json:"pending_command_hours"`
	EffectiveAt         time.Time `json:"effective_at"`
}

// CheckInWindow returns the check-in limit as a duration.
func (t Thresholds) CheckInWindow() time.Duration {
	return time.Duration(t.CheckInHours) * time.Hour
}

// ReconWindow returns the inventory-update limit as a duration.
func (t Thresholds) ReconWindow() time.Duration {
	return time.Duration(t.ReconHours) * time.Hour
}

// PendingCommandWindow returns the pending-command limit as a duration.
func (t Thresholds) PendingCommandWindow() time.Duration {
	return time.Duration(t.PendingCommandHours) * time.Hour
}

// DefaultThresholds returns the values seeded on first run.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CheckInHours:        DefaultCheckInHours,
		ReconHours:          DefaultReconHours,
		PendingCommandHours: DefaultPendingCommandHours,
	}
}

// ThresholdsUpdate is a partial update. A nil field is left unchanged; a
// non-nil field is always validated, including zero.
type ThresholdsUpdate struct {
	CheckInHours        *int `json:"check_in_hours,omitempty"`
	ReconHours          *int `json:"recon_hours,omitempty"`
	PendingCommandHours *int `json:"pending_command_hours,omitempty"`
}

// IsEmpty reports whether no field was provided.
func (u ThresholdsUpdate) IsEmpty() bool {
	return u.CheckInHours == nil && u.ReconHours == nil && u.PendingCommandHours == nil
}

// Apply returns base with the provided fields replaced.
func (u ThresholdsUpdate) Apply(base Thresholds) Thresholds {
	if u.CheckInHours != nil {
		base.CheckInHours = *u.CheckInHours
	}

	if u.ReconHours != nil {
		base.ReconHours = *u.ReconHours
	}

	if u.PendingCommandHours != nil {
		base.PendingCommandHours = *u.PendingCommandHours
	}

	return base
}

// GroupSettings names the compliance group and the groups whose membership
// flags a device for caution.
type GroupSettings struct {
	Version         int64     `json:"version"`
	ComplianceGroup string    `json:"compliance_group"`
	MonitoredGroups []string  `json:"monitored_groups"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultGroupSettings returns the values seeded on first run.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		ComplianceGroup: DefaultComplianceGroup,
		MonitoredGroups: []string{},
	}
}

// GroupSettingsUpdate is a partial update of GroupSettings.
type GroupSettingsUpdate struct {
	ComplianceGroup *string   `json:"compliance_group,omitempty"`
	MonitoredGroups *[]string `json:"monitored_groups,omitempty"`
}

// IsEmpty reports whether no field was provided.
func (u GroupSettingsUpdate) IsEmpty() bool {
	return u.ComplianceGroup == nil && u.MonitoredGroups == nil
}

// EvaluationSettings is the snapshot of configuration a verdict is computed
// against.
type EvaluationSettings struct {
	Thresholds Thresholds    `json:"thresholds"`
	Groups     GroupSettings `json:"groups"`
}
