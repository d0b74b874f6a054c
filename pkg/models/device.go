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

// Package models pkg/models/device.go holds the types shared by the health
// engine, the device source and the API.
package models

import (
	"fmt"
	"time"
)

// HealthStatus is the traffic-light classification of a device.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusCaution   HealthStatus = "caution"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// ParseHealthStatus converts a query value into a HealthStatus.
func ParseHealthStatus(s string) (HealthStatus, error) {
	switch HealthStatus(s) {
	case StatusHealthy, StatusCaution, StatusUnhealthy:
		return HealthStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, s)
	}
}

// DeviceBasicInfo is the inventory summary returned when listing devices.
type DeviceBasicInfo struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	SerialNumber        string     `json:"serial_number"`
	Model               string     `json:"model"`
	OSVersion           string     `json:"os_version"`
	LastContactTime     *time.Time `json:"last_contact_time"`
	LastInventoryUpdate *time.Time `json:"last_inventory_update"`
}

// PendingCommand is an MDM command that has been issued but not acknowledged.
type PendingCommand struct {
	UUID     string    `json:"uuid,omitempty"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	IssuedAt time.Time `json:"issued_at"`
}

// DeviceFacts is a read-only snapshot of a device as reported upstream.
type DeviceFacts struct {
	DeviceBasicInfo

	GroupMemberships  []string         `json:"group_memberships"`
	HasFailedPolicies bool             `json:"has_failed_policies"`
	HasFailedCommands bool             `json:"has_failed_commands"`
	PendingCommands   []PendingCommand `json:"pending_commands"`
}

// DeviceHealth is a device together with the verdict computed for it.
type DeviceHealth struct {
	Device            DeviceBasicInfo `json:"device"`
	Health            HealthVerdict   `json:"health"`
	Status            HealthStatus    `json:"status"`
	LastChecked       time.Time       `json:"last_checked"`
	ThresholdsVersion int64           `json:"thresholds_version"`
	Cached            bool            `json:"cached"`
}

// DeviceFailure records why a device could not be evaluated in a batch.
type DeviceFailure struct {
	DeviceID string      `json:"device_id"`
	Kind     FailureKind `json:"kind"`
	Reason   string      `json:"reason"`
}

// CacheEntry is a persisted health snapshot for one device.
type CacheEntry struct {
	DeviceID          string       `json:"device_id"`
	Health            DeviceHealth `json:"health"`
	FetchedAt         time.Time    `json:"fetched_at"`
	ThresholdsVersion int64        `json:"thresholds_version"`
}
