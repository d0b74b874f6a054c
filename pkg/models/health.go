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

import (
	"math"
	"time"
)

// HealthVerdict holds the individual health predicates for a device and
// the status derived from them.
type HealthVerdict struct {
	CheckInOK                 bool         `json:"check_in_ok"`
	ReconOK                   bool         `json:"recon_ok"`
	HasFailedPolicies         bool         `json:"has_failed_policies"`
	HasFailedCommands         bool         `json:"has_failed_commands"`
	HasPendingOverdueCommands bool         `json:"has_pending_overdue_commands"`
	IsCompliant               bool         `json:"is_compliant"`
	MonitoredMemberships      []string     `json:"monitored_memberships"`
	Status                    HealthStatus `json:"status"`
	Reasons                   []string     `json:"reasons,omitempty"`
}

// StatusPercentages are rounded to one decimal place.
type StatusPercentages struct {
	Healthy   float64 `json:"healthy"`
	Caution   float64 `json:"caution"`
	Unhealthy float64 `json:"unhealthy"`
}

// StatusSummary aggregates the verdicts that resolved in one evaluation pass.
// Total is the number of resolved devices; Failed and Requested are reported
// beside it and never enter the percentages.
type StatusSummary struct {
	Total             int               `json:"total"`
	Healthy           int               `json:"healthy"`
	Caution           int               `json:"caution"`
	Unhealthy         int               `json:"unhealthy"`
	Percentages       StatusPercentages `json:"percentages"`
	Failed            int               `json:"failed"`
	Requested         int               `json:"requested"`
	ThresholdsVersion int64             `json:"thresholds_version"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// NewStatusSummary counts statuses over results.
func NewStatusSummary(results []DeviceHealth, failed int, generatedAt time.Time) StatusSummary {
	summary := StatusSummary{
		Total:       len(results),
		Failed:      failed,
		Requested:   len(results) + failed,
		GeneratedAt: generatedAt,
	}

	for i := range results {
		switch results[i].Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusCaution:
			summary.Caution++
		case StatusUnhealthy:
			summary.Unhealthy++
		}
	}

	summary.Percentages = StatusPercentages{
		Healthy:   percentOf(summary.Healthy, summary.Total),
		Caution:   percentOf(summary.Caution, summary.Total),
		Unhealthy: percentOf(summary.Unhealthy, summary.Total),
	}

	return summary
}

func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(n)/float64(total)*1000) / 10
}
