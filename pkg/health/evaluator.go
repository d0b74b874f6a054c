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

// Package health pkg/health/evaluator.go derives a health verdict from device
// facts and the configured thresholds. It performs no I/O.
package health

import (
	"sort"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

const (
	reasonCheckIn        = "check_in_ok=false"
	reasonRecon          = "recon_ok=false"
	reasonFailedPolicies = "has_failed_policies=true"
	reasonFailedCommands = "has_failed_commands=true"
	reasonOverdue        = "has_pending_overdue_commands=true"
	reasonNotCompliant   = "is_compliant=false"
	reasonMonitoredGroup = "monitored_group="
)

// Evaluate computes the verdict for facts as of now. The result depends only
// on its arguments.
func Evaluate(facts *models.DeviceFacts, settings models.EvaluationSettings, now time.Time) (models.HealthVerdict, error) {
	if facts == nil {
		return models.HealthVerdict{}, &models.EvaluationError{Reason: "no device facts"}
	}

	if facts.ID == "" {
		return models.HealthVerdict{}, &models.EvaluationError{Reason: "device facts have no id"}
	}

	th := settings.Thresholds

	verdict := models.HealthVerdict{
		CheckInOK:                 withinWindow(facts.LastContactTime, th.CheckInWindow(), now),
		ReconOK:                   withinWindow(facts.LastInventoryUpdate, th.ReconWindow(), now),
		HasFailedPolicies:         facts.HasFailedPolicies,
		HasFailedCommands:         facts.HasFailedCommands,
		HasPendingOverdueCommands: hasOverdueCommand(facts.PendingCommands, th.PendingCommandWindow(), now),
		IsCompliant:               isMember(facts.GroupMemberships, settings.Groups.ComplianceGroup),
		MonitoredMemberships:      monitoredMemberships(facts.GroupMemberships, settings.Groups),
	}

	verdict.Status, verdict.Reasons = classify(&verdict)

	return verdict, nil
}

// classify applies the status precedence: any staleness or failure signal is
// unhealthy, then non-compliance or a monitored membership is caution.
func classify(v *models.HealthVerdict) (models.HealthStatus, []string) {
	var reasons []string

	if !v.CheckInOK {
		reasons = append(reasons, reasonCheckIn)
	}

	if !v.ReconOK {
		reasons = append(reasons, reasonRecon)
	}

	if v.HasFailedPolicies {
		reasons = append(reasons, reasonFailedPolicies)
	}

	if v.HasFailedCommands {
		reasons = append(reasons, reasonFailedCommands)
	}

	if v.HasPendingOverdueCommands {
		reasons = append(reasons, reasonOverdue)
	}

	if len(reasons) > 0 {
		return models.StatusUnhealthy, reasons
	}

	if !v.IsCompliant {
		reasons = append(reasons, reasonNotCompliant)
	}

	for _, g := range v.MonitoredMemberships {
		reasons = append(reasons, reasonMonitoredGroup+g)
	}

	if len(reasons) > 0 {
		return models.StatusCaution, reasons
	}

	return models.StatusHealthy, nil
}

// withinWindow is inclusive: a timestamp exactly window old is still ok.
// A missing timestamp is never ok.
func withinWindow(ts *time.Time, window time.Duration, now time.Time) bool {
	if ts == nil || ts.IsZero() {
		return false
	}

	return now.Sub(*ts) <= window
}

func hasOverdueCommand(cmds []models.PendingCommand, window time.Duration, now time.Time) bool {
	for i := range cmds {
		if cmds[i].IssuedAt.IsZero() {
			continue
		}

		if now.Sub(cmds[i].IssuedAt) > window {
			return true
		}
	}

	return false
}

func isMember(groups []string, name string) bool {
	if name == "" {
		return false
	}

	for _, g := range groups {
		if g == name {
			return true
		}
	}

	return false
}

func monitoredMemberships(groups []string, gs models.GroupSettings) []string {
	if len(gs.MonitoredGroups) == 0 || len(groups) == 0 {
		return []string{}
	}

	monitored := make(map[string]struct{}, len(gs.MonitoredGroups))
	for _, g := range gs.MonitoredGroups {
		monitored[g] = struct{}{}
	}

	seen := make(map[string]struct{})
	matches := []string{}

	for _, g := range groups {
		if g == gs.ComplianceGroup {
			continue
		}

		if _, ok := monitored[g]; !ok {
			continue
		}

		if _, dup := seen[g]; dup {
			continue
		}

		seen[g] = struct{}{}
		matches = append(matches, g)
	}

	sort.Strings(matches)

	return matches
}
