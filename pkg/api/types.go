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

import "github.com/mfreeman451/fleetradar/pkg/models"

// DeviceListResponse is returned by GET /api/v1/devices. The status counts
// cover Devices after filtering.
type DeviceListResponse struct {
	Total          int                    `json:"total"`
	Devices        []models.DeviceHealth  `json:"devices"`
	HealthyCount   int                    `json:"healthy_count"`
	CautionCount   int                    `json:"caution_count"`
	UnhealthyCount int                    `json:"unhealthy_count"`
	FailedCount    int                    `json:"failed_count"`
	Failures       []models.DeviceFailure `json:"failures"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}
