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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"github.com/mfreeman451/fleetradar/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	server   *Server
	health   *MockHealthService
	settings *MockSettingsService
	pinger   *MockPinger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)

	ts := &testServer{
		health:   NewMockHealthService(ctrl),
		settings: NewMockSettingsService(ctrl),
		pinger:   NewMockPinger(ctrl),
	}

	ts.server = NewServer(Config{
		Health:      ts.health,
		Settings:    ts.settings,
		Pinger:      ts.pinger,
		Metrics:     metrics.New(),
		CORSOrigins: []string{"*"},
	})

	return ts
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func deviceHealth(id string, status models.HealthStatus) models.DeviceHealth {
	return models.DeviceHealth{
		Device:            models.DeviceBasicInfo{ID: id, Name: "mac-" + id},
		Health:            models.HealthVerdict{Status: status},
		Status:            status,
		LastChecked:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ThresholdsVersion: 1,
	}
}

func fleet() *monitor.BatchResult {
	results := []models.DeviceHealth{
		deviceHealth("1", models.StatusHealthy),
		deviceHealth("2", models.StatusCaution),
		deviceHealth("3", models.StatusUnhealthy),
		deviceHealth("4", models.StatusHealthy),
	}
	failures := []models.DeviceFailure{{DeviceID: "5", Kind: models.FailureTimeout, Reason: "deadline exceeded"}}

	return &monitor.BatchResult{
		Results:           results,
		Succeeded:         len(results),
		Failed:            len(failures),
		Failures:          failures,
		Summary:           models.NewStatusSummary(results, len(failures), time.Now()),
		ThresholdsVersion: 1,
	}
}

func TestListDevices(t *testing.T) {
	ts := newTestServer(t)
	ts.health.EXPECT().EvaluateFleet(gomock.Any(), true).Return(fleet(), nil)

	rec := ts.do(http.MethodGet, "/api/v1/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[DeviceListResponse](t, rec)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 2, resp.HealthyCount)
	assert.Equal(t, 1, resp.CautionCount)
	assert.Equal(t, 1, resp.UnhealthyCount)
	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, models.FailureTimeout, resp.Failures[0].Kind)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListDevices_StatusFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.health.EXPECT().EvaluateFleet(gomock.Any(), false).Return(fleet(), nil)

	rec := ts.do(http.MethodGet, "/api/v1/devices?status_filter=healthy&use_cache=false", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[DeviceListResponse](t, rec)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.HealthyCount)
	assert.Zero(t, resp.CautionCount)
	assert.Zero(t, resp.UnhealthyCount)

	for _, d := range resp.Devices {
		assert.Equal(t, models.StatusHealthy, d.Status)
	}
}

func TestListDevices_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"unknown status", "status_filter=purple", "status_filter"},
		{"bad bool", "use_cache=maybe", "use_cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(http.MethodGet, "/api/v1/devices?"+tt.query, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}
}

func TestListDevices_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.health.EXPECT().EvaluateFleet(gomock.Any(), true).
		Return(nil, &models.UpstreamAuthError{StatusCode: http.StatusUnauthorized, Err: errors.New("bad secret")})

	rec := ts.do(http.MethodGet, "/api/v1/devices", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetSummary(t *testing.T) {
	ts := newTestServer(t)
	ts.health.EXPECT().EvaluateFleet(gomock.Any(), true).Return(fleet(), nil)

	rec := ts.do(http.MethodGet, "/api/v1/devices/status/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[models.StatusSummary](t, rec)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.InDelta(t, 50.0, summary.Percentages.Healthy, 0.001)
	assert.InDelta(t, 25.0, summary.Percentages.Caution, 0.001)
}

func TestGetDevice(t *testing.T) {
	ts := newTestServer(t)

	dh := deviceHealth("42", models.StatusCaution)
	ts.health.EXPECT().EvaluateOne(gomock.Any(), "42", true).Return(&dh, nil)

	rec := ts.do(http.MethodGet, "/api/v1/devices/42", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[models.DeviceHealth](t, rec)
	assert.Equal(t, "42", got.Device.ID)
	assert.Equal(t, models.StatusCaution, got.Status)
}

func TestGetDevice_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			"not found",
			&models.UpstreamFetchError{Op: "device detail", DeviceID: "42", StatusCode: 404, Err: models.ErrDeviceNotFound},
			http.StatusNotFound,
		},
		{
			"upstream fetch",
			&models.UpstreamFetchError{Op: "device detail", DeviceID: "42", StatusCode: 500, Err: errors.New("boom")},
			http.StatusBadGateway,
		},
		{
			"timeout",
			fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			http.StatusGatewayTimeout,
		},
		{
			"evaluation",
			&models.EvaluationError{DeviceID: "42", Reason: "no facts"},
			http.StatusUnprocessableEntity,
		},
		{
			"settings store",
			fmt.Errorf("%w: %w", monitor.ErrSettingsUnavailable, &models.CacheStoreError{Op: "read", Err: errors.New("disk")}),
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.health.EXPECT().EvaluateOne(gomock.Any(), "42", true).Return(nil, tt.err)

			rec := ts.do(http.MethodGet, "/api/v1/devices/42", "")
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestThresholds_Get(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.EXPECT().Thresholds(gomock.Any()).
		Return(models.Thresholds{Version: 3, CheckInHours: 24, ReconHours: 48, PendingCommandHours: 6}, nil)

	rec := ts.do(http.MethodGet, "/api/v1/settings/thresholds", "")
	require.Equal(t, http.StatusOK, rec.Code)

	th := decode[models.Thresholds](t, rec)
	assert.Equal(t, int64(3), th.Version)
	assert.Equal(t, 48, th.ReconHours)
}

func TestThresholds_PartialUpdate(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.ThresholdsUpdate) (models.Thresholds, error) {
			require.NotNil(t, u.ReconHours)
			assert.Equal(t, 12, *u.ReconHours)
			assert.Nil(t, u.CheckInHours)
			assert.Nil(t, u.PendingCommandHours)

			return models.Thresholds{Version: 2, CheckInHours: 24, ReconHours: 12, PendingCommandHours: 6}, nil
		})

	rec := ts.do(http.MethodPut, "/api/v1/settings/thresholds", `{"recon_hours": 12}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[models.Thresholds](t, rec).Version)
}

func TestThresholds_UpdateValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.EXPECT().Update(gomock.Any(), gomock.Any()).
		Return(models.Thresholds{}, &models.ValidationError{Field: "pending_command_hours", Value: 73, Min: 1, Max: 72})

	rec := ts.do(http.MethodPut, "/api/v1/settings/thresholds", `{"pending_command_hours": 73}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "pending_command_hours", resp.Field)
	assert.Contains(t, resp.Error, "73")
}

func TestThresholds_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPut, "/api/v1/settings/thresholds", `{"check_in_hours": "lots"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThresholds_History(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.EXPECT().History(gomock.Any(), 5).
		Return([]models.Thresholds{{Version: 2}, {Version: 1}}, nil)

	rec := ts.do(http.MethodGet, "/api/v1/settings/thresholds/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Thresholds](t, rec), 2)

	rec = ts.do(http.MethodGet, "/api/v1/settings/thresholds/history?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitoredGroups(t *testing.T) {
	ts := newTestServer(t)

	ts.settings.EXPECT().Groups(gomock.Any()).
		Return(models.GroupSettings{Version: 1, ComplianceGroup: "Compliance", MonitoredGroups: []string{}}, nil)
	ts.settings.EXPECT().UpdateGroups(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.GroupSettingsUpdate) (models.GroupSettings, error) {
			require.NotNil(t, u.MonitoredGroups)
			assert.Nil(t, u.ComplianceGroup)

			return models.GroupSettings{Version: 2, ComplianceGroup: "Compliance", MonitoredGroups: *u.MonitoredGroups}, nil
		})

	rec := ts.do(http.MethodGet, "/api/v1/settings/monitored-groups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Compliance", decode[models.GroupSettings](t, rec).ComplianceGroup)

	rec = ts.do(http.MethodPut, "/api/v1/settings/monitored-groups", `{"monitored_groups": ["Finance"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Finance"}, decode[models.GroupSettings](t, rec).MonitoredGroups)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.pinger.EXPECT().Ping(gomock.Any()).Return(nil)
	rec := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)

	ts.pinger.EXPECT().Ping(gomock.Any()).Return(errors.New("database is locked"))
	rec = ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
		body   string
	}{
		{name: "unknown_v1_path", method: http.MethodGet, path: "/api/v1/nope", want: http.StatusNotFound, body: "not found"},
		{name: "unknown_root_path", method: http.MethodGet, path: "/nope", want: http.StatusNotFound, body: "not found"},
		{
			name: "thresholds_delete", method: http.MethodDelete, path: "/api/v1/settings/thresholds",
			want: http.StatusMethodNotAllowed, body: "method not allowed",
		},
		{
			name: "devices_post", method: http.MethodPost, path: "/api/v1/devices",
			want: http.StatusMethodNotAllowed, body: "method not allowed",
		},
		{
			name: "groups_delete", method: http.MethodDelete, path: "/api/v1/settings/monitored-groups",
			want: http.StatusMethodNotAllowed, body: "method not allowed",
		},
		{name: "health_delete", method: http.MethodDelete, path: "/health", want: http.StatusMethodNotAllowed, body: "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.body, resp.Error)
		})
	}
}
