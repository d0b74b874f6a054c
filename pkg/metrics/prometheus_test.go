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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CacheLookup(LookupHit)
	m.CacheLookup(LookupHit)
	m.CacheLookup(LookupMiss)
	m.CacheWriteError()
	m.Refresh(true)
	m.Refresh(false)
	m.DeviceFailure("timeout")
	m.EntriesReaped(3)
	m.EntriesReaped(0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheLookups.WithLabelValues(LookupHit)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheLookups.WithLabelValues(LookupMiss)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheWriteErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.refreshes.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.refreshes.WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deviceFailures.WithLabelValues("timeout")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.reapedEntries), 0)
}

func TestMetrics_BatchAndRequests(t *testing.T) {
	m := New()

	m.BatchCompleted(time.Second, 4, 2, 1)
	m.UpstreamRequest("inventory", http.StatusOK, 10*time.Millisecond)
	m.UpstreamRequest("inventory", 0, time.Millisecond)
	m.HTTPRequest(http.MethodGet, "/api/v1/devices", http.StatusOK, time.Millisecond)

	assert.InDelta(t, 4, testutil.ToFloat64(m.deviceStatus.WithLabelValues("healthy")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.deviceStatus.WithLabelValues("caution")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.deviceStatus.WithLabelValues("unhealthy")), 0)

	n, err := testutil.GatherAndCount(m.Registry(), "fleetradar_upstream_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(m.Registry(), "fleetradar_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.CacheLookup(LookupHit)
		m.CacheWriteError()
		m.Refresh(true)
		m.DeviceFailure("timeout")
		m.BatchCompleted(time.Second, 1, 1, 1)
		m.UpstreamRequest("inventory", http.StatusOK, time.Millisecond)
		m.HTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.EntriesReaped(1)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CacheLookup(LookupStale)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `fleetradar_cache_lookups_total{result="stale"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
