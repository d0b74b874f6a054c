package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: FailureTimeout},
		{
			name: "deadline_inside_fetch_error",
			err:  &UpstreamFetchError{Op: "detail", DeviceID: "1", Err: context.DeadlineExceeded},
			want: FailureTimeout,
		},
		{name: "canceled", err: context.Canceled, want: FailureCanceled},
		{name: "auth", err: &UpstreamAuthError{StatusCode: 401, Err: errors.New("bad creds")}, want: FailureUpstreamAuth},
		{
			name: "not_found",
			err:  &UpstreamFetchError{Op: "detail", DeviceID: "9", StatusCode: 404, Err: ErrDeviceNotFound},
			want: FailureNotFound,
		},
		{name: "fetch", err: &UpstreamFetchError{Op: "list", StatusCode: 500}, want: FailureUpstreamFetch},
		{name: "evaluation", err: &EvaluationError{Reason: "no id"}, want: FailureEvaluation},
		{name: "store", err: &CacheStoreError{Op: "put", Err: errors.New("disk full")}, want: FailureCacheStore},
		{name: "other", err: errors.New("boom"), want: FailureInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFailure(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{Field: "check_in_hours", Value: 0, Min: 1, Max: 168})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "check_in_hours: 0 is out of range [1, 168]", err.Error())

	err = &ValidationError{Message: "no fields to update"}
	assert.Equal(t, "no fields to update", err.Error())
}

func TestNewStatusSummary(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	results := []DeviceHealth{
		{Status: StatusHealthy},
		{Status: StatusHealthy},
		{Status: StatusCaution},
		{Status: StatusUnhealthy},
		{Status: StatusHealthy},
		{Status: StatusHealthy},
		{Status: StatusUnhealthy},
		{Status: StatusHealthy},
	}

	s := NewStatusSummary(results, 2, now)

	assert.Equal(t, 8, s.Total)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 10, s.Requested)
	assert.Equal(t, 5, s.Healthy)
	assert.InDelta(t, 62.5, s.Percentages.Healthy, 0.001)
	assert.InDelta(t, 12.5, s.Percentages.Caution, 0.001)
	assert.InDelta(t, 25.0, s.Percentages.Unhealthy, 0.001)
	assert.Equal(t, now, s.GeneratedAt)
}

func TestNewStatusSummary_Empty(t *testing.T) {
	s := NewStatusSummary(nil, 3, time.Time{})

	assert.Zero(t, s.Total)
	assert.Equal(t, 3, s.Requested)
	assert.Zero(t, s.Percentages.Healthy)
}

func TestParseHealthStatus(t *testing.T) {
	st, err := ParseHealthStatus("caution")
	require.NoError(t, err)
	assert.Equal(t, StatusCaution, st)

	_, err = ParseHealthStatus("amber")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestThresholdsUpdate_Apply(t *testing.T) {
	base := DefaultThresholds()
	hours := 48

	assert.True(t, ThresholdsUpdate{}.IsEmpty())

	got := ThresholdsUpdate{CheckInHours: &hours}.Apply(base)
	assert.Equal(t, 48, got.CheckInHours)
	assert.Equal(t, DefaultReconHours, got.ReconHours)
	assert.Equal(t, 48*time.Hour, got.CheckInWindow())
}
