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
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrDeviceNotFound is wrapped by an UpstreamFetchError when the
	// platform does not know the requested device.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSettingsNotFound is returned by repositories before any version
	// has been written.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrInvalidStatus is returned for an unknown status filter.
	ErrInvalidStatus = errors.New("invalid health status")
)

// ValidationError rejects a settings update. Field names the offending
// input using its JSON name.
type ValidationError struct {
	Field   string
	Value   int
	Min     int
	Max     int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		if e.Field == "" {
			return e.Message
		}

		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return fmt.Sprintf("%s: %d is out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (*ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamFetchError covers network failures, timeouts and non-auth error
// responses from the device source.
type UpstreamFetchError struct {
	Op         string
	DeviceID   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	msg := "upstream " + e.Op
	if e.DeviceID != "" {
		msg += " device " + e.DeviceID
	}

	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" returned status %d", e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// UpstreamAuthError means the device source rejected our credentials. It is
// not retryable without operator action.
type UpstreamAuthError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamAuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream authentication failed with status %d: %v", e.StatusCode, e.Err)
	}

	return fmt.Sprintf("upstream authentication failed: %v", e.Err)
}

func (e *UpstreamAuthError) Unwrap() error { return e.Err }

// CacheStoreError is a persistence failure while reading or writing cached
// health or settings.
type CacheStoreError struct {
	Op       string
	DeviceID string
	Err      error
}

func (e *CacheStoreError) Error() string {
	if e.DeviceID != "" {
		return fmt.Sprintf("cache %s for device %s: %v", e.Op, e.DeviceID, e.Err)
	}

	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheStoreError) Unwrap() error { return e.Err }

// EvaluationError means the device facts could not be evaluated.
type EvaluationError struct {
	DeviceID string
	Reason   string
}

func (e *EvaluationError) Error() string {
	if e.DeviceID == "" {
		return "cannot evaluate device: " + e.Reason
	}

	return fmt.Sprintf("cannot evaluate device %s: %s", e.DeviceID, e.Reason)
}

// FailureKind classifies per-device failures.
type FailureKind string

const (
	FailureUpstreamFetch FailureKind = "upstream_fetch"
	FailureUpstreamAuth  FailureKind = "upstream_auth"
	FailureTimeout       FailureKind = "timeout"
	FailureEvaluation    FailureKind = "evaluation"
	FailureCacheStore    FailureKind = "cache_store"
	FailureCanceled      FailureKind = "canceled"
	FailureNotFound      FailureKind = "not_found"
	FailureInternal      FailureKind = "internal"
)

// ClassifyFailure maps an error onto a FailureKind. Timeouts win over the
// wrapper they arrive in so a slow upstream is reported as such.
func ClassifyFailure(err error) FailureKind {
	var (
		authErr  *UpstreamAuthError
		fetchErr *UpstreamFetchError
		evalErr  *EvaluationError
		storeErr *CacheStoreError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &authErr):
		return FailureUpstreamAuth
	case errors.Is(err, ErrDeviceNotFound):
		return FailureNotFound
	case errors.As(err, &fetchErr):
		return FailureUpstreamFetch
	case errors.As(err, &evalErr):
		return FailureEvaluation
	case errors.As(err, &storeErr):
		return FailureCacheStore
	default:
		return FailureInternal
	}
}
