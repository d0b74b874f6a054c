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

// Package api pkg/api/server.go serves the device health and settings
// endpoints under /api/v1.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	httpx "github.com/mfreeman451/fleetradar/pkg/http"
	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Config holds the collaborators of a Server. Pinger and Metrics are
// optional.
type Config struct {
	Health      HealthService
	Settings    SettingsService
	Pinger      Pinger
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
}

// Server routes HTTP requests to the health and settings services.
type Server struct {
	health   HealthService
	settings SettingsService
	pinger   Pinger
	metrics  *metrics.Metrics
	logger   *zap.Logger
	router   *mux.Router
	handler  http.Handler
}

// NewServer builds the router and middleware chain.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		health:   cfg.Health,
		settings: cfg.Settings,
		pinger:   cfg.Pinger,
		metrics:  cfg.Metrics,
		logger:   logger,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()

	s.handler = httpx.Chain(s.router,
		httpx.RequestID,
		httpx.Recovery(logger),
		httpx.Logging(logger),
		httpx.CORS(cfg.CORSOrigins),
	)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(mux.MiddlewareFunc(httpx.Metrics(s.metrics)))

	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// summary must be registered before the {id} route
	v1.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	v1.HandleFunc("/devices/status/summary", s.getSummary).Methods(http.MethodGet)
	v1.HandleFunc("/devices/{id}", s.getDevice).Methods(http.MethodGet)

	v1.HandleFunc("/settings/thresholds", s.getThresholds).Methods(http.MethodGet)
	v1.HandleFunc("/settings/thresholds", s.updateThresholds).Methods(http.MethodPut)
	v1.HandleFunc("/settings/thresholds/history", s.getThresholdHistory).Methods(http.MethodGet)
	v1.HandleFunc("/settings/monitored-groups", s.getGroups).Methods(http.MethodGet)
	v1.HandleFunc("/settings/monitored-groups", s.updateGroups).Methods(http.MethodPut)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// subrouters do not inherit these from the root router
	for _, r := range []*mux.Router{s.router, v1} {
		r.NotFoundHandler = notFound
		r.MethodNotAllowedHandler = methodNotAllowed
	}
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_, _ = w.Write(body)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, ErrorResponse{Error: message})
}

// respondFailure maps a service error onto a status code.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *models.ValidationError
	if errors.As(err, &valErr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: valErr.Error(), Field: valErr.Field})

		return
	}

	kind := models.ClassifyFailure(err)
	code := statusForFailure(kind)

	fields := []zap.Field{
		zap.String("request_id", httpx.RequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed", fields...)
	} else {
		s.logger.Warn("Request failed", fields...)
	}

	respondError(w, code, err.Error())
}

func statusForFailure(kind models.FailureKind) int {
	switch kind {
	case models.FailureNotFound:
		return http.StatusNotFound
	case models.FailureUpstreamAuth, models.FailureUpstreamFetch:
		return http.StatusBadGateway
	case models.FailureTimeout:
		return http.StatusGatewayTimeout
	case models.FailureCanceled:
		return http.StatusServiceUnavailable
	case models.FailureEvaluation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseUseCache reads the use_cache query parameter, which defaults to true.
func parseUseCache(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("use_cache")
	if raw == "" {
		return true, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errInvalidBool
	}

	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}

	return nil
}
