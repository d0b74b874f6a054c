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
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
)

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})

		return
	}

	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Warn("Store ping failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: err.Error()})

		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: "ok"})
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	useCache, err := parseUseCache(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "use_cache"})

		return
	}

	var filter models.HealthStatus

	if raw := r.URL.Query().Get("status_filter"); raw != "" {
		filter, err = models.ParseHealthStatus(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "status_filter"})

			return
		}
	}

	batch, err := s.health.EvaluateFleet(r.Context(), useCache)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	resp := DeviceListResponse{
		Devices:     make([]models.DeviceHealth, 0, len(batch.Results)),
		FailedCount: batch.Failed,
		Failures:    batch.Failures,
	}

	for i := range batch.Results {
		dh := batch.Results[i]
		if filter != "" && dh.Status != filter {
			continue
		}

		switch dh.Status {
		case models.StatusHealthy:
			resp.HealthyCount++
		case models.StatusCaution:
			resp.CautionCount++
		case models.StatusUnhealthy:
			resp.UnhealthyCount++
		}

		resp.Devices = append(resp.Devices, dh)
	}

	resp.Total = len(resp.Devices)

	if resp.Failures == nil {
		resp.Failures = []models.DeviceFailure{}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	useCache, err := parseUseCache(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "use_cache"})

		return
	}

	batch, err := s.health.EvaluateFleet(r.Context(), useCache)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, batch.Summary)
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["id"]

	useCache, err := parseUseCache(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "use_cache"})

		return
	}

	dh, err := s.health.EvaluateOne(r.Context(), deviceID, useCache)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, dh)
}

func (s *Server) getThresholds(w http.ResponseWriter, r *http.Request) {
	th, err := s.settings.Thresholds(r.Context())
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, th)
}

func (s *Server) updateThresholds(w http.ResponseWriter, r *http.Request) {
	var update models.ThresholdsUpdate
	if err := decodeBody(w, r, &update); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())

		return
	}

	th, err := s.settings.Update(r.Context(), update)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, th)
}

func (s *Server) getThresholdHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: errInvalidLimit.Error(), Field: "limit"})

			return
		}

		limit = n
	}

	history, err := s.settings.History(r.Context(), limit)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) getGroups(w http.ResponseWriter, r *http.Request) {
	gs, err := s.settings.Groups(r.Context())
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, gs)
}

func (s *Server) updateGroups(w http.ResponseWriter, r *http.Request) {
	var update models.GroupSettingsUpdate
	if err := decodeBody(w, r, &update); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())

		return
	}

	gs, err := s.settings.UpdateGroups(r.Context(), update)
	if err != nil {
		s.respondFailure(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, gs)
}
