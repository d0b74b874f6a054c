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

package main

import (
	"time"

	"github.com/mfreeman451/fleetradar/pkg/api"
	"github.com/mfreeman451/fleetradar/pkg/lifecycle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, zlog, appOptions{})
		if err != nil {
			return err
		}

		defer func() {
			if err := a.Close(); err != nil {
				zlog.Warn("Error closing resources", zap.Error(err))
			}
		}()

		server := api.NewServer(api.Config{
			Health:      a.orchestrator,
			Settings:    a.store,
			Pinger:      a.pingers,
			Metrics:     a.metrics,
			Logger:      zlog.Named("api"),
			CORSOrigins: cfg.CORSOrigins,
		})

		return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
			ListenAddr:      cfg.ListenAddr,
			ServiceName:     "fleetradar",
			Handler:         server,
			Services:        []lifecycle.Service{a.reaper},
			ShutdownTimeout: time.Duration(cfg.ShutdownTimeout),
			Logger:          zlog,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
