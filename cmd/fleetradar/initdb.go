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
	"fmt"

	"github.com/mfreeman451/fleetradar/pkg/db"
	"github.com/mfreeman451/fleetradar/pkg/thresholds"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database schema and seed default settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := db.New(cfg.DBPath, zlog.Named("db"))
		if err != nil {
			return err
		}

		defer func() {
			if err := database.Close(); err != nil {
				zlog.Warn("Failed to close database", zap.Error(err))
			}
		}()

		store, err := thresholds.NewStore(cmd.Context(), database, cfg.EvaluationDefaults(), zlog.Named("thresholds"))
		if err != nil {
			return err
		}

		settings, err := store.Current(cmd.Context())
		if err != nil {
			return err
		}

		th := settings.Thresholds

		fmt.Fprintf(cmd.OutOrStdout(),
			"Database %s ready: thresholds v%d (check-in %dh, recon %dh, pending commands %dh), compliance group %q\n",
			cfg.DBPath, th.Version, th.CheckInHours, th.ReconHours, th.PendingCommandHours,
			settings.Groups.ComplianceGroup)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
