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
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mfreeman451/fleetradar/pkg/monitor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkNoCache   bool
	checkEphemeral bool
	checkJSON      bool
)

var checkCmd = &cobra.Command{
	Use:   "check [device-id...]",
	Short: "Evaluate devices once and print their health",
	Long:  "Evaluate the listed devices, or the whole fleet when none are given, and print the verdicts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, zlog, appOptions{ephemeral: checkEphemeral})
		if err != nil {
			return err
		}

		defer func() {
			if err := a.Close(); err != nil {
				zlog.Warn("Error closing resources", zap.Error(err))
			}
		}()

		var result *monitor.BatchResult

		if len(args) == 0 {
			result, err = a.orchestrator.EvaluateFleet(ctx, !checkNoCache)
		} else {
			result, err = a.orchestrator.EvaluateAll(ctx, args, !checkNoCache)
		}

		if err != nil {
			return err
		}

		if checkJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(result)
		}

		return printBatch(cmd.OutOrStdout(), result)
	},
}

func printBatch(w io.Writer, result *monitor.BatchResult) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DEVICE ID\tNAME\tSTATUS\tCACHED\tREASONS")

	for i := range result.Results {
		dh := &result.Results[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
			dh.Device.ID, dh.Device.Name, dh.Status, dh.Cached, renderReasons(dh.Health.Reasons))
	}

	for _, f := range result.Failures {
		fmt.Fprintf(tw, "%s\t-\tfailed\t-\t%s: %s\n", f.DeviceID, f.Kind, f.Reason)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	s := result.Summary
	_, err := fmt.Fprintf(w, "\n%d evaluated: %d healthy (%.1f%%), %d caution (%.1f%%), %d unhealthy (%.1f%%); %d failed; thresholds v%d\n",
		s.Total, s.Healthy, s.Percentages.Healthy, s.Caution, s.Percentages.Caution,
		s.Unhealthy, s.Percentages.Unhealthy, s.Failed, result.ThresholdsVersion)

	return err
}

func renderReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "<none>"
	}

	return strings.Join(reasons, ",")
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "Always fetch from Jamf instead of serving cached verdicts")
	checkCmd.Flags().BoolVar(&checkEphemeral, "ephemeral", false, "Keep settings and cache in memory; do not open the database")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the batch result as JSON")
}
