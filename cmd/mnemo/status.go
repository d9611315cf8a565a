// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/engine"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long:  "Check the running daemon's status endpoint and display memory and telemetry counters.",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr := daemonAddr()
	out := cmd.OutOrStdout()

	dc := newDaemonClient(addr)
	var body struct {
		Status    string                   `json:"status"`
		Memories  int64                    `json:"memories"`
		Telemetry engine.TelemetrySnapshot `json:"telemetry"`
	}
	if err := dc.getJSON("/v1/status", &body); err != nil {
		if mnemoerr.HasCode(err, mnemoerr.CodeCLIDaemonNotRunning) {
			_, _ = fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Daemon at %s is not running (connection refused)", addr)))
			return nil
		}
		_, _ = fmt.Fprintf(out, "Daemon at %s: %s\n", addr, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Daemon at "+addr+":"), body.Status)
	_, _ = fmt.Fprintf(out, "  memories:   %d\n", body.Memories)
	_, _ = fmt.Fprintf(out, "  turns:      %d\n", body.Telemetry.Turns)
	_, _ = fmt.Fprintf(out, "  recalls:    %d\n", body.Telemetry.Recalls)
	_, _ = fmt.Fprintf(out, "  preflights: %d\n", body.Telemetry.Preflights)
	_, _ = fmt.Fprintf(out, "  injected:   %d\n", body.Telemetry.Injected)
	return nil
}
