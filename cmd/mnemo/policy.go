// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/engine"
)

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Show the daemon's cached policy rules",
		RunE:  runPolicy,
	}
}

func runPolicy(cmd *cobra.Command, _ []string) error {
	dc := newDaemonClient(daemonAddr())

	var body struct {
		Rules []engine.PolicyRule `json:"rules"`
	}
	if err := dc.getJSON("/v1/policy", &body); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(body.Rules) == 0 {
		_, _ = fmt.Fprintln(out, dimStyle.Render("Policy cache is empty."))
		return nil
	}

	_, _ = fmt.Fprintln(out, titleStyle.Render("Cached policy rules"))
	for _, r := range body.Rules {
		line := fmt.Sprintf("  %s %s", renderScore(r.Score), r.Content)
		if r.Subject != "" {
			line += " " + subjectStyle.Render("(" + r.Subject + ")")
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
