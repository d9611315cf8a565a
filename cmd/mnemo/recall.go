// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

func newRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: "Recall memories relevant to a query",
		Args:  cobra.ArbitraryArgs,
		RunE:  runRecall,
	}

	cmd.Flags().String("subject", "", "scope the search to one subject")
	cmd.Flags().Int("limit", 0, "maximum results (daemon default when 0)")

	return cmd
}

func runRecall(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	subject, _ := cmd.Flags().GetString("subject")
	limit, _ := cmd.Flags().GetInt("limit")

	dc := newDaemonClient(daemonAddr())

	var body struct {
		Entries      []recall.ScoredEntry `json:"entries"`
		GraphContext string               `json:"graph_context"`
		Method       string               `json:"method"`
	}
	err := dc.postJSON("/v1/memories/recall", map[string]any{
		"query":   query,
		"subject": subject,
		"limit":   limit,
	}, &body)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(body.Entries) == 0 {
		_, _ = fmt.Fprintln(out, dimStyle.Render("No memories found."))
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Recalled"), dimStyle.Render("("+body.Method+")"))
	for _, se := range body.Entries {
		line := fmt.Sprintf("  %s %s", renderScore(se.Score), se.Entry.Content)
		if se.Entry.Subject != "" {
			line += " " + subjectStyle.Render("("+se.Entry.Subject+")")
		}
		_, _ = fmt.Fprintln(out, line)
	}

	if body.GraphContext != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, dimStyle.Render(body.GraphContext))
	}
	return nil
}
