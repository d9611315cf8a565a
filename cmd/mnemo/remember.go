// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

func newRememberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <content>",
		Short: "Store a memory in the daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRemember,
	}

	cmd.Flags().String("type", "semantic", "memory type: semantic, episodic, procedural, or preference")
	cmd.Flags().String("subject", "", "subject the memory is about")
	cmd.Flags().StringSlice("tag", nil, "tag to attach (repeatable)")
	cmd.Flags().String("source", "cli", "where the memory came from")

	return cmd
}

func runRemember(cmd *cobra.Command, args []string) error {
	content := strings.Join(args, " ")
	memType, _ := cmd.Flags().GetString("type")
	subject, _ := cmd.Flags().GetString("subject")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	source, _ := cmd.Flags().GetString("source")

	dc := newDaemonClient(daemonAddr())

	var entry recall.MemoryEntry
	err := dc.postJSON("/v1/memories", map[string]any{
		"content": content,
		"type":    memType,
		"subject": subject,
		"tags":    tags,
		"source":  source,
	}, &entry)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Remembered"), entry.ID)
	if entry.Subject != "" {
		_, _ = fmt.Fprintf(out, "  %s\n", subjectStyle.Render("subject: "+entry.Subject))
	}
	if len(entry.Tags) > 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", dimStyle.Render("tags: "+strings.Join(entry.Tags, ", ")))
	}
	return nil
}
