// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-dev/mnemo/internal/recall"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored memories",
		RunE:  runList,
	}

	cmd.Flags().String("subject", "", "filter by subject")
	cmd.Flags().String("type", "", "filter by memory type")
	cmd.Flags().String("tag", "", "filter by tag")
	cmd.Flags().Int("limit", 20, "page size (max 100)")
	cmd.Flags().Int("offset", 0, "page offset")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	memType, _ := cmd.Flags().GetString("type")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	q := url.Values{}
	if subject != "" {
		q.Set("subject", subject)
	}
	if memType != "" {
		q.Set("type", memType)
	}
	if tag != "" {
		q.Set("tag", tag)
	}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	dc := newDaemonClient(daemonAddr())

	var body struct {
		Memories []recall.MemoryEntry `json:"memories"`
	}
	if err := dc.getJSON("/v1/memories?"+q.Encode(), &body); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(body.Memories) == 0 {
		_, _ = fmt.Fprintln(out, dimStyle.Render("No memories stored."))
		return nil
	}

	for _, m := range body.Memories {
		line := fmt.Sprintf("%s  %s", dimStyle.Render(m.ID), m.Content)
		var meta []string
		if m.Subject != "" {
			meta = append(meta, "subject: "+m.Subject)
		}
		if len(m.Tags) > 0 {
			meta = append(meta, "tags: "+strings.Join(m.Tags, ","))
		}
		if len(meta) > 0 {
			line += " " + subjectStyle.Render("("+strings.Join(meta, ", ")+")")
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
