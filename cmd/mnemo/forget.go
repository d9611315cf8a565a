// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Delete a memory by id",
		Args:  cobra.ExactArgs(1),
		RunE:  runForget,
	}
}

func runForget(cmd *cobra.Command, args []string) error {
	id := args[0]
	dc := newDaemonClient(daemonAddr())

	var body struct {
		Deleted bool `json:"deleted"`
	}
	if err := dc.deleteJSON("/v1/memories/"+id, &body); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", id)
	return nil
}
