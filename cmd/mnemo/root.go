// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mnemo-dev/mnemo/internal/config"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// NewRootCmd creates the root mnemo command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mnemo",
		Short:         "Mnemo, a local memory daemon for AI agents",
		Long:          "Mnemo stores, recalls, and curates long-term memories for AI agents, and decides per turn which of them matter.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags. These map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("address", "", "daemon address (host:port)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newStartCmd(),
		newStatusCmd(),
		newRememberCmd(),
		newRecallCmd(),
		newForgetCmd(),
		newListCmd(),
		newPolicyCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return mnemoerr.Errorf(mnemoerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover mnemo.yaml from standard locations.
		// Note: SetConfigType is intentionally omitted. When set, Viper
		// falls back to trying the bare config name without extension,
		// which collides with the ./mnemo binary in the project root.
		v.SetConfigName("mnemo")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mnemo")
		v.AddConfigPath("/etc/mnemo")
		// No config file is fine. Defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return mnemoerr.Errorf(mnemoerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere. Bootstrap a default to ~/.config/mnemo/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return mnemoerr.Errorf(mnemoerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	// Bind persistent flags to viper keys.
	if err := v.BindPFlag("networking.listen", cmd.Root().PersistentFlags().Lookup("address")); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLISetupFailure, "binding address flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// daemonAddr returns the address client commands should dial, honoring the
// --address flag, env override, and config file in that order.
func daemonAddr() string {
	return viper.GetString("networking.listen")
}
