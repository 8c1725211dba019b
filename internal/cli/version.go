// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo is the data printed by 'version --json'.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			if jsonOutput {
				return NewJSONResponse("version", info).Write(opts.stdout)
			}
			fmt.Fprintf(opts.stdout, "mle-tui %s\n", info.Version)
			fmt.Fprintf(opts.stdout, "  commit:   %s\n", info.GitCommit)
			fmt.Fprintf(opts.stdout, "  built:    %s\n", info.BuildDate)
			fmt.Fprintf(opts.stdout, "  go:       %s\n", info.GoVersion)
			fmt.Fprintf(opts.stdout, "  platform: %s\n", info.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	return cmd
}
