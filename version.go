package main

import (
	"fmt"

	"vidshelf/internal/startup"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version string")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := startup.GetBuildInfo()
		out := cmd.OutOrStdout()

		if lo.Must(cmd.Flags().GetBool("short")) {
			fmt.Fprintln(out, info.Version)
			return
		}

		fmt.Fprintf(out, "vidshelf %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  platform:   %s/%s\n", info.OS, info.Arch)
	},
}
