package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankli0324/go-httpconn/internal"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "httpconn version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "User-Agent: %s\n", internal.DefaultUserAgent)
	},
}
