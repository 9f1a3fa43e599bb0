// Ztdash is a terminal dashboard for ZeroTier networks.
//
// It keeps a list of bookmarked networks, merges them with what the local
// zerotier-one node reports, and lets the operator join, leave and manage
// members through ZeroTier Central. Operator-defined shell commands can be
// bound to keys in config.yaml.
//
// Usage:
//
//	ztdash [command] [flags]
//
// Running without arguments launches the dashboard.
// See 'ztdash --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/ztdash/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ztdash",
	Short: "ZeroTier network dashboard",
	Long: `A terminal dashboard for ZeroTier networks.

Shows bookmarked networks merged with the live state of the local node,
with transfer rates, member management through ZeroTier Central and
operator-defined command bindings.

If no command is specified, the dashboard will launch automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ztdash %s\n", version.Full())
	},
}
