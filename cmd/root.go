package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "ghfeed",
		Short: "GitHub received-events dashboard feed",
		Long: `A CLI tool that shows the events GitHub delivers to your dashboard
(pushes, pull requests, reviews, releases, stars and more) as a paged feed,
with bot and system accounts filtered out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeed(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add feed flags to root command so `ghfeed` and `ghfeed feed` work identically
	addFeedFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdFeed(opts))
	rootCmd.AddCommand(NewCmdBrowse())
	rootCmd.AddCommand(NewCmdServe())
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdToken())
	rootCmd.AddCommand(NewCmdCommands())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
