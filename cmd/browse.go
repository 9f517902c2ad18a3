package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/internal/tui"
)

// NewCmdBrowse creates the browse command.
func NewCmdBrowse() *cobra.Command {
	opts := NewOptions()

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse your received events interactively",
		Long: `Opens the feed in a full-screen terminal browser.

Keys:
  m        load the next page
  1-9      run a menu command (toggle bodies, bot filter, placement, token)
  g / G    jump to top / bottom
  q        quit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "Show the feed of this user (default: the authenticated user)")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Events per page (default from config)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	if !tui.CanBrowse() {
		return fmt.Errorf("browse needs an interactive terminal; use 'ghfeed feed' instead")
	}

	// The browser owns the screen; startup progress is shown inline first
	cfg, rt, err := setupRuntime(opts, true)
	if err != nil {
		return err
	}
	rt.startTUI()

	s, err := startSession(ctx, cfg, opts, rt, tokenHint)
	if err != nil {
		rt.close()
		return err
	}
	if _, err := s.load(ctx, rt, 1); err != nil {
		rt.close()
		return err
	}
	rt.close()

	return tui.RunFeedUI(ctx, s.machine, s.registry)
}
