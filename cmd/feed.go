package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/internal/output"
)

// NewCmdFeed creates the feed command.
func NewCmdFeed(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Render your received events (same as root ghfeed)",
		Long: `Fetches the events GitHub delivers to your dashboard, drops events
from bot and system accounts, and renders them as a table, JSON, or an HTML
dashboard page with the feed mounted in it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeed(cmd, opts)
		},
	}

	addFeedFlags(cmd, opts)
	return cmd
}

// addFeedFlags adds the feed-specific flags to a command.
func addFeedFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, html, fragment)")
	cmd.Flags().IntVarP(&opts.Pages, "pages", "p", 1, "Number of pages to load")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the feed to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "Show the feed of this user (default: the authenticated user)")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Events per page (default from config)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTriStateFlag(&opts.TUI), "tui", "Enable/disable TUI progress (default: auto-detect)")
	cmd.Flags().Var(newTriStateFlag(&opts.Color), "color", "Enable/disable colored table output (default: auto-detect)")
}

func runFeed(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	if opts.Pages < 1 {
		return fmt.Errorf("invalid --pages %d: must be at least 1", opts.Pages)
	}

	// Setup
	applyColor(opts)
	cfg, rt, err := setupRuntime(opts, shouldUseTUI(opts))
	if err != nil {
		return err
	}
	rt.startTUI()

	// Initialize
	s, err := startSession(ctx, cfg, opts, rt, tokenHint)
	if err != nil {
		rt.close()
		return err
	}

	// Fetch
	stats, err := s.load(ctx, rt, opts.Pages)
	rt.close()
	if err != nil {
		return err
	}

	state := s.machine.Snapshot()
	result := output.Result{
		Username: s.username,
		Cards:    s.machine.Cards(),
		Page:     state.Page,
		HasMore:  state.HasMore,
		Fetched:  stats.fetched,
		Filtered: stats.filtered,
	}

	// Output
	var w io.Writer = os.Stdout
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	host := &output.HTMLFormatter{Host: s.host, Mount: s.mount}
	formatter := output.NewFormatter(output.Format(opts.Format), host)
	if err := formatter.Format(result, w); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	if opts.Out != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", result.Window(), opts.Out)
	}
	return nil
}
