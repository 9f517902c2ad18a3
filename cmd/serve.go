package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/server"
)

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := NewOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard page with the feed mounted",
		Long: `Starts a local web server that serves the dashboard page with the
feed mounted in it. The "Load more" button fetches the next page in place,
and the command menu toggles bodies, the bot filter, and the placement.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", opts.Addr, "Listen address")
	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "Show the feed of this user (default: the authenticated user)")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Events per page (default from config)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, rt, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}

	s, err := startSession(ctx, cfg, opts, rt, tokenHint)
	if err != nil {
		return err
	}
	if _, err := s.load(ctx, rt, 1); err != nil {
		return err
	}

	srv := server.New(s.machine, s.registry, s.mount, s.host)
	fmt.Fprintf(os.Stderr, "Serving %s's feed on http://%s\n", s.username, opts.Addr)

	if err := srv.Start(ctx, opts.Addr); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server failed: %w", err)
	}
	if ctx.Err() == context.Canceled {
		log.Info("dashboard server stopped")
	}
	return nil
}
