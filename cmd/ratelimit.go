package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/ghclient"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the current GitHub API rate limit status. Every feed page
costs one core API request.`,
		RunE: runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	token, err := config.NewStore().Get(ctx, prefs.KeyToken, "")
	if err != nil {
		return err
	}
	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rate limits: %w", err)
	}

	printRateLimits(os.Stdout, limits, time.Now())
	return nil
}

func printRateLimits(w io.Writer, limits *gh.RateLimits, now time.Time) {
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)

	printRate(w, "Core API:  ", limits.GetCore(), now)
	printRate(w, "GraphQL:   ", limits.GetGraphQL(), now)

	if core := limits.GetCore(); core != nil && core.Remaining < constants.RateLimitLowWatermark {
		fmt.Fprintf(w, "\nWarning: fewer than %d core requests left; loading more pages may fail until the reset.\n",
			constants.RateLimitLowWatermark)
	}
}

func printRate(w io.Writer, label string, r *gh.Rate, now time.Time) {
	if r == nil {
		return
	}
	resetIn := r.Reset.Time.Sub(now).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Fprintf(w, "%s %d/%d remaining (resets in %s)\n", label, r.Remaining, r.Limit, resetIn)
}
