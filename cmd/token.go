package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"golang.org/x/term"
)

// NewCmdToken creates the token command with subcommands.
func NewCmdToken() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Configure the GitHub token",
		Long: `Configure the GitHub personal access token used to read your feed.

The token is stored in its own file with 0600 permissions, never in
config.yaml. The GITHUB_TOKEN environment variable overrides it.`,
	}

	cmd.AddCommand(NewCmdTokenSet())
	cmd.AddCommand(NewCmdTokenClear())

	return cmd
}

// NewCmdTokenSet creates the token set subcommand.
func NewCmdTokenSet() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Prompt for a token and store it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return promptToken(cmd.Context(), config.NewStore(), os.Stdin, os.Stderr)
		},
	}
}

// NewCmdTokenClear creates the token clear subcommand.
func NewCmdTokenClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.NewStore().Set(cmd.Context(), prefs.KeyToken, ""); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Removed %s\n", config.TokenPath())
			return nil
		},
	}
}

// tokenPrompter returns the credential action for surfaces that can read
// from the terminal.
func tokenPrompter(s prefs.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		return promptToken(ctx, s, os.Stdin, os.Stderr)
	}
}

// promptToken asks for a token on out, reads it from in and persists it.
func promptToken(ctx context.Context, s prefs.Store, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "\n=== GitHub Personal Access Token ===")
	fmt.Fprintln(out, "\nTo create a token:")
	fmt.Fprintln(out, "  1. Visit: https://github.com/settings/tokens/new")
	fmt.Fprintln(out, "  2. Add a note (e.g., 'ghfeed')")
	fmt.Fprintln(out, "  3. Select scope: 'repo' (or none for public activity only)")
	fmt.Fprintln(out, "  4. Click 'Generate token' and paste it below")
	fmt.Fprintf(out, "\nAlternatively, set the %s environment variable.\n", config.TokenEnv)
	fmt.Fprint(out, "\nEnter your GitHub token: ")

	token, err := readToken(in)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := s.Set(ctx, prefs.KeyToken, token); err != nil {
		return err
	}
	fmt.Fprintln(out, "Token saved.")
	return nil
}

// readToken reads one line, without echo when in is a terminal.
func readToken(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
