package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/commands"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

// NewCmdCommands creates the commands command with subcommands.
func NewCmdCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List or run the feed menu commands",
		Long: `List or run the commands of the feed menu: the render-bodies,
hide-bot-activity and placement toggles, and the token action.

Toggles persist, so a change made here applies to the next feed, browse
or serve run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommandsList(cmd.Context(), os.Stdout)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the menu commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommandsList(cmd.Context(), os.Stdout)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "run <n>",
		Short: "Run the menu command at position n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandsRun(cmd.Context(), os.Stdout, args[0])
		},
	})

	return cmd
}

// menu builds the command menu backed by the persisted store.
func menu(ctx context.Context, s prefs.Store, onChange func(prefs.Preferences)) (*commands.Registry, error) {
	p, err := prefs.Load(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	registry := commands.NewRegistry()
	commands.NewToggles(registry, s, p, onChange, tokenPrompter(s)).Install()
	return registry, nil
}

func runCommandsList(ctx context.Context, w io.Writer) error {
	registry, err := menu(ctx, config.NewStore(), nil)
	if err != nil {
		return err
	}
	printMenu(w, registry)
	return nil
}

func runCommandsRun(ctx context.Context, w io.Writer, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid command number %q", arg)
	}

	registry, err := menu(ctx, config.NewStore(), func(p prefs.Preferences) {
		fmt.Fprintf(w, "render bodies: %t, hide bot activity: %t, placement: %s\n",
			p.RenderBody, p.ActorFilter, p.Placement)
	})
	if err != nil {
		return err
	}
	return registry.InvokeAt(ctx, n)
}

func printMenu(w io.Writer, registry *commands.Registry) {
	num := color.New(color.FgCyan, color.Bold)
	for i, c := range registry.Commands() {
		fmt.Fprintf(w, "%s %s\n", num.Sprintf("[%d]", i+1), c.Label)
	}
}
