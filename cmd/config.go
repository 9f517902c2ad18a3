package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/notify"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init      Create a minimal config file
  path      Show config file locations
  defaults  Show all default values
  show      Show current merged config (same as bare 'ghfeed config')
  set       Set a configuration value`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigDefaults())
	cmd.AddCommand(NewCmdConfigShow())
	cmd.AddCommand(NewCmdConfigSet())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a minimal config file",
		Long: `Create a minimal config file with starter settings.

Use --global to create in ~/.config/ghfeed/config.yaml (applies everywhere)
Use --local to create in ./.ghfeed.yaml (applies only in this directory)
Without flags, you'll be prompted to choose.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(os.Stdin, os.Stdout, config.GetConfigPaths(), global, local)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create global config file (~/.config/ghfeed/config.yaml)")
	cmd.Flags().BoolVar(&local, "local", false, "Create local config file (./.ghfeed.yaml)")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the paths to global and local config files and indicate which exist.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			printConfigPaths(os.Stdout, config.GetConfigPaths())
			return nil
		},
	}
}

// NewCmdConfigDefaults creates the config defaults subcommand.
func NewCmdConfigDefaults() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show all default configuration values",
		Long: `Show a complete configuration with all default values.

This can be redirected to create a config file with all defaults:
  ghfeed config defaults > ~/.config/ghfeed/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigDefaults(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging defaults, global, and local configs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigSet creates the config set subcommand.
func NewCmdConfigSet() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the global config file. Available keys:
  username      - User whose feed is shown (default: the token's owner)
  per_page      - Events per page (1-100)
  render_body   - Render comment and release bodies (true, false)
  actor_filter  - Hide bot and system activity (true, false)
  placement     - Dashboard region the feed is mounted in (sidebar, main)
  notify        - Notification channel (stderr, osc, none)
  host_page     - Dashboard page to mount into, a path or URL

The token is not a config value; use 'ghfeed token set'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.Context(), args[0], args[1], config.NewStore(), config.ConfigPath())
		},
	}
}

// configLocation is one place a config file can be created.
type configLocation struct {
	name string
	path string
	hint string
}

func runConfigInit(in io.Reader, out io.Writer, paths config.ConfigPathInfo, global, local bool) error {
	if global && local {
		return fmt.Errorf("cannot specify both --global and --local")
	}

	locations := []configLocation{
		{"global", paths.GlobalPath, "applies everywhere"},
		{"local", paths.LocalPath, "applies only in this directory"},
	}

	var target configLocation
	switch {
	case global:
		target = locations[0]
	case local:
		target = locations[1]
	default:
		var err error
		if target, err = chooseLocation(in, out, locations); err != nil {
			return err
		}
	}

	if _, err := os.Stat(target.path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'ghfeed config show' to view current config", target.path)
	}
	if err := config.SaveTo(target.path, config.MinimalConfig()); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s config file: %s\n\n", target.name, target.path)
	fmt.Fprintln(out, "Edit this file to customize the feed.")
	fmt.Fprintln(out, "Run 'ghfeed config defaults' to see all available options.")
	if !paths.TokenExists && os.Getenv(config.TokenEnv) == "" {
		fmt.Fprintln(out, "Run 'ghfeed token set' to store your GitHub token.")
	}
	return nil
}

// chooseLocation prompts for one of locations by number.
func chooseLocation(in io.Reader, out io.Writer, locations []configLocation) (configLocation, error) {
	fmt.Fprintln(out, "Where would you like to create the config file?")
	for i, l := range locations {
		fmt.Fprintf(out, "  [%d] %s (%s) - %s\n", i+1, strings.ToUpper(l.name[:1])+l.name[1:], l.path, l.hint)
	}
	fmt.Fprintf(out, "Choose [1-%d]: ", len(locations))

	choice, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || choice == "") {
		return configLocation{}, fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)

	n, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || n < 1 || n > len(locations) {
		return configLocation{}, fmt.Errorf("invalid choice: %s (must be 1-%d)", strings.TrimSpace(choice), len(locations))
	}
	return locations[n-1], nil
}

func printConfigPaths(w io.Writer, paths config.ConfigPathInfo) {
	status := func(exists bool) string {
		if exists {
			return "exists"
		}
		return "not found"
	}

	fmt.Fprintln(w, "Configuration file locations:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Global: %s (%s)\n", paths.GlobalPath, status(paths.GlobalExists))
	fmt.Fprintf(w, "  Local:  %s (%s)\n", paths.LocalPath, status(paths.LocalExists))
	fmt.Fprintf(w, "  Token:  %s (%s)\n", paths.TokenPath, status(paths.TokenExists))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load order: defaults -> global -> local (local overrides global)")
	fmt.Fprintf(w, "%s in the environment overrides the token file.\n", config.TokenEnv)
}

func runConfigDefaults(format string) error {
	return printConfig(os.Stdout, config.DefaultConfig(), format)
}

func runConfigShow(_ *cobra.Command, _ []string, format string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return printConfig(os.Stdout, cfg, format)
}

func printConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		yamlStr, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Fprint(w, yamlStr)
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}

	return nil
}

func runConfigSet(ctx context.Context, key, value string, store prefs.Store, path string) error {

	switch key {
	case prefs.KeyToken:
		return fmt.Errorf("tokens cannot be stored in config files for security reasons. Run 'ghfeed token set' or set the GITHUB_TOKEN environment variable instead")
	case prefs.KeyRenderBody, prefs.KeyActorFilter, prefs.KeyPlacement:
		if err := store.Set(ctx, key, value); err != nil {
			return err
		}
		fmt.Printf("%s set to %s.\n", key, value)
		return nil
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		return err
	}

	switch key {
	case "username":
		cfg.Username = value
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("invalid per_page: %s (must be 1-100)", value)
		}
		cfg.PerPage = &n
	case "notify":
		if value != notify.KindStderr && value != notify.KindOSC && value != notify.KindNone {
			return fmt.Errorf("invalid notify: %s (must be stderr, osc or none)", value)
		}
		cfg.Notify = value
	case "host_page":
		cfg.HostPage = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.SaveAs(path); err != nil {
		return err
	}
	fmt.Printf("%s set to %s.\n", key, value)
	return nil
}
