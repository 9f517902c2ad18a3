package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/commands"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "ghfeed" {
		t.Errorf("expected Use to be 'ghfeed', got %q", cmd.Use)
	}

	want := []string{"feed", "browse", "serve", "config", "token", "commands", "version", "ratelimit"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}

	for _, flag := range []string{"output", "pages", "out", "user", "per-page", "verbose", "tui", "color"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected root flag --%s", flag)
		}
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		name string
		use  string
		new  func() string
	}{
		{"feed", "feed", func() string { return NewCmdFeed(NewOptions()).Use }},
		{"browse", "browse", func() string { return NewCmdBrowse().Use }},
		{"serve", "serve", func() string { return NewCmdServe().Use }},
		{"config", "config", func() string { return NewCmdConfig().Use }},
		{"token", "token", func() string { return NewCmdToken().Use }},
		{"commands", "commands", func() string { return NewCmdCommands().Use }},
		{"version", "version", func() string { return NewCmdVersion().Use }},
		{"ratelimit", "ratelimit", func() string { return NewCmdRateLimit().Use }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.new(); got != tt.use {
				t.Errorf("expected Use to be %q, got %q", tt.use, got)
			}
		})
	}
}

func TestServeAddrDefault(t *testing.T) {
	f := NewCmdServe().Flags().Lookup("addr")
	if f == nil {
		t.Fatal("expected --addr flag")
	}
	if f.DefValue != "127.0.0.1:8080" {
		t.Errorf("expected default addr 127.0.0.1:8080, got %q", f.DefValue)
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")
	defer SetVersionInfo("dev", "none", "unknown")

	v := currentVersion()
	if v.Version != "1.0.0" || v.Commit != "abc123" || v.Date != "2024-01-01" {
		t.Errorf("unexpected version info: %+v", v)
	}

	// Empty values keep what is set
	SetVersionInfo("", "", "")
	if currentVersion().Version != "1.0.0" {
		t.Error("expected empty version to be ignored")
	}
}

func TestPrintVersion(t *testing.T) {
	v := versionInfo{Version: "1.2.3", Commit: "abc", Date: "today", GoVersion: "go1.22", Platform: "linux/amd64"}

	var buf bytes.Buffer
	if err := printVersion(&buf, v, "text"); err != nil {
		t.Fatalf("printVersion(text) error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "ghfeed 1.2.3\n") {
		t.Errorf("unexpected text output: %q", buf.String())
	}

	buf.Reset()
	if err := printVersion(&buf, v, "json"); err != nil {
		t.Fatalf("printVersion(json) error: %v", err)
	}
	var got versionInfo
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got != v {
		t.Errorf("got %+v, want %+v", got, v)
	}

	if err := printVersion(&buf, v, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOptions(t *testing.T) {
	opts := NewOptions()
	if opts.Pages != 1 {
		t.Errorf("expected default Pages 1, got %d", opts.Pages)
	}
	if opts.Addr != "127.0.0.1:8080" {
		t.Errorf("expected default Addr, got %q", opts.Addr)
	}

	force := true
	opts = NewOptions(
		WithFormat("json"),
		WithPages(3),
		WithOut("feed.html"),
		WithVerbosity(2),
		WithUsername("octocat"),
		WithPerPage(50),
		WithAddr(":9000"),
		WithTUI(&force),
	)
	if opts.Format != "json" || opts.Pages != 3 || opts.Out != "feed.html" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Verbosity != 2 || opts.Username != "octocat" || opts.PerPage != 50 || opts.Addr != ":9000" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.TUI == nil || !*opts.TUI {
		t.Error("expected TUI forced on")
	}
}

func TestTriStateFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"true", "true", false},
		{"yes", "true", false},
		{"0", "false", false},
		{"never", "false", false},
		{"auto", "auto", false},
		{"maybe", "auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opts := NewOptions()
			f := newTriStateFlag(&opts.TUI)
			err := f.Set(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldUseTUI(t *testing.T) {
	on := true
	off := false

	tests := []struct {
		name string
		opts *Options
		want bool
	}{
		{"verbose disables", NewOptions(WithVerbosity(1), WithTUI(&on)), false},
		{"json to stdout disables", NewOptions(WithFormat("json"), WithTUI(&on)), false},
		{"html to file keeps forced", NewOptions(WithFormat("html"), WithOut("feed.html"), WithTUI(&on)), true},
		{"table forced", NewOptions(WithFormat("table"), WithTUI(&on)), true},
		{"explicitly disabled", NewOptions(WithTUI(&off)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldUseTUI(tt.opts); got != tt.want {
				t.Errorf("shouldUseTUI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromptToken(t *testing.T) {
	ctx := context.Background()
	store := config.NewMemoryStore(nil)

	var out bytes.Buffer
	if err := promptToken(ctx, store, strings.NewReader("  ghp_secret  \n"), &out); err != nil {
		t.Fatalf("promptToken() error: %v", err)
	}
	got, _ := store.Get(ctx, prefs.KeyToken, "")
	if got != "ghp_secret" {
		t.Errorf("stored token = %q, want ghp_secret", got)
	}
	if !strings.Contains(out.String(), "https://github.com/settings/tokens/new") {
		t.Error("expected instructions to mention the token settings page")
	}
}

func TestPromptTokenNoNewline(t *testing.T) {
	ctx := context.Background()
	store := config.NewMemoryStore(nil)

	if err := promptToken(ctx, store, strings.NewReader("ghp_piped"), &bytes.Buffer{}); err != nil {
		t.Fatalf("promptToken() error: %v", err)
	}
	if got, _ := store.Get(ctx, prefs.KeyToken, ""); got != "ghp_piped" {
		t.Errorf("stored token = %q, want ghp_piped", got)
	}
}

func TestPromptTokenEmpty(t *testing.T) {
	ctx := context.Background()
	store := config.NewMemoryStore(map[string]string{prefs.KeyToken: "old"})

	if err := promptToken(ctx, store, strings.NewReader("\n"), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if got, _ := store.Get(ctx, prefs.KeyToken, ""); got != "old" {
		t.Errorf("expected old token to be kept, got %q", got)
	}
}

func TestMenu(t *testing.T) {
	ctx := context.Background()
	store := config.NewMemoryStore(map[string]string{prefs.KeyRenderBody: "false"})

	var changed []prefs.Preferences
	registry, err := menu(ctx, store, func(p prefs.Preferences) {
		changed = append(changed, p)
	})
	if err != nil {
		t.Fatalf("menu() error: %v", err)
	}

	var buf bytes.Buffer
	printMenu(&buf, registry)
	out := buf.String()
	for _, want := range []string{"Render bodies: off", "Hide bot activity: on", "Feed placement: sidebar", "Configure token"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected menu to contain %q, got:\n%s", want, out)
		}
	}

	// Position 1 is the render-bodies switch
	if err := registry.InvokeAt(ctx, 1); err != nil {
		t.Fatalf("InvokeAt(1) error: %v", err)
	}
	if len(changed) != 1 || !changed[0].RenderBody {
		t.Errorf("expected render bodies to flip on, got %+v", changed)
	}
	if got, _ := store.Get(ctx, prefs.KeyRenderBody, ""); got != "true" {
		t.Errorf("expected render_body persisted as true, got %q", got)
	}

	// The flipped switch moves to the end of the menu
	cmds := registry.Commands()
	if last := cmds[len(cmds)-1].Label; last != commands.Label(prefs.KeyRenderBody, changed[0]) {
		t.Errorf("expected re-registered switch last, got %q", last)
	}
}

func TestRunConfigSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := config.NewMemoryStore(nil)

	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"username", "octocat", false},
		{"per_page", "50", false},
		{"per_page", "0", true},
		{"per_page", "lots", true},
		{"notify", "osc", false},
		{"notify", "email", true},
		{"host_page", "https://github.com/", false},
		{"placement", "main", false},
		{"token", "ghp_x", true},
		{"colour", "blue", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := runConfigSet(ctx, tt.key, tt.value, store, path)
			if (err != nil) != tt.wantErr {
				t.Errorf("runConfigSet(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if cfg.Username != "octocat" || cfg.Notify != "osc" || cfg.HostPage != "https://github.com/" {
		t.Errorf("unexpected saved config: %+v", cfg)
	}
	if cfg.GetPerPage() != 50 {
		t.Errorf("expected per_page 50, got %d", cfg.GetPerPage())
	}
	if got, _ := store.Get(ctx, prefs.KeyPlacement, ""); got != "main" {
		t.Errorf("expected placement stored through the preference store, got %q", got)
	}
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := printConfig(&buf, config.DefaultConfig(), "json"); err != nil {
		t.Fatalf("printConfig(json) error: %v", err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("expected valid JSON, got %q", buf.String())
	}
	if err := printConfig(&buf, config.DefaultConfig(), "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPrintRateLimits(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limits := &gh.RateLimits{
		Core: &gh.Rate{Limit: 5000, Remaining: 42, Reset: gh.Timestamp{Time: now.Add(90 * time.Second)}},
	}

	var buf bytes.Buffer
	printRateLimits(&buf, limits, now)
	out := buf.String()

	if !strings.Contains(out, "42/5000 remaining (resets in 1m30s)") {
		t.Errorf("unexpected core line:\n%s", out)
	}
	if strings.Contains(out, "GraphQL") {
		t.Error("expected absent GraphQL limit to be skipped")
	}
	if !strings.Contains(out, "Warning") {
		t.Error("expected low quota warning")
	}
}

func TestApplyColor(t *testing.T) {
	saved := color.NoColor
	defer func() { color.NoColor = saved }()

	off := false
	applyColor(NewOptions(WithColor(&off)))
	if !color.NoColor {
		t.Error("expected --color=false to disable colors")
	}

	on := true
	applyColor(NewOptions(WithColor(&on)))
	if color.NoColor {
		t.Error("expected --color=true to enable colors")
	}

	color.NoColor = true
	applyColor(NewOptions())
	if !color.NoColor {
		t.Error("expected auto to leave detection alone")
	}
}

func TestRunConfigInit(t *testing.T) {
	dir := t.TempDir()
	paths := config.ConfigPathInfo{
		GlobalPath: filepath.Join(dir, "global", "config.yaml"),
		LocalPath:  filepath.Join(dir, ".ghfeed.yaml"),
		TokenPath:  filepath.Join(dir, "token"),
	}

	tests := []struct {
		name     string
		input    string
		global   bool
		local    bool
		wantPath string
		wantErr  bool
	}{
		{"flags conflict", "", true, true, "", true},
		{"prompt picks local", "2\n", false, false, paths.LocalPath, false},
		{"global flag", "", true, false, paths.GlobalPath, false},
		{"already exists", "", true, false, "", true},
		{"invalid choice", "7\n", false, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runConfigInit(strings.NewReader(tt.input), &out, paths, tt.global, tt.local)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runConfigInit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantPath == "" {
				return
			}
			if _, err := config.ReadFile(tt.wantPath); err != nil {
				t.Errorf("expected a readable config at %s: %v", tt.wantPath, err)
			}
			if !strings.Contains(out.String(), tt.wantPath) {
				t.Errorf("expected output to name %s, got:\n%s", tt.wantPath, out.String())
			}
		})
	}
}

func TestPrintConfigPaths(t *testing.T) {
	var buf bytes.Buffer
	printConfigPaths(&buf, config.ConfigPathInfo{
		GlobalPath:   "/cfg/ghfeed/config.yaml",
		GlobalExists: true,
		LocalPath:    "/work/.ghfeed.yaml",
		TokenPath:    "/cfg/ghfeed/token",
	})
	out := buf.String()

	for _, want := range []string{
		"Global: /cfg/ghfeed/config.yaml (exists)",
		"Local:  /work/.ghfeed.yaml (not found)",
		"Token:  /cfg/ghfeed/token (not found)",
		"GITHUB_TOKEN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
