package cmd

// Options holds the shared command-line options for the ghfeed CLI.
type Options struct {
	Format    string
	Pages     int
	Out       string
	Verbosity int
	Username  string
	PerPage   int
	Addr      string
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI
	Color     *bool // nil = auto-detect
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Pages: 1,
		Addr:  "127.0.0.1:8080",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, html, fragment).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithPages sets how many pages the feed command loads.
func WithPages(pages int) Option {
	return func(o *Options) {
		o.Pages = pages
	}
}

// WithOut sets the file the feed is written to.
func WithOut(path string) Option {
	return func(o *Options) {
		o.Out = path
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithUsername overrides the user whose feed is shown.
func WithUsername(username string) Option {
	return func(o *Options) {
		o.Username = username
	}
}

// WithPerPage overrides the page size.
func WithPerPage(n int) Option {
	return func(o *Options) {
		o.PerPage = n
	}
}

// WithAddr sets the dashboard server listen address.
func WithAddr(addr string) Option {
	return func(o *Options) {
		o.Addr = addr
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithColor forces colored output on or off (nil = auto-detect).
func WithColor(c *bool) Option {
	return func(o *Options) {
		o.Color = c
	}
}
