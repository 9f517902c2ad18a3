package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spiffcs/ghfeed/internal/tui"
)

// triStateFlag is a pflag.Value for an auto/true/false switch such as
// --tui or --color. A nil target means auto.
type triStateFlag struct {
	target **bool
}

func newTriStateFlag(target **bool) *triStateFlag {
	return &triStateFlag{target: target}
}

func (f *triStateFlag) String() string {
	switch {
	case *f.target == nil:
		return "auto"
	case **f.target:
		return "true"
	default:
		return "false"
	}
}

func (f *triStateFlag) Set(s string) error {
	var v bool
	switch s {
	case "auto":
		*f.target = nil
		return nil
	case "true", "1", "yes", "always":
		v = true
	case "false", "0", "no", "never":
		v = false
	default:
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	*f.target = &v
	return nil
}

func (f *triStateFlag) Type() string {
	return "bool"
}

// IsBoolFlag lets a bare --tui mean --tui=true.
func (f *triStateFlag) IsBoolFlag() bool {
	return true
}

// shouldUseTUI determines whether to show startup progress based on options.
func shouldUseTUI(opts *Options) bool {
	// Verbose logs and progress frames would interleave
	if opts.Verbosity > 0 {
		return false
	}
	// A page written to stdout must not be mixed with progress output
	if opts.Out == "" && opts.Format != "" && opts.Format != "table" {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}

// applyColor forces colored table output on or off; auto leaves the
// terminal detection of fatih/color in place.
func applyColor(opts *Options) {
	if opts.Color != nil {
		color.NoColor = !*opts.Color
	}
}
