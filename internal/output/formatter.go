package output

import (
	"io"

	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/render"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"

	// FormatFragment is the feed section alone, without a host page.
	FormatFragment Format = "fragment"
)

// Result is the feed as loaded by one run.
type Result struct {
	Username string
	Cards    []render.Card
	Page     int
	HasMore  bool
	Fetched  int
	Filtered int
}

// Window describes the loaded range, e.g. "page 2 · 47 events".
func (r Result) Window() string {
	return format.PageWindow(r.Page, len(r.Cards))
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(r Result, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format. Host is the
// page the html format mounts into; nil uses the built-in page.
func NewFormatter(f Format, host *HTMLFormatter) Formatter {
	switch f {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatHTML:
		if host != nil {
			return host
		}
		return &HTMLFormatter{}
	case FormatFragment:
		if host != nil {
			return &FragmentFormatter{Mount: host.Mount}
		}
		return &FragmentFormatter{}
	default:
		return &TableFormatter{}
	}
}
