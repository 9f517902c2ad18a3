package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/ghfeed/internal/render"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutput wraps the cards with the feed state.
type JSONOutput struct {
	Username string        `json:"username"`
	Page     int           `json:"page"`
	HasMore  bool          `json:"has_more"`
	Window   string        `json:"window"`
	Fetched  int           `json:"fetched"`
	Filtered int           `json:"filtered"`
	Cards    []render.Card `json:"cards"`
}

// Format outputs the cards and state summary as JSON
func (f *JSONFormatter) Format(r Result, w io.Writer) error {
	cards := r.Cards
	if cards == nil {
		cards = []render.Card{}
	}
	out := JSONOutput{
		Username: r.Username,
		Page:     r.Page,
		HasMore:  r.HasMore,
		Window:   r.Window(),
		Fetched:  r.Fetched,
		Filtered: r.Filtered,
		Cards:    cards,
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
