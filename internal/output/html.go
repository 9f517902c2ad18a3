package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/ghfeed/internal/mount"
)

// HTMLFormatter mounts the cards into a host page and writes the page.
type HTMLFormatter struct {
	// Host is the raw host page. Empty uses the built-in dashboard.
	Host []byte
	// Mount places the section. Nil uses a sidebar mount.
	Mount *mount.Mount
}

// Format writes the host page with the feed section mounted.
func (f *HTMLFormatter) Format(r Result, w io.Writer) error {
	host := f.Host
	if len(host) == 0 {
		host = mount.DefaultHost()
	}
	m := f.Mount
	if m == nil {
		m = mount.New()
	}

	doc, err := mount.ParseHost(host)
	if err != nil {
		return err
	}
	if err := m.Render(doc, r.Cards, affordance(r)); err != nil {
		return err
	}

	page, err := mount.HTML(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, page); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// FragmentFormatter writes only the feed section, for embedding in a page
// the tool does not own.
type FragmentFormatter struct {
	Mount *mount.Mount
}

// Format writes the section markup.
func (f *FragmentFormatter) Format(r Result, w io.Writer) error {
	m := f.Mount
	if m == nil {
		m = mount.New()
	}
	section, err := m.Fragment(r.Cards, affordance(r))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, string(section)+"\n"); err != nil {
		return fmt.Errorf("failed to write fragment: %w", err)
	}
	return nil
}

func affordance(r Result) mount.Affordance {
	return mount.Affordance{
		HasMore:  r.HasMore,
		NextPage: r.Page + 1,
		Window:   r.Window(),
	}
}
