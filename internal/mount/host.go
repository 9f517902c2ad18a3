package mount

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

//go:embed host.html
var defaultHost []byte

// DefaultHost returns the built-in dashboard page, which carries both a
// sidebar and a main region.
func DefaultHost() []byte {
	return bytes.Clone(defaultHost)
}

// LoadHost reads the host page from src, a file path or an http(s) URL.
// An empty src yields the built-in page.
func LoadHost(ctx context.Context, src string) ([]byte, error) {
	switch {
	case src == "":
		return DefaultHost(), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build host request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch host page: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch host page: %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read host page: %w", err)
		}
		return data, nil
	}
}

// ParseHost parses a host page into a document.
func ParseHost(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse host page: %w", err)
	}
	return doc, nil
}

// HTML serializes the whole document.
func HTML(doc *goquery.Document) (string, error) {
	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("failed to serialize host page: %w", err)
	}
	return out, nil
}
