// Package ghclient talks to the GitHub REST API.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

var (
	// ErrMissingToken is returned when no credential is configured.
	ErrMissingToken = errors.New("GitHub token not provided. Run 'ghfeed token set' or set GITHUB_TOKEN")
	// ErrUnauthorized is returned when the API rejects the credential.
	ErrUnauthorized = errors.New("GitHub rejected the token (401 Unauthorized)")
)

// Client wraps the GitHub API client
type Client struct {
	client    *gh.Client
	rateLimit *RateLimitState
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithHTTPClient sets the client whose transport carries the requests.
// The oauth2 and rate limit transports are layered on top of it.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// NewClient creates a new GitHub client using a personal access token.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	state := newRateLimitState()
	// Wrap transport with rate limit handling
	tc.Transport = &rateLimitTransport{
		base:  tc.Transport,
		state: state,
	}

	client := gh.NewClient(tc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	return &Client{
		client:    client,
		rateLimit: state,
	}, nil
}

// AuthenticatedUser returns the authenticated user's login
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", classify(resp, fmt.Errorf("failed to get authenticated user: %w", err))
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, resp, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(resp, fmt.Errorf("failed to get rate limits: %w", err))
	}
	return limits, nil
}

// RateLimitState returns the rate limit state observed from responses.
func (c *Client) RateLimitState() *RateLimitState {
	return c.rateLimit
}

// classify marks credential failures with ErrUnauthorized.
func classify(resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
