// Package model contains domain types for the ghfeed application.
// These types mirror the received events API and are independent of any
// external GitHub library.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the discriminant of an event's payload shape.
// See: https://docs.github.com/en/rest/using-the-rest-api/github-event-types
type Kind string

const (
	KindWatch                    Kind = "WatchEvent"
	KindFork                     Kind = "ForkEvent"
	KindPush                     Kind = "PushEvent"
	KindCreate                   Kind = "CreateEvent"
	KindDelete                   Kind = "DeleteEvent"
	KindPublic                   Kind = "PublicEvent"
	KindIssueComment             Kind = "IssueCommentEvent"
	KindIssues                   Kind = "IssuesEvent"
	KindPullRequest              Kind = "PullRequestEvent"
	KindPullRequestReview        Kind = "PullRequestReviewEvent"
	KindPullRequestReviewComment Kind = "PullRequestReviewCommentEvent"
	KindCommitComment            Kind = "CommitCommentEvent"
	KindMember                   Kind = "MemberEvent"
	KindGollum                   Kind = "GollumEvent"
	KindRelease                  Kind = "ReleaseEvent"
	KindSponsorship              Kind = "SponsorshipEvent"
)

// AllKinds contains every kind with a dedicated card layout.
// This is the single source of truth for known kinds.
var AllKinds = []Kind{
	KindWatch,
	KindFork,
	KindPush,
	KindCreate,
	KindDelete,
	KindPublic,
	KindIssueComment,
	KindIssues,
	KindPullRequest,
	KindPullRequestReview,
	KindPullRequestReviewComment,
	KindCommitComment,
	KindMember,
	KindGollum,
	KindRelease,
	KindSponsorship,
}

// Known reports whether k has a dedicated card layout.
func (k Kind) Known() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Actor is the identity that performed an event.
type Actor struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	DisplayLogin string `json:"display_login,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// Name returns the display login, falling back to the login.
func (a *Actor) Name() string {
	if a == nil {
		return ""
	}
	if a.DisplayLogin != "" {
		return a.DisplayLogin
	}
	return a.Login
}

// Repo references the repository an event happened in.
type Repo struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"` // owner/repo
}

// Event is one unit of activity from the received events stream.
// Payload holds the kind-specific variant; it is nil when the payload
// could not be decoded, in which case PayloadErr explains why.
type Event struct {
	ID         string
	Kind       Kind
	Actor      *Actor
	Repo       *Repo
	Public     bool
	CreatedAt  string
	Payload    Payload
	PayloadErr error
}

// rawEvent is the wire envelope of an Event.
type rawEvent struct {
	ID        string          `json:"id"`
	Type      Kind            `json:"type"`
	Actor     *Actor          `json:"actor"`
	Repo      *Repo           `json:"repo"`
	Public    bool            `json:"public"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// UnmarshalJSON decodes the envelope and then the payload variant chosen
// by the event type. Payload decode failures are kept on the event rather
// than failing the whole page.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event{
		ID:        raw.ID,
		Kind:      raw.Type,
		Actor:     raw.Actor,
		Repo:      raw.Repo,
		Public:    raw.Public,
		CreatedAt: raw.CreatedAt,
	}

	payload, err := decodePayload(raw.Type, raw.Payload)
	if err != nil {
		e.PayloadErr = fmt.Errorf("failed to decode %s payload: %w", raw.Type, err)
		return nil
	}
	e.Payload = payload
	return nil
}

// MarshalJSON encodes the event back into its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	var payload json.RawMessage
	if e.Payload != nil {
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		payload = data
	}
	return json.Marshal(rawEvent{
		ID:        e.ID,
		Type:      e.Kind,
		Actor:     e.Actor,
		Repo:      e.Repo,
		Public:    e.Public,
		CreatedAt: e.CreatedAt,
		Payload:   payload,
	})
}

// RepoName returns the owner/repo name or an empty string.
func (e *Event) RepoName() string {
	if e == nil || e.Repo == nil {
		return ""
	}
	return e.Repo.Name
}

// Time parses CreatedAt. ok is false when the timestamp is absent or
// unparsable.
func (e *Event) Time() (t time.Time, ok bool) {
	if e == nil || e.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EventPage is one fetched page of the received events stream.
type EventPage struct {
	Events   []*Event
	Page     int
	HasNext  bool // the Link header carried rel="next"
	LastPage int  // from rel="last", 0 when absent
}
