package model

import (
	"encoding/json"
)

// Payload is the kind-specific part of an event. Each variant reports the
// kind it belongs to, so a type switch over Payload is the dispatch point
// for everything kind-specific.
type Payload interface {
	Kind() Kind
}

// WatchPayload is the payload of a WatchEvent (a star).
type WatchPayload struct {
	Action *string `json:"action,omitempty"`
}

// ForkPayload is the payload of a ForkEvent.
type ForkPayload struct {
	Forkee *Forkee `json:"forkee,omitempty"`
}

// Forkee is the repository created by a fork.
type Forkee struct {
	FullName *string `json:"full_name,omitempty"`
	HTMLURL  *string `json:"html_url,omitempty"`
}

// PushPayload is the payload of a PushEvent.
type PushPayload struct {
	Ref     *string  `json:"ref,omitempty"`
	Head    *string  `json:"head,omitempty"`
	Before  *string  `json:"before,omitempty"`
	Size    *int     `json:"size,omitempty"`
	Commits []Commit `json:"commits,omitempty"`
}

// Commit is one commit of a push.
type Commit struct {
	SHA     *string `json:"sha,omitempty"`
	Message *string `json:"message,omitempty"`
	URL     *string `json:"url,omitempty"`
}

// CreatePayload is the payload of a CreateEvent.
type CreatePayload struct {
	Ref     *string `json:"ref,omitempty"`
	RefType *string `json:"ref_type,omitempty"`
}

// DeletePayload is the payload of a DeleteEvent.
type DeletePayload struct {
	Ref     *string `json:"ref,omitempty"`
	RefType *string `json:"ref_type,omitempty"`
}

// PublicPayload is the (empty) payload of a PublicEvent.
type PublicPayload struct{}

// IssueCommentPayload is the payload of an IssueCommentEvent.
type IssueCommentPayload struct {
	Action  *string  `json:"action,omitempty"`
	Issue   *Issue   `json:"issue,omitempty"`
	Comment *Comment `json:"comment,omitempty"`
}

// IssuesPayload is the payload of an IssuesEvent.
type IssuesPayload struct {
	Action *string `json:"action,omitempty"`
	Issue  *Issue  `json:"issue,omitempty"`
}

// PullRequestPayload is the payload of a PullRequestEvent.
type PullRequestPayload struct {
	Action      *string      `json:"action,omitempty"`
	Number      *int         `json:"number,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
}

// PullRequestReviewPayload is the payload of a PullRequestReviewEvent.
type PullRequestReviewPayload struct {
	Action      *string      `json:"action,omitempty"`
	Review      *Review      `json:"review,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
}

// PullRequestReviewCommentPayload is the payload of a
// PullRequestReviewCommentEvent.
type PullRequestReviewCommentPayload struct {
	Action      *string      `json:"action,omitempty"`
	Comment     *Comment     `json:"comment,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
}

// CommitCommentPayload is the payload of a CommitCommentEvent.
type CommitCommentPayload struct {
	Action  *string  `json:"action,omitempty"`
	Comment *Comment `json:"comment,omitempty"`
}

// MemberPayload is the payload of a MemberEvent.
type MemberPayload struct {
	Action *string `json:"action,omitempty"`
	Member *Actor  `json:"member,omitempty"`
}

// GollumPayload is the payload of a GollumEvent (wiki edit).
type GollumPayload struct {
	Pages []WikiPage `json:"pages,omitempty"`
}

// WikiPage is one page touched by a wiki edit.
type WikiPage struct {
	PageName *string `json:"page_name,omitempty"`
	Title    *string `json:"title,omitempty"`
	Action   *string `json:"action,omitempty"`
	HTMLURL  *string `json:"html_url,omitempty"`
}

// ReleasePayload is the payload of a ReleaseEvent.
type ReleasePayload struct {
	Action  *string  `json:"action,omitempty"`
	Release *Release `json:"release,omitempty"`
}

// SponsorshipPayload is the payload of a SponsorshipEvent. The API does
// not reliably expose sponsor direction or tier at this granularity.
type SponsorshipPayload struct {
	Action *string `json:"action,omitempty"`
}

// UnknownPayload keeps the raw payload of kinds without a dedicated layout.
type UnknownPayload struct {
	Type Kind            `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

func (WatchPayload) Kind() Kind                    { return KindWatch }
func (ForkPayload) Kind() Kind                     { return KindFork }
func (PushPayload) Kind() Kind                     { return KindPush }
func (CreatePayload) Kind() Kind                   { return KindCreate }
func (DeletePayload) Kind() Kind                   { return KindDelete }
func (PublicPayload) Kind() Kind                   { return KindPublic }
func (IssueCommentPayload) Kind() Kind             { return KindIssueComment }
func (IssuesPayload) Kind() Kind                   { return KindIssues }
func (PullRequestPayload) Kind() Kind              { return KindPullRequest }
func (PullRequestReviewPayload) Kind() Kind        { return KindPullRequestReview }
func (PullRequestReviewCommentPayload) Kind() Kind { return KindPullRequestReviewComment }
func (CommitCommentPayload) Kind() Kind            { return KindCommitComment }
func (MemberPayload) Kind() Kind                   { return KindMember }
func (GollumPayload) Kind() Kind                   { return KindGollum }
func (ReleasePayload) Kind() Kind                  { return KindRelease }
func (SponsorshipPayload) Kind() Kind              { return KindSponsorship }
func (p UnknownPayload) Kind() Kind                { return p.Type }

// MarshalJSON re-emits the raw payload untouched.
func (p UnknownPayload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return []byte("{}"), nil
	}
	return p.Raw, nil
}

// decodePayload picks the payload variant for kind and decodes raw into it.
// An absent payload decodes to the zero variant.
func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch kind {
	case KindWatch:
		p = &WatchPayload{}
	case KindFork:
		p = &ForkPayload{}
	case KindPush:
		p = &PushPayload{}
	case KindCreate:
		p = &CreatePayload{}
	case KindDelete:
		p = &DeletePayload{}
	case KindPublic:
		p = &PublicPayload{}
	case KindIssueComment:
		p = &IssueCommentPayload{}
	case KindIssues:
		p = &IssuesPayload{}
	case KindPullRequest:
		p = &PullRequestPayload{}
	case KindPullRequestReview:
		p = &PullRequestReviewPayload{}
	case KindPullRequestReviewComment:
		p = &PullRequestReviewCommentPayload{}
	case KindCommitComment:
		p = &CommitCommentPayload{}
	case KindMember:
		p = &MemberPayload{}
	case KindGollum:
		p = &GollumPayload{}
	case KindRelease:
		p = &ReleasePayload{}
	case KindSponsorship:
		p = &SponsorshipPayload{}
	default:
		return &UnknownPayload{Type: kind, Raw: raw}, nil
	}

	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}
