package model

// Issue is the issue a payload refers to. PullRequest is set when the
// issue is actually a pull request.
type Issue struct {
	Number      *int       `json:"number,omitempty"`
	Title       *string    `json:"title,omitempty"`
	HTMLURL     *string    `json:"html_url,omitempty"`
	Body        *string    `json:"body,omitempty"`
	BodyHTML    *string    `json:"body_html,omitempty"`
	PullRequest *struct{}  `json:"pull_request,omitempty"`
	Reactions   *Reactions `json:"reactions,omitempty"`
}

// IsPullRequest reports whether the issue is a pull request.
func (i *Issue) IsPullRequest() bool {
	return i != nil && i.PullRequest != nil
}

// PullRequest is the pull request a payload refers to.
type PullRequest struct {
	Number    *int       `json:"number,omitempty"`
	Title     *string    `json:"title,omitempty"`
	HTMLURL   *string    `json:"html_url,omitempty"`
	Body      *string    `json:"body,omitempty"`
	BodyHTML  *string    `json:"body_html,omitempty"`
	Merged    *bool      `json:"merged,omitempty"`
	Reactions *Reactions `json:"reactions,omitempty"`
}

// Comment is an issue, review or commit comment.
type Comment struct {
	HTMLURL   *string    `json:"html_url,omitempty"`
	Body      *string    `json:"body,omitempty"`
	BodyHTML  *string    `json:"body_html,omitempty"`
	CommitID  *string    `json:"commit_id,omitempty"`
	Path      *string    `json:"path,omitempty"`
	Reactions *Reactions `json:"reactions,omitempty"`
}

// Review is a pull request review.
type Review struct {
	State     *string    `json:"state,omitempty"`
	HTMLURL   *string    `json:"html_url,omitempty"`
	Body      *string    `json:"body,omitempty"`
	BodyHTML  *string    `json:"body_html,omitempty"`
	Reactions *Reactions `json:"reactions,omitempty"`
}

// Release is a published release.
type Release struct {
	Name                 *string    `json:"name,omitempty"`
	TagName              *string    `json:"tag_name,omitempty"`
	HTMLURL              *string    `json:"html_url,omitempty"`
	Body                 *string    `json:"body,omitempty"`
	ShortDescriptionHTML *string    `json:"short_description_html,omitempty"`
	Reactions            *Reactions `json:"reactions,omitempty"`
}

// Reactions holds the reaction counts of a sub-entity.
type Reactions struct {
	PlusOne  *int `json:"+1,omitempty"`
	MinusOne *int `json:"-1,omitempty"`
	Laugh    *int `json:"laugh,omitempty"`
	Hooray   *int `json:"hooray,omitempty"`
	Confused *int `json:"confused,omitempty"`
	Heart    *int `json:"heart,omitempty"`
	Rocket   *int `json:"rocket,omitempty"`
	Eyes     *int `json:"eyes,omitempty"`
}

// ReactionKind names one of the known reaction keys.
type ReactionKind string

const (
	ReactionPlusOne  ReactionKind = "+1"
	ReactionMinusOne ReactionKind = "-1"
	ReactionLaugh    ReactionKind = "laugh"
	ReactionHooray   ReactionKind = "hooray"
	ReactionConfused ReactionKind = "confused"
	ReactionHeart    ReactionKind = "heart"
	ReactionRocket   ReactionKind = "rocket"
	ReactionEyes     ReactionKind = "eyes"
)

// AllReactionKinds lists the known reaction keys in display order.
var AllReactionKinds = []ReactionKind{
	ReactionPlusOne,
	ReactionMinusOne,
	ReactionLaugh,
	ReactionHooray,
	ReactionConfused,
	ReactionHeart,
	ReactionRocket,
	ReactionEyes,
}

// Count returns the count for kind; nil receivers and absent counts are 0.
func (r *Reactions) Count(kind ReactionKind) int {
	if r == nil {
		return 0
	}
	var n *int
	switch kind {
	case ReactionPlusOne:
		n = r.PlusOne
	case ReactionMinusOne:
		n = r.MinusOne
	case ReactionLaugh:
		n = r.Laugh
	case ReactionHooray:
		n = r.Hooray
	case ReactionConfused:
		n = r.Confused
	case ReactionHeart:
		n = r.Heart
	case ReactionRocket:
		n = r.Rocket
	case ReactionEyes:
		n = r.Eyes
	}
	return Int(n)
}

// Str dereferences s, returning "" for nil.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Int dereferences n, returning 0 for nil.
func Int(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

// Bool dereferences b, returning false for nil.
func Bool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
