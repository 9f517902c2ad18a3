package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

const githubURL = "https://github.com/"

// link is a text/URL pair for templates. URL may be empty.
type link struct {
	Text   string
	URL    string
	Avatar string
}

// cardData is the view model every template executes against.
type cardData struct {
	ID       string
	EventID  string
	Kind     model.Kind
	Class    string
	Template string

	Actor  *link
	Repo   *link
	Target *link

	Verb    string
	Noun    string
	Ref     string
	RefType string
	Text    string

	Sentence  template.HTML
	Items     template.HTML
	Body      template.HTML
	Reactions template.HTML

	TimeISO string
	TimeAgo string
}

func (r *Renderer) baseData(e *model.Event) cardData {
	d := cardData{
		ID:      "ghfeed-event-" + e.ID,
		EventID: e.ID,
		Kind:    e.Kind,
		Class:   r.kindClass.ReplaceAllString(strings.ToLower(strings.TrimSuffix(string(e.Kind), "Event")), ""),
	}
	if e.Actor != nil && e.Actor.Login != "" {
		d.Actor = &link{
			Text:   e.Actor.Name(),
			URL:    githubURL + e.Actor.Login,
			Avatar: e.Actor.AvatarURL,
		}
	}
	if name := e.RepoName(); name != "" {
		d.Repo = &link{Text: name, URL: githubURL + name}
	}
	if t, ok := e.Time(); ok {
		d.TimeISO = t.UTC().Format("2006-01-02T15:04:05Z")
		d.TimeAgo = format.TimeAgoSince(t, r.now())
	}
	return d
}

func (r *Renderer) watch(d *cardData, p *model.WatchPayload) {
	d.Template = "kind-watch"
	d.Verb = "starred"
	if action := model.Str(p.Action); action != "" && action != "started" {
		d.Verb = action
	}
}

func (r *Renderer) fork(d *cardData, p *model.ForkPayload) {
	d.Template = "kind-fork"
	if p.Forkee == nil {
		d.Target = &link{Text: "a fork"}
		return
	}
	name := model.Str(p.Forkee.FullName)
	u := model.Str(p.Forkee.HTMLURL)
	if u == "" && name != "" {
		u = githubURL + name
	}
	d.Target = &link{Text: name, URL: u}
}

func (r *Renderer) push(d *cardData, e *model.Event, p *model.PushPayload, pr prefs.Preferences) {
	d.Template = "kind-push"
	d.Ref = strings.TrimPrefix(model.Str(p.Ref), "refs/heads/")

	count := len(p.Commits)
	if p.Size != nil {
		count = *p.Size
	}
	d.Target = &link{Text: commitPhrase(count)}
	before, head := model.Str(p.Before), model.Str(p.Head)
	if repo := e.RepoName(); repo != "" && before != "" && head != "" {
		d.Target.URL = fmt.Sprintf("%s%s/compare/%s...%s", githubURL, repo, before, head)
	}

	if !pr.RenderBody || len(p.Commits) == 0 {
		return
	}
	var md strings.Builder
	for i, c := range p.Commits {
		if i == constants.MaxListedItems {
			break
		}
		sha := model.Str(c.SHA)
		line, more := format.FirstLine(model.Str(c.Message))
		if more {
			line += "…"
		}
		fmt.Fprintf(&md, "- [`%s`](%s%s/commit/%s) %s\n", format.ShortSHA(sha), githubURL, e.RepoName(), sha, html.EscapeString(line))
	}
	d.Items = r.RenderMarkdown(md.String())
}

// commitPhrase pluralizes the pushed commit count.
func commitPhrase(n int) string {
	switch {
	case n <= 0:
		return "something"
	case n == 1:
		return "1 commit"
	default:
		return fmt.Sprintf("%d commits", n)
	}
}

func (r *Renderer) ref(d *cardData, verb string, refType, ref *string) {
	d.Template = "kind-ref"
	d.Verb = verb
	d.RefType = model.Str(refType)
	if d.RefType == "" {
		d.RefType = "ref"
	}
	d.Ref = model.Str(ref)
}

func (r *Renderer) issueComment(d *cardData, p *model.IssueCommentPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = "commented on"
	d.Noun = "issue"
	if p.Issue.IsPullRequest() {
		d.Noun = "pull request"
	}
	d.Target = issueLink(p.Issue)
	if p.Comment != nil {
		if u := model.Str(p.Comment.HTMLURL); u != "" {
			d.Target.URL = u
		}
		r.body(d, pr, model.Str(p.Comment.BodyHTML), model.Str(p.Comment.Body))
		d.Reactions = r.ReactionsBar(p.Comment.Reactions)
	}
}

func (r *Renderer) issues(d *cardData, p *model.IssuesPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = actionOr(p.Action, "updated")
	d.Noun = "issue"
	d.Target = issueLink(p.Issue)
	if p.Issue != nil {
		r.body(d, pr, model.Str(p.Issue.BodyHTML), model.Str(p.Issue.Body))
		d.Reactions = r.ReactionsBar(p.Issue.Reactions)
	}
}

func (r *Renderer) pullRequest(d *cardData, p *model.PullRequestPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = actionOr(p.Action, "updated")
	d.Noun = "pull request"
	d.Target = pullRequestLink(p.PullRequest, p.Number)
	if p.PullRequest != nil {
		if d.Verb == "closed" && model.Bool(p.PullRequest.Merged) {
			d.Verb = "merged"
		}
		r.body(d, pr, model.Str(p.PullRequest.BodyHTML), model.Str(p.PullRequest.Body))
		d.Reactions = r.ReactionsBar(p.PullRequest.Reactions)
	}
}

func (r *Renderer) review(d *cardData, p *model.PullRequestReviewPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = "reviewed"
	d.Noun = "pull request"
	d.Target = pullRequestLink(p.PullRequest, nil)
	if p.Review == nil {
		return
	}
	switch strings.ToLower(model.Str(p.Review.State)) {
	case "approved":
		d.Verb = "approved"
	case "changes_requested":
		d.Verb = "requested changes on"
	}
	if u := model.Str(p.Review.HTMLURL); u != "" {
		d.Target.URL = u
	}
	r.body(d, pr, model.Str(p.Review.BodyHTML), model.Str(p.Review.Body))
	d.Reactions = r.ReactionsBar(p.Review.Reactions)
}

func (r *Renderer) reviewComment(d *cardData, p *model.PullRequestReviewCommentPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = "commented on"
	d.Noun = "pull request"
	d.Target = pullRequestLink(p.PullRequest, nil)
	if p.Comment != nil {
		if u := model.Str(p.Comment.HTMLURL); u != "" {
			d.Target.URL = u
		}
		r.body(d, pr, model.Str(p.Comment.BodyHTML), model.Str(p.Comment.Body))
		d.Reactions = r.ReactionsBar(p.Comment.Reactions)
	}
}

func (r *Renderer) commitComment(d *cardData, e *model.Event, p *model.CommitCommentPayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = "commented on"
	d.Noun = "commit"
	d.Target = &link{Text: "a commit"}
	if p.Comment == nil {
		return
	}
	if sha := model.Str(p.Comment.CommitID); sha != "" {
		d.Target.Text = format.ShortSHA(sha)
		if repo := e.RepoName(); repo != "" {
			d.Target.URL = githubURL + repo + "/commit/" + sha
		}
	}
	if u := model.Str(p.Comment.HTMLURL); u != "" {
		d.Target.URL = u
	}
	r.body(d, pr, model.Str(p.Comment.BodyHTML), model.Str(p.Comment.Body))
	d.Reactions = r.ReactionsBar(p.Comment.Reactions)
}

func (r *Renderer) member(d *cardData, p *model.MemberPayload) {
	d.Template = "kind-member"
	d.Verb = actionOr(p.Action, "added")
	d.Target = &link{Text: "someone"}
	if p.Member != nil && p.Member.Login != "" {
		d.Target = &link{Text: p.Member.Login, URL: githubURL + p.Member.Login}
	}
}

func (r *Renderer) gollum(d *cardData, p *model.GollumPayload, pr prefs.Preferences) {
	d.Template = "kind-gollum"
	switch len(p.Pages) {
	case 0:
		d.Verb = "edited the wiki"
	case 1:
		d.Verb = "edited 1 wiki page"
	default:
		d.Verb = fmt.Sprintf("edited %d wiki pages", len(p.Pages))
	}

	if !pr.RenderBody || len(p.Pages) == 0 {
		return
	}
	var md strings.Builder
	for i, page := range p.Pages {
		if i == constants.MaxListedItems {
			break
		}
		name := model.Str(page.PageName)
		if name == "" {
			name = model.Str(page.Title)
		}
		action := actionOr(page.Action, "edited")
		if u := model.Str(page.HTMLURL); u != "" {
			fmt.Fprintf(&md, "- %s [%s](%s)\n", action, escapeLinkText(html.EscapeString(name)), u)
		} else {
			fmt.Fprintf(&md, "- %s %s\n", action, html.EscapeString(name))
		}
	}
	d.Items = r.RenderMarkdown(md.String())
}

func (r *Renderer) release(d *cardData, p *model.ReleasePayload, pr prefs.Preferences) {
	d.Template = "kind-subject"
	d.Verb = actionOr(p.Action, "published")
	d.Noun = "release"
	d.Target = &link{Text: "a release"}
	if p.Release == nil {
		return
	}
	name := model.Str(p.Release.Name)
	if name == "" {
		name = model.Str(p.Release.TagName)
	}
	if name != "" {
		d.Target.Text = name
	}
	d.Target.URL = model.Str(p.Release.HTMLURL)
	r.body(d, pr, model.Str(p.Release.ShortDescriptionHTML), model.Str(p.Release.Body))
	d.Reactions = r.ReactionsBar(p.Release.Reactions)
}

// body prefers the pre-rendered short HTML over the markdown source.
func (r *Renderer) body(d *cardData, pr prefs.Preferences, shortHTML, markdown string) {
	if !pr.RenderBody {
		return
	}
	if strings.TrimSpace(shortHTML) != "" {
		d.Body = r.Sanitize(shortHTML)
		return
	}
	d.Body = r.RenderMarkdown(markdown)
}

func issueLink(i *model.Issue) *link {
	if i == nil {
		return &link{Text: "an issue"}
	}
	return &link{Text: numbered(i.Number, model.Str(i.Title)), URL: model.Str(i.HTMLURL)}
}

func pullRequestLink(pr *model.PullRequest, number *int) *link {
	if pr == nil {
		if number != nil {
			return &link{Text: numbered(number, "")}
		}
		return &link{Text: "a pull request"}
	}
	n := pr.Number
	if n == nil {
		n = number
	}
	return &link{Text: numbered(n, model.Str(pr.Title)), URL: model.Str(pr.HTMLURL)}
}

func numbered(n *int, title string) string {
	switch {
	case n == nil:
		return title
	case title == "":
		return fmt.Sprintf("#%d", *n)
	default:
		return fmt.Sprintf("#%d %s", *n, title)
	}
}

func actionOr(action *string, def string) string {
	if a := model.Str(action); a != "" {
		return a
	}
	return def
}

var linkTextEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

func escapeLinkText(s string) string {
	return linkTextEscaper.Replace(s)
}
