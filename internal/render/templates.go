package render

// partials are shared by every kind template.
var partials = `{{define "actor"}}{{with .Actor}}<a class="ghfeed-actor" href="{{.URL}}">{{if .Avatar}}<img class="ghfeed-avatar" src="{{.Avatar}}" alt="" width="20" height="20"> {{end}}{{.Text}}</a>{{else}}<span class="ghfeed-actor">someone</span>{{end}}{{end}}
{{define "repo"}}{{with .Repo}}<a class="ghfeed-repo" href="{{.URL}}">{{.Text}}</a>{{else}}<span class="ghfeed-repo">a repository</span>{{end}}{{end}}
{{define "target"}}{{with .Target}}{{if .URL}}<a class="ghfeed-target" href="{{.URL}}">{{.Text}}</a>{{else}}<span class="ghfeed-target">{{.Text}}</span>{{end}}{{end}}{{end}}`

// card wraps a rendered sentence with its time label, body and reactions.
var card = `{{define "card"}}<article class="ghfeed-card ghfeed-{{.Class}}" id="{{.ID}}" data-event-id="{{.EventID}}" data-kind="{{.Kind}}"><header class="ghfeed-summary">{{.Sentence}}{{if .TimeAgo}} <time datetime="{{.TimeISO}}" title="{{.TimeISO}}">{{.TimeAgo}}</time>{{end}}</header>{{if .Items}}<section class="ghfeed-items">{{.Items}}</section>{{end}}{{if .Body}}<section class="ghfeed-body markdown-body">{{.Body}}</section>{{end}}{{.Reactions}}</article>{{end}}`

var watch = `{{define "kind-watch"}}{{template "actor" .}} {{.Verb}} {{template "repo" .}}{{end}}`

var fork = `{{define "kind-fork"}}{{template "actor" .}} forked {{template "target" .}} from {{template "repo" .}}{{end}}`

var push = `{{define "kind-push"}}{{template "actor" .}} pushed {{template "target" .}}{{with .Ref}} to <code>{{.}}</code>{{end}} in {{template "repo" .}}{{end}}`

// ref covers CreateEvent and DeleteEvent. The API leaves the ref null for
// repositories, so that case names the repository only.
var ref = `{{define "kind-ref"}}{{template "actor" .}} {{.Verb}} {{if eq .RefType "repository"}}repository {{template "repo" .}}{{else}}{{.RefType}} <code>{{.Ref}}</code> in {{template "repo" .}}{{end}}{{end}}`

var public = `{{define "kind-public"}}{{template "actor" .}} open sourced {{template "repo" .}}{{end}}`

// subject covers events about an issue, pull request, review, commit or
// release.
var subject = `{{define "kind-subject"}}{{template "actor" .}} {{.Verb}} {{.Noun}} {{template "target" .}} in {{template "repo" .}}{{end}}`

var member = `{{define "kind-member"}}{{template "actor" .}} {{.Verb}} {{template "target" .}} to {{template "repo" .}}{{end}}`

var gollum = `{{define "kind-gollum"}}{{template "actor" .}} {{.Verb}} in {{template "repo" .}}{{end}}`

var sponsorship = `{{define "kind-sponsorship"}}{{template "actor" .}} has sponsorship activity{{with .Repo}} on {{template "repo" $}}{{end}}{{end}}`

var unknown = `{{define "kind-unknown"}}{{template "actor" .}} did <code>{{.Text}}</code> in {{template "repo" .}}{{end}}`

var fallback = `{{define "kind-fallback"}}{{template "actor" .}} {{template "repo" .}} <span class="ghfeed-error">[Render error]</span>{{end}}`

var reactions = `{{define "reactions"}}<div class="ghfeed-reactions" aria-label="Reactions">{{range .}}<button type="button" class="ghfeed-reaction" disabled aria-label="{{.Label}}">{{.Emoji}} {{.Count}}</button>{{end}}</div>{{end}}`

// allTemplates returns every template concatenated for parsing.
func allTemplates() string {
	return partials +
		card +
		watch +
		fork +
		push +
		ref +
		public +
		subject +
		member +
		gollum +
		sponsorship +
		unknown +
		fallback +
		reactions
}
