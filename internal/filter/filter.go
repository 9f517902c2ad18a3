// Package filter suppresses events from noisy actors such as bots and
// GitHub system accounts.
package filter

import "github.com/spiffcs/ghfeed/internal/model"

// Rule matches actors by identity. Only the fields that are set take part
// in matching.
type Rule struct {
	ID           *int64
	Login        *string
	DisplayLogin *string
}

// IsFiltered reports whether actor matches any rule.
//
// Matching is loose on purpose: rules are OR'd together and so are the
// present fields within a rule, so a rule with both a login and an id
// filters an actor matching either one. Comparisons are strict equality;
// a present field never matches by presence or substring.
func IsFiltered(actor *model.Actor, rules []Rule) bool {
	if actor == nil {
		return false
	}
	for _, r := range rules {
		if r.ID != nil && *r.ID == actor.ID {
			return true
		}
		if r.Login != nil && *r.Login == actor.Login {
			return true
		}
		if r.DisplayLogin != nil && *r.DisplayLogin == actor.DisplayLogin {
			return true
		}
	}
	return false
}

// Apply returns the events whose actor is not filtered, in arrival order.
func Apply(events []*model.Event, rules []Rule) []*model.Event {
	kept := make([]*model.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if IsFiltered(e.Actor, rules) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// LoginRules builds login-only rules.
func LoginRules(logins ...string) []Rule {
	rules := make([]Rule, 0, len(logins))
	for _, login := range logins {
		if login == "" {
			continue
		}
		rules = append(rules, Rule{Login: &login})
	}
	return rules
}

// DefaultRules returns the built-in deny list of bot and system actors.
func DefaultRules() []Rule {
	return []Rule{
		{ID: id(49699333), Login: str("dependabot[bot]")},
		{ID: id(41898282), Login: str("github-actions[bot]")},
		{ID: id(29139614), Login: str("renovate[bot]")},
		{ID: id(10137), Login: str("ghost")},
		{Login: str("web-flow")},
		{Login: str("github-merge-queue[bot]")},
		{Login: str("copilot-swe-agent[bot]")},
		{DisplayLogin: str("dependabot")},
		{DisplayLogin: str("github-actions")},
	}
}

func id(n int64) *int64 { return &n }

func str(s string) *string { return &s }
