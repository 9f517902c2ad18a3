// Package prefs holds the user-togglable feed preferences and the keys
// they are persisted under.
package prefs

import (
	"context"
	"fmt"
	"strconv"
)

// Keys of the persisted preference store.
const (
	KeyToken       = "token"
	KeyRenderBody  = "render_body"
	KeyActorFilter = "actor_filter"
	KeyPlacement   = "placement"
)

// Placement selects the page region the feed is mounted into.
type Placement string

const (
	PlacementSidebar Placement = "sidebar"
	PlacementMain    Placement = "main"
)

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	return p == PlacementSidebar || p == PlacementMain
}

// Other returns the opposite placement.
func (p Placement) Other() Placement {
	if p == PlacementMain {
		return PlacementSidebar
	}
	return PlacementMain
}

// Preferences are read once at startup and changed only by explicit
// user toggles.
type Preferences struct {
	RenderBody  bool
	ActorFilter bool
	Placement   Placement
}

// Defaults returns the preferences used when nothing is persisted.
func Defaults() Preferences {
	return Preferences{
		RenderBody:  true,
		ActorFilter: true,
		Placement:   PlacementSidebar,
	}
}

// Store is an asynchronous key-value store for persisted preferences.
type Store interface {
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Load reads the preferences from s, falling back to Defaults for absent
// or unparsable values.
func Load(ctx context.Context, s Store) (Preferences, error) {
	p := Defaults()

	renderBody, err := getBool(ctx, s, KeyRenderBody, p.RenderBody)
	if err != nil {
		return p, err
	}
	actorFilter, err := getBool(ctx, s, KeyActorFilter, p.ActorFilter)
	if err != nil {
		return p, err
	}
	placement, err := s.Get(ctx, KeyPlacement, string(p.Placement))
	if err != nil {
		return p, fmt.Errorf("failed to read %s: %w", KeyPlacement, err)
	}

	p.RenderBody = renderBody
	p.ActorFilter = actorFilter
	if pl := Placement(placement); pl.Valid() {
		p.Placement = pl
	}
	return p, nil
}

// Save persists every preference.
func Save(ctx context.Context, s Store, p Preferences) error {
	if err := s.Set(ctx, KeyRenderBody, strconv.FormatBool(p.RenderBody)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyRenderBody, err)
	}
	if err := s.Set(ctx, KeyActorFilter, strconv.FormatBool(p.ActorFilter)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyActorFilter, err)
	}
	if err := s.Set(ctx, KeyPlacement, string(p.Placement)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyPlacement, err)
	}
	return nil
}

// Flip toggles the preference stored under key, persists it and returns
// the updated preferences.
func Flip(ctx context.Context, s Store, p Preferences, key string) (Preferences, error) {
	switch key {
	case KeyRenderBody:
		p.RenderBody = !p.RenderBody
		return p, s.Set(ctx, key, strconv.FormatBool(p.RenderBody))
	case KeyActorFilter:
		p.ActorFilter = !p.ActorFilter
		return p, s.Set(ctx, key, strconv.FormatBool(p.ActorFilter))
	case KeyPlacement:
		p.Placement = p.Placement.Other()
		return p, s.Set(ctx, key, string(p.Placement))
	default:
		return p, fmt.Errorf("unknown preference: %s", key)
	}
}

func getBool(ctx context.Context, s Store, key string, def bool) (bool, error) {
	v, err := s.Get(ctx, key, strconv.FormatBool(def))
	if err != nil {
		return def, fmt.Errorf("failed to read %s: %w", key, err)
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, nil
	}
	return b, nil
}
