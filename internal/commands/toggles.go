package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/prefs"
)

// TokenFunc configures the credential.
type TokenFunc func(ctx context.Context) error

// Toggles binds the preference switches and the credential action to a
// Registry. Each switch re-registers itself with a fresh label after it
// flips.
type Toggles struct {
	registry *Registry
	store    prefs.Store
	onChange func(prefs.Preferences)
	token    TokenFunc

	mu      sync.Mutex
	current prefs.Preferences
	handles map[string]Handle
}

// toggleOrder fixes the menu order of the switches.
var toggleOrder = []string{prefs.KeyRenderBody, prefs.KeyActorFilter, prefs.KeyPlacement}

// NewToggles creates Toggles for p. onChange runs after every successful
// flip; token runs for the credential action. Either may be nil.
func NewToggles(r *Registry, s prefs.Store, p prefs.Preferences, onChange func(prefs.Preferences), token TokenFunc) *Toggles {
	return &Toggles{
		registry: r,
		store:    s,
		onChange: onChange,
		token:    token,
		current:  p,
		handles:  map[string]Handle{},
	}
}

// Install registers every switch and the credential action.
func (t *Toggles) Install() {
	t.mu.Lock()
	p := t.current
	t.mu.Unlock()

	for _, key := range toggleOrder {
		t.register(key, p)
	}
	if t.token != nil {
		t.registry.Register("Configure token", func(ctx context.Context) error {
			return t.token(ctx)
		})
	}
}

// Preferences returns the current preferences.
func (t *Toggles) Preferences() prefs.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Flip toggles key, persists it and refreshes its menu label.
func (t *Toggles) Flip(ctx context.Context, key string) error {
	t.mu.Lock()
	p, err := prefs.Flip(ctx, t.store, t.current, key)
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("failed to toggle %s: %w", key, err)
	}
	t.current = p
	if h, ok := t.handles[key]; ok {
		t.registry.Unregister(h)
	}
	t.mu.Unlock()

	t.register(key, p)
	log.Info("preference changed", "key", key, "label", Label(key, p))

	if t.onChange != nil {
		t.onChange(p)
	}
	return nil
}

func (t *Toggles) register(key string, p prefs.Preferences) {
	h := t.registry.Register(Label(key, p), func(ctx context.Context) error {
		return t.Flip(ctx, key)
	})
	t.mu.Lock()
	t.handles[key] = h
	t.mu.Unlock()
}

// Label returns the menu label of the switch for key in state p.
func Label(key string, p prefs.Preferences) string {
	switch key {
	case prefs.KeyRenderBody:
		return "Render bodies: " + onOff(p.RenderBody)
	case prefs.KeyActorFilter:
		return "Hide bot activity: " + onOff(p.ActorFilter)
	case prefs.KeyPlacement:
		return "Feed placement: " + string(p.Placement)
	default:
		return key
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
