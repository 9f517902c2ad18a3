package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spiffcs/ghfeed/internal/prefs"
)

type mapStore struct {
	values map[string]string
	err    error
}

func (s *mapStore) Get(_ context.Context, key, def string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	if s.err != nil {
		return s.err
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func labels(r *Registry) []string {
	var out []string
	for _, c := range r.Commands() {
		out = append(out, c.Label)
	}
	return out
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	calls := 0
	a := r.Register("a", func(context.Context) error { calls++; return nil })
	b := r.Register("b", func(context.Context) error { return errors.New("b failed") })

	if got := strings.Join(labels(r), ","); got != "a,b" {
		t.Errorf("unexpected labels %q", got)
	}
	if err := r.Invoke(context.Background(), a); err != nil || calls != 1 {
		t.Errorf("Invoke(a) = %v, calls %d", err, calls)
	}
	if err := r.Invoke(context.Background(), b); err == nil {
		t.Error("expected callback error")
	}

	r.Unregister(a)
	r.Unregister(a) // best effort, no panic
	if got := strings.Join(labels(r), ","); got != "b" {
		t.Errorf("unexpected labels after unregister %q", got)
	}
	if err := r.Invoke(context.Background(), a); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestInvokeAt(t *testing.T) {
	r := NewRegistry()
	var got string
	r.Register("first", func(context.Context) error { got = "first"; return nil })
	r.Register("second", func(context.Context) error { got = "second"; return nil })

	if err := r.InvokeAt(context.Background(), 2); err != nil {
		t.Fatalf("InvokeAt() error: %v", err)
	}
	if got != "second" {
		t.Errorf("expected second, got %q", got)
	}
	for _, n := range []int{0, 3} {
		if err := r.InvokeAt(context.Background(), n); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("InvokeAt(%d): expected ErrUnknownHandle, got %v", n, err)
		}
	}
}

func TestTogglesInstall(t *testing.T) {
	r := NewRegistry()
	tg := NewToggles(r, &mapStore{}, prefs.Defaults(), nil, func(context.Context) error { return nil })
	tg.Install()

	want := []string{
		"Render bodies: on",
		"Hide bot activity: on",
		"Feed placement: sidebar",
		"Configure token",
	}
	got := labels(r)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestToggleReRegistersWithNewLabel(t *testing.T) {
	r := NewRegistry()
	store := &mapStore{}
	var changed []prefs.Preferences
	tg := NewToggles(r, store, prefs.Defaults(), func(p prefs.Preferences) { changed = append(changed, p) }, nil)
	tg.Install()

	// Invoke "Render bodies: on" through the registry.
	first := r.Commands()[0]
	if err := r.Invoke(context.Background(), first.Handle); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}

	got := labels(r)
	if len(got) != 3 {
		t.Fatalf("expected 3 commands, got %v", got)
	}
	for _, l := range got {
		if l == "Render bodies: on" {
			t.Error("expected the old label to be unregistered")
		}
	}
	if !contains(got, "Render bodies: off") {
		t.Errorf("expected new label, got %v", got)
	}
	if store.values[prefs.KeyRenderBody] != "false" {
		t.Errorf("expected persisted false, got %q", store.values[prefs.KeyRenderBody])
	}
	if len(changed) != 1 || changed[0].RenderBody {
		t.Errorf("expected one change with RenderBody off, got %+v", changed)
	}
	if tg.Preferences().RenderBody {
		t.Error("expected current preferences updated")
	}

	// The old handle is gone.
	if err := r.Invoke(context.Background(), first.Handle); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle for stale handle, got %v", err)
	}
}

func TestTogglePlacement(t *testing.T) {
	r := NewRegistry()
	tg := NewToggles(r, &mapStore{}, prefs.Defaults(), nil, nil)
	tg.Install()

	if err := tg.Flip(context.Background(), prefs.KeyPlacement); err != nil {
		t.Fatalf("Flip() error: %v", err)
	}
	if !contains(labels(r), "Feed placement: main") {
		t.Errorf("unexpected labels %v", labels(r))
	}
}

func TestToggleStoreFailureKeepsState(t *testing.T) {
	r := NewRegistry()
	tg := NewToggles(r, &mapStore{err: errors.New("disk full")}, prefs.Defaults(), nil, nil)
	tg.Install()

	if err := tg.Flip(context.Background(), prefs.KeyActorFilter); err == nil {
		t.Fatal("expected error")
	}
	if !tg.Preferences().ActorFilter {
		t.Error("expected preference unchanged on store failure")
	}
	if !contains(labels(r), "Hide bot activity: on") {
		t.Errorf("expected label unchanged, got %v", labels(r))
	}
}

func TestLabel(t *testing.T) {
	p := prefs.Preferences{RenderBody: false, ActorFilter: true, Placement: prefs.PlacementMain}
	tests := []struct {
		key, want string
	}{
		{prefs.KeyRenderBody, "Render bodies: off"},
		{prefs.KeyActorFilter, "Hide bot activity: on"},
		{prefs.KeyPlacement, "Feed placement: main"},
		{"other", "other"},
	}
	for _, tt := range tests {
		if got := Label(tt.key, p); got != tt.want {
			t.Errorf("Label(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
