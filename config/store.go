package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spiffcs/ghfeed/internal/prefs"
)

// TokenEnv overrides the stored token when set.
const TokenEnv = "GITHUB_TOKEN"

// Store persists preferences in the global config file and the token in
// a separate 0600 file.
type Store struct {
	mu         sync.Mutex
	configPath string
	tokenPath  string
}

var _ prefs.Store = (*Store)(nil)

// NewStore returns a Store on the default paths.
func NewStore() *Store {
	return NewStoreAt(ConfigPath(), TokenPath())
}

// NewStoreAt returns a Store on explicit paths.
func NewStoreAt(configPath, tokenPath string) *Store {
	return &Store{configPath: configPath, tokenPath: tokenPath}
}

// Get returns the value stored under key, or def when nothing is stored.
func (s *Store) Get(ctx context.Context, key, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == prefs.KeyToken {
		if v := os.Getenv(TokenEnv); v != "" {
			return v, nil
		}
		data, err := os.ReadFile(s.tokenPath)
		if os.IsNotExist(err) {
			return def, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			return v, nil
		}
		return def, nil
	}

	cfg, err := ReadFile(s.configPath)
	if err != nil {
		return "", err
	}
	switch key {
	case prefs.KeyRenderBody:
		return boolOr(cfg.RenderBody, def), nil
	case prefs.KeyActorFilter:
		return boolOr(cfg.ActorFilter, def), nil
	case prefs.KeyPlacement:
		if cfg.Placement == "" {
			return def, nil
		}
		return cfg.Placement, nil
	default:
		return "", fmt.Errorf("unknown preference key: %s", key)
	}
}

// Set stores value under key. Setting an empty token removes it.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == prefs.KeyToken {
		if value == "" {
			if err := os.Remove(s.tokenPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			return nil
		}
		return SaveTo(s.tokenPath, value+"\n")
	}

	cfg, err := ReadFile(s.configPath)
	if err != nil {
		return err
	}
	switch key {
	case prefs.KeyRenderBody, prefs.KeyActorFilter:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		if key == prefs.KeyRenderBody {
			cfg.RenderBody = &b
		} else {
			cfg.ActorFilter = &b
		}
	case prefs.KeyPlacement:
		if !prefs.Placement(value).Valid() {
			return fmt.Errorf("invalid placement %q: must be sidebar or main", value)
		}
		cfg.Placement = value
	default:
		return fmt.Errorf("unknown preference key: %s", key)
	}
	return cfg.SaveAs(s.configPath)
}

func boolOr(b *bool, def string) string {
	if b == nil {
		return def
	}
	return strconv.FormatBool(*b)
}

// MemoryStore is an in-memory prefs.Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ prefs.Store = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore holding values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value under key or def.
func (m *MemoryStore) Get(ctx context.Context, key, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
