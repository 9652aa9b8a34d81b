// Package store persists the state of a recording session so that it
// survives page navigations and restarts of the recorder.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jakopako/pomgen/internal/types"
)

// The keys the session state is stored under.
const (
	ActionsKey      = "recordedActions"
	VisitedPagesKey = "visitedPages"
)

// A KV is a minimal persistent key-value store.
type KV interface {
	// Get returns the value stored under key. The second return
	// value is false if there is no such key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// StoreType encapsulates the type of a store
// See below constants for possible types
type StoreType string

const (
	MEMORY_STORE_TYPE StoreType = "memory"
	FILE_STORE_TYPE   StoreType = "file"
	SQLITE_STORE_TYPE StoreType = "sqlite"
)

const (
	defaultFilePath   = "pomgen-session.json"
	defaultSQLitePath = "pomgen.db"
)

// StoreConfig defines which backend the session state is persisted to.
type StoreConfig struct {
	Type StoreType `yaml:"type" env:"POMGEN_STORE_TYPE" env-default:"file"`
	Path string    `yaml:"path" env:"POMGEN_STORE_PATH"`
}

// NewKV returns a new key-value store depending on the store type
func NewKV(sc *StoreConfig) (KV, error) {
	switch sc.Type {
	case MEMORY_STORE_TYPE:
		return NewMemoryKV(), nil
	case "", FILE_STORE_TYPE:
		path := sc.Path
		if path == "" {
			path = defaultFilePath
		}
		return NewFileKV(path)
	case SQLITE_STORE_TYPE:
		path := sc.Path
		if path == "" {
			path = defaultSQLitePath
		}
		return NewSQLiteKV(path)
	default:
		return nil, fmt.Errorf("store of type '%s' not implemented", sc.Type)
	}
}

// State is the persisted part of a recording session.
type State struct {
	Actions      []types.Action `json:"recordedActions"`
	VisitedPages []string       `json:"visitedPages"`
}

// SessionStore reads and writes the session state from and to a KV.
type SessionStore struct {
	kv     KV
	logger *slog.Logger
}

func New(kv KV) *SessionStore {
	return &SessionStore{
		kv:     kv,
		logger: slog.With(slog.String("component", "store")),
	}
}

// NewFromConfig opens the KV configured by sc and wraps it in a SessionStore.
func NewFromConfig(sc *StoreConfig) (*SessionStore, error) {
	kv, err := NewKV(sc)
	if err != nil {
		return nil, err
	}
	return New(kv), nil
}

// Load returns the persisted state. Missing keys yield empty lists.
func (s *SessionStore) Load(ctx context.Context) (State, error) {
	st := State{Actions: []types.Action{}, VisitedPages: []string{}}
	if err := s.get(ctx, ActionsKey, &st.Actions); err != nil {
		return st, err
	}
	if err := s.get(ctx, VisitedPagesKey, &st.VisitedPages); err != nil {
		return st, err
	}
	s.logger.Debug(fmt.Sprintf("loaded %d actions and %d visited pages", len(st.Actions), len(st.VisitedPages)))
	return st, nil
}

func (s *SessionStore) get(ctx context.Context, key string, v any) error {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Save writes both keys of st.
func (s *SessionStore) Save(ctx context.Context, st State) error {
	if st.Actions == nil {
		st.Actions = []types.Action{}
	}
	if st.VisitedPages == nil {
		st.VisitedPages = []string{}
	}
	actions, err := json.Marshal(st.Actions)
	if err != nil {
		return err
	}
	pages, err := json.Marshal(st.VisitedPages)
	if err != nil {
		return err
	}
	return errors.Join(
		s.kv.Set(ctx, ActionsKey, actions),
		s.kv.Set(ctx, VisitedPagesKey, pages),
	)
}

// Clear removes the session state.
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, ActionsKey, VisitedPagesKey)
}

func (s *SessionStore) Close() error {
	return s.kv.Close()
}
