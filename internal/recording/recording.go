// Package recording implements the recording session: it turns click
// and input events on page elements into an ordered action log,
// persists that log across page loads and exports it when stopped.
package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jakopako/pomgen/internal/artifact"
	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/locator"
	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/store"
	"github.com/jakopako/pomgen/internal/types"
)

var (
	ErrNotRecording     = errors.New("not recording")
	ErrAlreadyRecording = errors.New("already recording")
)

// State is the state of a Recorder.
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

const defaultDebounce = 300 * time.Millisecond

// A Stopper cancels a pending timer. It reports whether the timer was
// stopped before it fired, like time.Timer.Stop.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Stopper

func timeAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// An Exporter hands a finished session over to the generation side
// and returns where it put it.
type Exporter interface {
	Export(e *types.Export) (string, error)
}

// RecorderConfig holds the recorder section of the configuration.
type RecorderConfig struct {
	DebounceMS     int               `yaml:"debounce_ms" env-default:"300"`
	Store          store.StoreConfig `yaml:"store"`
	DropDir        string            `yaml:"drop_dir" env:"POMGEN_DROP_DIR"`
	ArtifactPrefix string            `yaml:"artifact_prefix" env-default:"recordedActions"`
}

// DefaultDropDir returns the directory artifacts are exported to when
// none is configured, the user's downloads directory.
func DefaultDropDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

type pendingInput struct {
	action types.Action
	timer  Stopper
	order  int
}

// Recorder is a recording session. All methods are safe for concurrent
// use; debounce timers fire on their own goroutines and synchronize
// through the same mutex as event handlers.
type Recorder struct {
	mu           sync.Mutex
	state        State
	session      types.Session
	visited      map[string]bool
	pending      map[string]*pendingInput
	pendingCount int
	// rehydrated is set once the session was restored from the store
	rehydrated bool

	store        *store.SessionStore
	enricher     naming.Enricher
	exporter     Exporter
	debounce     time.Duration
	afterFunc    AfterFunc
	contextLimit int
	logger       *slog.Logger
}

type Option func(*Recorder)

// WithStore persists the session state after every change.
func WithStore(s *store.SessionStore) Option {
	return func(r *Recorder) { r.store = s }
}

func WithEnricher(e naming.Enricher) Option {
	return func(r *Recorder) { r.enricher = e }
}

func WithExporter(x Exporter) Option {
	return func(r *Recorder) { r.exporter = x }
}

func WithDebounce(d time.Duration) Option {
	return func(r *Recorder) { r.debounce = d }
}

func WithAfterFunc(f AfterFunc) Option {
	return func(r *Recorder) { r.afterFunc = f }
}

// WithContextLimit caps the surrounding text sent along with enrichment requests.
func WithContextLimit(n int) Option {
	return func(r *Recorder) { r.contextLimit = n }
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		visited:      map[string]bool{},
		pending:      map[string]*pendingInput{},
		enricher:     naming.NoopEnricher{},
		debounce:     defaultDebounce,
		afterFunc:    timeAfterFunc,
		contextLimit: 1000,
		logger:       slog.With(slog.String("component", "recorder")),
	}
	r.resetSession()
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewRecorderFromConfig wires a Recorder with the store, enricher and
// drop location described by the configuration.
func NewRecorderFromConfig(rc *RecorderConfig, ec *naming.EnricherConfig) (*Recorder, error) {
	s, err := store.NewFromConfig(&rc.Store)
	if err != nil {
		return nil, fmt.Errorf("error creating store: %w", err)
	}
	e, err := naming.NewEnricher(ec)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error creating enricher: %w", err)
	}
	dropDir := rc.DropDir
	if dropDir == "" {
		dropDir = DefaultDropDir()
	}
	opts := []Option{
		WithStore(s),
		WithEnricher(e),
		WithExporter(&artifact.Exporter{Dir: dropDir, Prefix: rc.ArtifactPrefix}),
	}
	if rc.DebounceMS > 0 {
		opts = append(opts, WithDebounce(time.Duration(rc.DebounceMS)*time.Millisecond))
	}
	if ec.ContextLimit > 0 {
		opts = append(opts, WithContextLimit(ec.ContextLimit))
	}
	return New(opts...), nil
}

func (r *Recorder) resetSession() {
	r.session = types.Session{
		ID:           uuid.NewString(),
		Actions:      []types.Action{},
		VisitedPages: []string{},
	}
	r.visited = map[string]bool{}
	r.rehydrated = false
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Actions returns a copy of the action log.
func (r *Recorder) Actions() []types.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.session.Actions)
}

// VisitedPages returns the pages seen so far in first-visit order.
func (r *Recorder) VisitedPages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.session.VisitedPages)
}

// Load records pageURL as visited. It is called on every page load.
// The first load of a session rehydrates it from the store, later
// loads keep the in-memory state, which is never older than the stored
// one. Store failures are logged and the in-memory state is kept.
func (r *Recorder) Load(ctx context.Context, pageURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil && !r.rehydrated {
		r.rehydrated = true
		st, err := r.store.Load(ctx)
		if err != nil {
			r.logger.Warn(fmt.Sprintf("failed to restore session state: %v", err))
		} else {
			r.session.Actions = st.Actions
			r.session.VisitedPages = []string{}
			r.visited = map[string]bool{}
			for _, p := range st.VisitedPages {
				r.addVisited(p)
			}
		}
	}
	r.addVisited(pageURL)
	r.logger.Info(fmt.Sprintf("page loaded: %s", pageURL))
	r.logger.Debug(fmt.Sprintf("restored %d actions", len(r.session.Actions)))
	for i, a := range r.session.Actions {
		r.logger.Debug(fmt.Sprintf("[%d] %s - %s - %s - %s", i+1, a.Kind, a.Name, a.Locator, a.PageURL))
	}
	r.persist(ctx)
}

func (r *Recorder) addVisited(pageURL string) {
	if pageURL == "" || r.visited[pageURL] {
		return
	}
	r.visited[pageURL] = true
	r.session.VisitedPages = append(r.session.VisitedPages, pageURL)
}

// Navigate records pageURL as visited. It never touches the action log.
func (r *Recorder) Navigate(ctx context.Context, pageURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visited[pageURL] {
		return
	}
	r.addVisited(pageURL)
	r.persist(ctx)
}

// Start begins a recording.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Recording {
		return ErrAlreadyRecording
	}
	r.state = Recording
	r.logger.Info("recording started", slog.String("session", r.session.ID))
	return nil
}

// persist writes the session state to the store. It has to be called
// with r.mu held.
func (r *Recorder) persist(ctx context.Context) {
	if r.store == nil {
		return
	}
	err := r.store.Save(ctx, store.State{
		Actions:      r.session.Actions,
		VisitedPages: r.session.VisitedPages,
	})
	if err != nil {
		r.logger.Warn(fmt.Sprintf("failed to persist session state: %v", err))
	}
}

// append adds a to the action log with the next sequence number. It
// has to be called with r.mu held.
func (r *Recorder) append(ctx context.Context, a types.Action) {
	next := 1
	for _, existing := range r.session.Actions {
		if existing.Sequence >= next {
			next = existing.Sequence + 1
		}
	}
	a.Sequence = next
	r.session.Actions = append(r.session.Actions, a)
	r.logger.Info(fmt.Sprintf("recorded %s: %s - %s", a.Kind, a.Name, a.Locator))
	r.persist(ctx)
}

func describe(el dom.Element) (string, string, error) {
	loc := locator.Synthesize(el)
	if loc == "" {
		return "", "", locator.ErrNoElement
	}
	return loc, naming.Name(el), nil
}

// Click records a click on el. The name may be replaced by the enricher
// before the action is appended; enrichment failures are logged and the
// heuristic name is kept.
func (r *Recorder) Click(ctx context.Context, el dom.Element, pageURL string) error {
	if r.State() != Recording {
		return ErrNotRecording
	}
	loc, name, err := describe(el)
	if err != nil {
		return err
	}

	enriched, err := r.enricher.EnrichName(ctx, naming.Request{
		Locator: loc,
		Tag:     strings.ToUpper(el.Tag()),
		Context: el.ContextText(r.contextLimit),
	})
	if err != nil {
		r.logger.Debug(fmt.Sprintf("enrichment failed for %s, keeping %s: %v", loc, name, err))
	} else if n := naming.Sanitize(enriched); n != "" {
		name = n
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// the recording might have been stopped while waiting for the enricher
	if r.state != Recording {
		return ErrNotRecording
	}
	r.append(ctx, types.Action{
		Kind:    types.ActionKindClick,
		Locator: loc,
		Name:    name,
		PageURL: pageURL,
	})
	return nil
}

// Input records the value of the form field el. Calls are debounced
// per locator: the value is only committed once no further input for
// the same locator arrived within the debounce interval, and only if
// it differs from the last value recorded for that field on that page.
func (r *Recorder) Input(ctx context.Context, el dom.Element, value, pageURL string) error {
	loc, name, err := describe(el)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return ErrNotRecording
	}
	if p, found := r.pending[loc]; found {
		p.timer.Stop()
	}
	r.pendingCount++
	p := &pendingInput{
		action: types.Action{
			Kind:    types.ActionKindInput,
			Locator: loc,
			Name:    name,
			Value:   value,
			PageURL: pageURL,
		},
		order: r.pendingCount,
	}
	r.pending[loc] = p
	p.timer = r.afterFunc(r.debounce, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// a newer input for the same locator replaced this one
		if r.pending[loc] != p {
			return
		}
		delete(r.pending, loc)
		r.commitInput(context.Background(), p.action)
	})
	return nil
}

// commitInput appends a unless the field already holds that value. It
// has to be called with r.mu held.
func (r *Recorder) commitInput(ctx context.Context, a types.Action) {
	if r.state != Recording {
		return
	}
	for i := len(r.session.Actions) - 1; i >= 0; i-- {
		last := r.session.Actions[i]
		if last.Kind == types.ActionKindInput && last.Locator == a.Locator && last.PageURL == a.PageURL {
			if last.Value == a.Value {
				r.logger.Debug(fmt.Sprintf("value of %s unchanged, skipping", a.Locator))
				return
			}
			break
		}
	}
	r.append(ctx, a)
}

// flushPending commits all pending inputs in the order they arrived.
// It has to be called with r.mu held.
func (r *Recorder) flushPending(ctx context.Context) {
	pending := make([]*pendingInput, 0, len(r.pending))
	for _, p := range r.pending {
		p.timer.Stop()
		pending = append(pending, p)
	}
	slices.SortFunc(pending, func(a, b *pendingInput) int { return a.order - b.order })
	for _, p := range pending {
		r.commitInput(ctx, p.action)
	}
	r.pending = map[string]*pendingInput{}
}

// Stop ends the recording. Pending inputs are committed, the names of
// the recorded actions are passed through the batch enricher and the
// session is exported with label as test name. Afterwards the in-memory
// and the persisted state are cleared. The returned path is empty if
// the recorder has no exporter.
func (r *Recorder) Stop(ctx context.Context, label string) (*types.Export, string, error) {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return nil, "", ErrNotRecording
	}
	r.flushPending(ctx)
	r.state = Idle
	actions := slices.Clone(r.session.Actions)
	visited := slices.Clone(r.session.VisitedPages)
	sessionID := r.session.ID
	r.mu.Unlock()

	if len(actions) > 0 {
		enriched, err := r.enricher.EnrichNames(ctx, actions)
		if err != nil {
			r.logger.Debug(fmt.Sprintf("batch enrichment failed, keeping names: %v", err))
		} else if len(enriched) == len(actions) {
			actions = enriched
		} else {
			r.logger.Debug(fmt.Sprintf("batch enrichment returned %d of %d actions, keeping names", len(enriched), len(actions)))
		}
	}

	e := &types.Export{
		Actions:      actions,
		VisitedPages: visited,
		TestName:     strings.TrimSpace(label),
	}

	var path string
	if r.exporter != nil {
		var err error
		if path, err = r.exporter.Export(e); err != nil {
			// keep recording so that nothing is lost and stopping can be retried
			r.logger.Error(fmt.Sprintf("failed to export session: %v", err))
			r.mu.Lock()
			r.state = Recording
			r.mu.Unlock()
			return e, "", err
		}
		r.logger.Info(fmt.Sprintf("exported %d actions to %s", len(actions), path))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetSession()
	if r.store != nil {
		if err := r.store.Clear(ctx); err != nil {
			r.logger.Warn(fmt.Sprintf("failed to clear session state: %v", err))
		}
	}
	r.logger.Info("recording stopped", slog.String("session", sessionID))
	return e, path, nil
}

// Reset discards the current session and the persisted state without
// exporting anything.
func (r *Recorder) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pending {
		p.timer.Stop()
	}
	r.pending = map[string]*pendingInput{}
	r.state = Idle
	r.resetSession()
	if r.store != nil {
		return r.store.Clear(ctx)
	}
	return nil
}

// Close releases the store.
func (r *Recorder) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
