package tcg

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
)

// DefaultDebounce is how long the query must stay unchanged before a
// search is sent
const DefaultDebounce = 3 * time.Second

// Searcher runs a single card search
type Searcher interface {
	Search(ctx context.Context, endpoint Endpoint, q Query) ([]models.CardSummary, error)
}

// UpdateKind tells the listener what happened to the result set
type UpdateKind string

const (
	UpdateResults    UpdateKind = "results"
	UpdateCleared    UpdateKind = "cleared"
	UpdateComingSoon UpdateKind = "coming_soon"
	UpdateError      UpdateKind = "error"
)

// Update is published whenever the result set changes. Error and cleared
// updates always carry an empty card list.
type Update struct {
	Kind     UpdateKind           `json:"type"`
	Category string               `json:"category"`
	Query    string               `json:"query"`
	ByID     bool                 `json:"byId"`
	Cards    []models.CardSummary `json:"cards"`
	Err      error                `json:"-"`
}

// State is the search form: selected game, typed text and id/name mode
type State struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	ByID     bool   `json:"byId"`
}

// Session is the debounced search behind one admin search form. Any
// change to the form cancels the pending search and starts the quiet
// period again. In-flight requests are not cancelled; if an older
// response arrives late it is still published.
type Session struct {
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	catalog   *Catalog
	searcher  Searcher
	debouncer *Debouncer
	publish   func(Update)
	logger    *slog.Logger

	endpoint Endpoint
	query    string
	byID     bool
}

// NewSession starts a search session on the catalog's default game.
// publish is called from timer goroutines and must be safe for that.
func NewSession(ctx context.Context, catalog *Catalog, searcher Searcher, debounce time.Duration, clock Clock, publish func(Update), logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		ctx:       ctx,
		cancel:    cancel,
		catalog:   catalog,
		searcher:  searcher,
		debouncer: NewDebouncer(debounce, clock),
		publish:   publish,
		logger:    logger,
		endpoint:  catalog.Default(),
	}
}

// State returns the current form values
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{Category: s.endpoint.Name, Query: s.query, ByID: s.byID}
}

// SetQuery changes the typed text
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == s.query {
		return
	}
	s.query = query
	s.rescheduleLocked()
}

// SetByID switches between id and name lookups
func (s *Session) SetByID(byID bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if byID == s.byID {
		return
	}
	s.byID = byID
	s.rescheduleLocked()
}

// SetCategory selects another game. The query is reset, as a new game
// starts a new search.
func (s *Session) SetCategory(name string) error {
	endpoint, err := s.catalog.Lookup(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if endpoint.Name == s.endpoint.Name {
		return nil
	}
	s.endpoint = endpoint
	s.query = ""
	s.rescheduleLocked()
	return nil
}

// Apply sets the whole form at once and reschedules if anything changed.
// An empty category keeps the current one.
func (s *Session) Apply(state State) error {
	endpoint := Endpoint{}
	if state.Category != "" {
		var err error
		if endpoint, err = s.catalog.Lookup(state.Category); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Category == "" {
		endpoint = s.endpoint
	}
	if endpoint.Name == s.endpoint.Name && state.Query == s.query && state.ByID == s.byID {
		return nil
	}
	s.endpoint = endpoint
	s.query = state.Query
	s.byID = state.ByID
	s.rescheduleLocked()
	return nil
}

// Close cancels the pending search and the context of in-flight ones
func (s *Session) Close() {
	s.debouncer.Cancel()
	s.cancel()
}

func (s *Session) rescheduleLocked() {
	s.debouncer.Cancel()

	snapshot := Update{Category: s.endpoint.Name, Query: s.query, ByID: s.byID, Cards: []models.CardSummary{}}

	if s.endpoint.ComingSoon() {
		snapshot.Kind = UpdateComingSoon
		snapshot.Err = ErrComingSoon
		s.publish(snapshot)
		return
	}
	if strings.TrimSpace(s.query) == "" {
		snapshot.Kind = UpdateCleared
		s.publish(snapshot)
		return
	}

	endpoint := s.endpoint
	q := Query{Text: s.query, ByID: s.byID}
	s.debouncer.Schedule(func() {
		s.run(endpoint, q, snapshot)
	})
}

func (s *Session) run(endpoint Endpoint, q Query, update Update) {
	if s.ctx.Err() != nil {
		return
	}

	cards, err := s.searcher.Search(s.ctx, endpoint, q)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn("card search failed", "category", endpoint.Name, "error", err)
		update.Kind = UpdateError
		update.Err = err
		s.publish(update)
		return
	}

	update.Kind = UpdateResults
	update.Cards = cards
	s.publish(update)
}
