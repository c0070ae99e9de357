// Package session composes a user's active browsing context: the loaded
// card universe, its predefined decks, and the user's collection store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/decks"
	"github.com/cardbinder/cardbinder/internal/scryfall"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

var (
	// ErrSuperseded means a newer activation for the same user started
	// while this one was loading, and its result was discarded.
	ErrSuperseded = errors.New("activation superseded")

	// ErrNoSession means the user has no active universe.
	ErrNoSession = errors.New("no active session")

	// ErrUnknownUniverse means the requested universe is not configured.
	ErrUnknownUniverse = errors.New("unknown universe")
)

// Session is one user's live view of one universe.
type Session struct {
	UserID   string
	Universe config.Universe
	Catalog  *catalog.Index
	Store    *collection.Store

	mu      sync.RWMutex
	decks   []decks.Deck
	watcher *decks.Watcher
	cancel  context.CancelFunc
}

// Decks returns the current predefined deck list.
func (s *Session) Decks() []decks.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decks
}

func (s *Session) setDecks(d []decks.Deck) {
	s.mu.Lock()
	s.decks = d
	s.mu.Unlock()
}

// CatalogClient fetches the printings for a universe's sets.
type CatalogClient interface {
	SearchAllPrintings(ctx context.Context, setCodes []string) ([]scryfall.Card, error)
}

// Manager activates and tears down sessions. Each user holds at most
// one; switching universes replaces it. A generation counter per user
// guards against a slow stale load landing after a newer activation.
type Manager struct {
	cfg    *config.Config
	client CatalogClient
	repo   *repository.CollectionRepo
	logger *slog.Logger

	// onSnapshot, when set, observes each persisted collection state.
	onSnapshot func(userID string, state collection.State)

	mu          sync.Mutex
	sessions    map[string]*Session
	generations map[string]uint64
}

// NewManager creates a session manager.
func NewManager(cfg *config.Config, client CatalogClient, repo *repository.CollectionRepo, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:         cfg,
		client:      client,
		repo:        repo,
		logger:      logger,
		sessions:    make(map[string]*Session),
		generations: make(map[string]uint64),
	}
}

// OnSnapshot registers a callback invoked after each successful
// collection persist, with the user and the written state.
func (m *Manager) OnSnapshot(fn func(userID string, state collection.State)) {
	m.mu.Lock()
	m.onSnapshot = fn
	m.mu.Unlock()
}

// Active returns the user's current session.
func (m *Manager) Active(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	return nil, ErrNoSession
}

// Activate loads a universe for a user and installs it as the active
// session. The catalog fetch and deck hydration run concurrently; if
// another Activate for the same user begins before this one finishes,
// this one's result is dropped and ErrSuperseded returned.
func (m *Manager) Activate(ctx context.Context, userID, universeID string) (*Session, error) {
	universe, ok := m.cfg.FindUniverse(universeID)
	if !ok {
		return nil, ErrUnknownUniverse
	}

	m.mu.Lock()
	m.generations[userID]++
	gen := m.generations[userID]
	m.mu.Unlock()

	loader := decks.NewLoader(universe.DeckDataset, nil, m.logger)

	var (
		wg       sync.WaitGroup
		cards    []scryfall.Card
		cardsErr error
		deckList []decks.Deck
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cards, cardsErr = m.client.SearchAllPrintings(ctx, universe.SetCodes())
	}()
	go func() {
		defer wg.Done()
		deckList = loader.Load(ctx)
	}()
	wg.Wait()

	// A mid-stream fetch failure still yields the pages accumulated so
	// far; the session proceeds with the partial catalog.
	if cardsErr != nil {
		m.logger.Warn("universe loaded with partial catalog",
			"universe", universeID,
			"cards", len(cards),
			"error", cardsErr)
	}

	state, err := m.repo.Load(ctx, userID, universeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	delay, err := m.cfg.GetDebounceDelay()
	if err != nil {
		return nil, fmt.Errorf("invalid debounce delay: %w", err)
	}

	store := collection.NewStore(state, m.repo.Bind(userID, universeID), delay, m.logger)
	store.OnSaved(func(st collection.State) {
		m.mu.Lock()
		notify := m.onSnapshot
		m.mu.Unlock()
		if notify != nil {
			notify(userID, st)
		}
	})

	session := &Session{
		UserID:   userID,
		Universe: *universe,
		Catalog:  catalog.NewIndex(catalog.Normalize(cards)),
		Store:    store,
	}
	session.setDecks(deckList)

	m.mu.Lock()
	if m.generations[userID] != gen {
		m.mu.Unlock()
		return nil, ErrSuperseded
	}
	prev := m.sessions[userID]
	m.sessions[userID] = session
	m.mu.Unlock()

	if prev != nil {
		m.teardown(ctx, prev)
	}

	if universe.WatchDecks && universe.DeckDataset != "" {
		m.startWatcher(session, loader)
	}

	m.logger.Info("session activated",
		"user", userID,
		"universe", universeID,
		"cards", session.Catalog.Len(),
		"decks", len(deckList))
	return session, nil
}

// Deactivate flushes and removes the user's session. Missing sessions
// are not an error.
func (m *Manager) Deactivate(ctx context.Context, userID string) error {
	m.mu.Lock()
	session, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
		m.generations[userID]++
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.teardown(ctx, session)
}

// Close tears down every active session, flushing pending writes.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for _, s := range all {
		if err := m.teardown(ctx, s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) teardown(ctx context.Context, s *Session) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	if err := s.Store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close collection store: %w", err)
	}
	return nil
}

func (m *Manager) startWatcher(s *Session, loader *decks.Loader) {
	watcher := decks.NewWatcher(loader, s.setDecks, m.logger)
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.watcher = watcher
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("deck watcher stopped", "error", err)
		}
	}()
}
