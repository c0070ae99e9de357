package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDeckNotFound is returned when a custom deck ID has no match.
var ErrDeckNotFound = errors.New("custom deck not found")

// Persister writes the full collection document for one user and
// universe, replacing whatever was stored before.
type Persister interface {
	SaveCollection(ctx context.Context, state State) error
}

// Store holds the in-memory collection and schedules debounced writes.
// Every mutation replaces the dirty snapshot and resets a single timer;
// only the last state within a burst reaches the Persister.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	delay     time.Duration
	timer     *time.Timer
	dirty     bool
	closed    bool
	logger    *slog.Logger

	// onSaved, when set, observes each successful persist with the
	// state that was written.
	onSaved func(State)

	now func() time.Time
}

// NewStore wraps an initial document with a debounced persister. A nil
// persister disables writes (useful for read-only sessions).
func NewStore(initial State, persister Persister, delay time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if initial.Cards == nil {
		initial.Cards = make(map[string]int)
	}
	if initial.FoilCards == nil {
		initial.FoilCards = make(map[string]int)
	}
	if initial.Decks == nil {
		initial.Decks = make(map[string]bool)
	}
	return &Store{
		state:     initial,
		persister: persister,
		delay:     delay,
		logger:    logger,
		now:       time.Now,
	}
}

// OnSaved registers a callback invoked after each successful persist.
func (s *Store) OnSaved(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSaved = fn
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AdjustQuantity applies a delta to one finish of one card, clamping at
// zero and dropping the key when the count reaches zero. It returns the
// resulting count.
func (s *Store) AdjustQuantity(cardID string, delta int, foil bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.state.Cards
	if foil {
		target = s.state.FoilCards
	}

	next := target[cardID] + delta
	if next <= 0 {
		delete(target, cardID)
		next = 0
	} else {
		target[cardID] = next
	}

	s.scheduleLocked()
	return next
}

// SetQuantity sets one finish of one card to an absolute count, with the
// same clamp-and-drop behavior as AdjustQuantity.
func (s *Store) SetQuantity(cardID string, qty int, foil bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.state.Cards
	if foil {
		target = s.state.FoilCards
	}
	if qty <= 0 {
		delete(target, cardID)
		qty = 0
	} else {
		target[cardID] = qty
	}

	s.scheduleLocked()
	return qty
}

// ImportItem is a resolved addition from a decklist import.
type ImportItem struct {
	CardID string
	Qty    int
	Foil   bool
}

// Import adds quantities on top of existing counts. Imports never
// overwrite: two imports of the same list double the counts.
func (s *Store) Import(items []ImportItem) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		if item.Foil {
			s.state.FoilCards[item.CardID] += item.Qty
		} else {
			s.state.Cards[item.CardID] += item.Qty
		}
	}
	s.scheduleLocked()
}

// ToggleDeckCollected flips a curated deck's collected flag and returns
// the new value.
func (s *Store) ToggleDeckCollected(deckTitle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := !s.state.Decks[deckTitle]
	if next {
		s.state.Decks[deckTitle] = true
	} else {
		delete(s.state.Decks, deckTitle)
	}
	s.scheduleLocked()
	return next
}

// SaveCustomDeck inserts a new deck (assigning ID and timestamps) or
// updates an existing one in place, refreshing only UpdatedAt. An update
// naming an unknown ID returns ErrDeckNotFound rather than creating a
// deck the caller never asked for.
func (s *Store) SaveCustomDeck(deck CustomDeck) (CustomDeck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deck.Cards == nil {
		deck.Cards = make(map[string]int)
	}

	if deck.ID != "" {
		for i := range s.state.CustomDecks {
			if s.state.CustomDecks[i].ID == deck.ID {
				deck.CreatedAt = s.state.CustomDecks[i].CreatedAt
				deck.UpdatedAt = s.now()
				s.state.CustomDecks[i] = deck
				s.scheduleLocked()
				return deck, nil
			}
		}
		return CustomDeck{}, ErrDeckNotFound
	}

	deck.ID = uuid.NewString()
	deck.CreatedAt = s.now()
	deck.UpdatedAt = deck.CreatedAt
	s.state.CustomDecks = append(s.state.CustomDecks, deck)
	s.scheduleLocked()
	return deck, nil
}

// DeleteCustomDeck removes a deck by ID.
func (s *Store) DeleteCustomDeck(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.CustomDecks {
		if s.state.CustomDecks[i].ID == id {
			s.state.CustomDecks = append(s.state.CustomDecks[:i], s.state.CustomDecks[i+1:]...)
			s.scheduleLocked()
			return nil
		}
	}
	return ErrDeckNotFound
}

// Replace swaps in an authoritative document, discarding any pending
// write. Used when the storage layer pushes a fresher snapshot.
func (s *Store) Replace(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = false
	if state.Cards == nil {
		state.Cards = make(map[string]int)
	}
	if state.FoilCards == nil {
		state.FoilCards = make(map[string]int)
	}
	if state.Decks == nil {
		state.Decks = make(map[string]bool)
	}
	s.state = state
}

// Flush persists any pending changes immediately.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty || s.persister == nil {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	snapshot := s.state.Clone()
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// Close flushes pending changes and stops the store. Later mutations
// still apply in memory but are never persisted.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

// scheduleLocked marks the document dirty and (re)arms the debounce
// timer. Callers must hold s.mu.
func (s *Store) scheduleLocked() {
	if s.persister == nil || s.closed {
		return
	}
	s.dirty = true
	if s.timer != nil {
		s.timer.Reset(s.delay)
		return
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// fire runs on the timer goroutine when the debounce window elapses.
func (s *Store) fire() {
	s.mu.Lock()
	s.timer = nil
	if !s.dirty || s.closed {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.persist(context.Background(), snapshot); err != nil {
		s.logger.Error("collection persist failed", "error", err)
	}
}

func (s *Store) persist(ctx context.Context, snapshot State) error {
	if err := s.persister.SaveCollection(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}

	s.mu.Lock()
	saved := s.onSaved
	s.mu.Unlock()
	if saved != nil {
		saved(snapshot)
	}
	return nil
}
