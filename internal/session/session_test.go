package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/scryfall"
	"github.com/cardbinder/cardbinder/internal/storage"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

type fakeClient struct {
	delay time.Duration
	calls atomic.Int64
}

func (c *fakeClient) SearchAllPrintings(ctx context.Context, setCodes []string) ([]scryfall.Card, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	var cards []scryfall.Card
	for _, code := range setCodes {
		cards = append(cards, scryfall.Card{
			ID:              "id-" + code,
			Name:            "Card " + code,
			SetCode:         code,
			CollectorNumber: "1",
		})
	}
	return cards, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Universes = []config.Universe{
		{ID: "mtg", Name: "Magic", Sets: []config.Set{{Code: "cmm", Name: "Commander Masters"}}},
		{ID: "avatar", Name: "Avatar", Sets: []config.Set{{Code: "tla", Name: "The Last Airbender"}}},
	}
	cfg.Collection.DebounceDelay = "10ms"
	return cfg
}

func testManager(t *testing.T, client CatalogClient) *Manager {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db.DB)
	require.NoError(t, users.Create(context.Background(), repository.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h", CreatedAt: time.Now(),
	}))

	m := NewManager(testConfig(), client, repository.NewCollectionRepo(db.DB), nil)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func TestActivateLoadsUniverse(t *testing.T) {
	m := testManager(t, &fakeClient{})

	s, err := m.Activate(context.Background(), "u1", "mtg")
	require.NoError(t, err)
	assert.Equal(t, "mtg", s.Universe.ID)
	assert.Equal(t, 1, s.Catalog.Len())
	assert.NotEmpty(t, s.Decks(), "fallback decks fill in when no dataset is configured")

	active, err := m.Active("u1")
	require.NoError(t, err)
	assert.Same(t, s, active)
}

// partialClient fails mid-pagination but still returns the pages it
// accumulated, the way the real client does.
type partialClient struct{}

func (partialClient) SearchAllPrintings(_ context.Context, setCodes []string) ([]scryfall.Card, error) {
	return []scryfall.Card{{
		ID:              "id-" + setCodes[0],
		Name:            "Card " + setCodes[0],
		SetCode:         setCodes[0],
		CollectorNumber: "1",
	}}, errors.New("page 2 fetch failed")
}

func TestActivateKeepsPartialCatalog(t *testing.T) {
	m := testManager(t, partialClient{})

	s, err := m.Activate(context.Background(), "u1", "mtg")
	require.NoError(t, err, "a partial fetch degrades, it does not abort activation")
	assert.Equal(t, 1, s.Catalog.Len())

	active, err := m.Active("u1")
	require.NoError(t, err)
	assert.Same(t, s, active)
}

func TestActivateUnknownUniverse(t *testing.T) {
	m := testManager(t, &fakeClient{})
	_, err := m.Activate(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrUnknownUniverse)
}

func TestActivateSwitchReplacesSession(t *testing.T) {
	m := testManager(t, &fakeClient{})
	ctx := context.Background()

	first, err := m.Activate(ctx, "u1", "mtg")
	require.NoError(t, err)
	first.Store.AdjustQuantity("id-cmm", 2, false)

	second, err := m.Activate(ctx, "u1", "avatar")
	require.NoError(t, err)
	assert.Equal(t, "avatar", second.Universe.ID)

	active, err := m.Active("u1")
	require.NoError(t, err)
	assert.Same(t, second, active)

	// The replaced session's pending write was flushed on teardown:
	// re-activating the first universe restores the count.
	third, err := m.Activate(ctx, "u1", "mtg")
	require.NoError(t, err)
	assert.Equal(t, 2, third.Store.Snapshot().Cards["id-cmm"])
}

func TestSlowActivationSuperseded(t *testing.T) {
	client := &fakeClient{delay: 100 * time.Millisecond}
	m := testManager(t, client)
	ctx := context.Background()

	type result struct {
		s   *Session
		err error
	}
	slow := make(chan result, 1)
	go func() {
		s, err := m.Activate(ctx, "u1", "mtg")
		slow <- result{s, err}
	}()

	time.Sleep(10 * time.Millisecond)
	client.delay = 0
	fast, err := m.Activate(ctx, "u1", "avatar")
	require.NoError(t, err)

	got := <-slow
	assert.ErrorIs(t, got.err, ErrSuperseded)

	active, err := m.Active("u1")
	require.NoError(t, err)
	assert.Same(t, fast, active, "the newer activation wins regardless of finish order")
}

func TestDeactivateFlushes(t *testing.T) {
	m := testManager(t, &fakeClient{})
	ctx := context.Background()

	s, err := m.Activate(ctx, "u1", "mtg")
	require.NoError(t, err)
	s.Store.AdjustQuantity("id-cmm", 1, false)

	require.NoError(t, m.Deactivate(ctx, "u1"))
	_, err = m.Active("u1")
	assert.ErrorIs(t, err, ErrNoSession)

	reloaded, err := m.Activate(ctx, "u1", "mtg")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Store.Snapshot().Cards["id-cmm"])

	// Deactivating a user with no session is a no-op
	assert.NoError(t, m.Deactivate(ctx, "u2"))
}

func TestOnSnapshotObservesPersists(t *testing.T) {
	m := testManager(t, &fakeClient{})
	ctx := context.Background()

	snapshots := make(chan collection.State, 1)
	m.OnSnapshot(func(userID string, state collection.State) {
		if userID == "u1" {
			snapshots <- state
		}
	})

	s, err := m.Activate(ctx, "u1", "mtg")
	require.NoError(t, err)
	s.Store.AdjustQuantity("id-cmm", 3, false)

	select {
	case state := <-snapshots:
		assert.Equal(t, 3, state.Cards["id-cmm"])
	case <-time.After(time.Second):
		t.Fatal("no snapshot observed after debounce")
	}
}
