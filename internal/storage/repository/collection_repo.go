// Package repository implements typed data access over the storage
// database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardbinder/cardbinder/internal/collection"
)

// CollectionRepo persists per-user, per-universe collection documents.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo creates a collection repository.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// Load reconstructs the collection document for one user in one
// universe. A user with no stored rows gets an empty document, not an
// error.
func (r *CollectionRepo) Load(ctx context.Context, userID, universeID string) (collection.State, error) {
	state := collection.NewState()

	rows, err := r.db.QueryContext(ctx,
		`SELECT card_id, quantity, foil_quantity FROM collection_cards
		 WHERE user_id = ? AND universe_id = ?`, userID, universeID)
	if err != nil {
		return state, fmt.Errorf("failed to query collection cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cardID string
		var qty, foilQty int
		if err := rows.Scan(&cardID, &qty, &foilQty); err != nil {
			return state, fmt.Errorf("failed to scan collection card: %w", err)
		}
		if qty > 0 {
			state.Cards[cardID] = qty
		}
		if foilQty > 0 {
			state.FoilCards[cardID] = foilQty
		}
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("failed to iterate collection cards: %w", err)
	}

	deckRows, err := r.db.QueryContext(ctx,
		`SELECT deck_title FROM collected_decks WHERE user_id = ? AND universe_id = ?`,
		userID, universeID)
	if err != nil {
		return state, fmt.Errorf("failed to query collected decks: %w", err)
	}
	defer deckRows.Close()

	for deckRows.Next() {
		var title string
		if err := deckRows.Scan(&title); err != nil {
			return state, fmt.Errorf("failed to scan collected deck: %w", err)
		}
		state.Decks[title] = true
	}
	if err := deckRows.Err(); err != nil {
		return state, fmt.Errorf("failed to iterate collected decks: %w", err)
	}

	customRows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, cards, commander_id, cover_card_id, created_at, updated_at
		 FROM custom_decks WHERE user_id = ? AND universe_id = ?
		 ORDER BY created_at`, userID, universeID)
	if err != nil {
		return state, fmt.Errorf("failed to query custom decks: %w", err)
	}
	defer customRows.Close()

	for customRows.Next() {
		var deck collection.CustomDeck
		var cardsJSON string
		if err := customRows.Scan(&deck.ID, &deck.Name, &deck.Description, &cardsJSON,
			&deck.CommanderID, &deck.CoverCardID, &deck.CreatedAt, &deck.UpdatedAt); err != nil {
			return state, fmt.Errorf("failed to scan custom deck: %w", err)
		}
		if err := json.Unmarshal([]byte(cardsJSON), &deck.Cards); err != nil {
			return state, fmt.Errorf("failed to decode custom deck cards: %w", err)
		}
		state.CustomDecks = append(state.CustomDecks, deck)
	}
	if err := customRows.Err(); err != nil {
		return state, fmt.Errorf("failed to iterate custom decks: %w", err)
	}

	return state, nil
}

// Replace writes a full collection document in one transaction,
// discarding whatever was stored for the user and universe before. The
// debounced writer always hands over complete documents, so replace
// semantics keep the rows and the in-memory state identical.
func (r *CollectionRepo) Replace(ctx context.Context, userID, universeID string, state collection.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM collection_cards WHERE user_id = ? AND universe_id = ?`,
		`DELETE FROM collected_decks WHERE user_id = ? AND universe_id = ?`,
		`DELETE FROM custom_decks WHERE user_id = ? AND universe_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID, universeID); err != nil {
			return fmt.Errorf("failed to clear collection rows: %w", err)
		}
	}

	cardIDs := make(map[string]struct{}, len(state.Cards)+len(state.FoilCards))
	for id := range state.Cards {
		cardIDs[id] = struct{}{}
	}
	for id := range state.FoilCards {
		cardIDs[id] = struct{}{}
	}
	for id := range cardIDs {
		qty := state.Cards[id]
		foilQty := state.FoilCards[id]
		if qty <= 0 && foilQty <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collection_cards (user_id, universe_id, card_id, quantity, foil_quantity)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, universeID, id, qty, foilQty); err != nil {
			return fmt.Errorf("failed to insert collection card: %w", err)
		}
	}

	for title, collected := range state.Decks {
		if !collected {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collected_decks (user_id, universe_id, deck_title) VALUES (?, ?, ?)`,
			userID, universeID, title); err != nil {
			return fmt.Errorf("failed to insert collected deck: %w", err)
		}
	}

	for _, deck := range state.CustomDecks {
		cardsJSON, err := json.Marshal(deck.Cards)
		if err != nil {
			return fmt.Errorf("failed to encode custom deck cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO custom_decks (id, user_id, universe_id, name, description, cards, commander_id, cover_card_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			deck.ID, userID, universeID, deck.Name, deck.Description, string(cardsJSON),
			deck.CommanderID, deck.CoverCardID, deck.CreatedAt.UTC(), deck.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert custom deck: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// BoundPersister adapts the repository to the collection.Persister
// interface for one user and universe.
type BoundPersister struct {
	repo       *CollectionRepo
	userID     string
	universeID string
}

// Bind fixes the user and universe a persister writes for.
func (r *CollectionRepo) Bind(userID, universeID string) *BoundPersister {
	return &BoundPersister{repo: r, userID: userID, universeID: universeID}
}

// SaveCollection implements collection.Persister.
func (p *BoundPersister) SaveCollection(ctx context.Context, state collection.State) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return p.repo.Replace(ctx, p.userID, p.universeID, state)
}
