package database

import (
	"encoding/json"
	"fmt"

	"github.com/draftden/draftden/internal/database"
	"github.com/draftden/draftden/internal/database/deck/model"
	bolt "go.etcd.io/bbolt"
)

const bucket = "decks"

func New(sDB *database.DB) (*DB, error) {
	db := &DB{sDB: sDB}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("migrate decks bucket: %w", err)
	}

	return db, nil
}

type DB struct {
	sDB *database.DB
}

// FetchByDraft loads the deck document for a draft.
func (db *DB) FetchByDraft(draftID string) (*model.Deck, error) {
	var deck model.Deck
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		bytes := b.Get([]byte(draftID))
		if bytes == nil {
			return database.ErrNotFound
		}
		if err := json.Unmarshal(bytes, &deck); err != nil {
			return fmt.Errorf("unmarshal deck: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &deck, nil
}

// Put stores the deck under its draft id with the same version check the
// draft store uses.
func (db *DB) Put(deck *model.Deck) error {
	return db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		key := []byte(deck.DraftID)

		if existing := b.Get(key); existing != nil {
			var stored model.Deck
			if err := json.Unmarshal(existing, &stored); err != nil {
				return fmt.Errorf("unmarshal stored deck: %w", err)
			}
			if stored.Version != deck.Version {
				return database.ErrConflict
			}
		} else if deck.Version != 0 {
			return database.ErrConflict
		}

		deck.Version++
		bytes, err := json.Marshal(deck)
		if err != nil {
			deck.Version--
			return fmt.Errorf("marshal deck: %w", err)
		}

		if err := b.Put(key, bytes); err != nil {
			deck.Version--
			return fmt.Errorf("put deck: %w", err)
		}
		return nil
	})
}
