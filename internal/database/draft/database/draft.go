package database

import (
	"encoding/json"
	"fmt"

	"github.com/draftden/draftden/internal/database"
	"github.com/draftden/draftden/internal/database/draft/model"
	bolt "go.etcd.io/bbolt"
)

const bucket = "drafts"

func New(sDB *database.DB) (*DB, error) {
	db := &DB{sDB: sDB}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("migrate drafts bucket: %w", err)
	}

	return db, nil
}

type DB struct {
	sDB *database.DB
}

// Fetch loads the draft document by id.
func (db *DB) Fetch(id string) (*model.Draft, error) {
	var draft model.Draft
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		bytes := b.Get([]byte(id))
		if bytes == nil {
			return database.ErrNotFound
		}
		if err := json.Unmarshal(bytes, &draft); err != nil {
			return fmt.Errorf("unmarshal draft: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &draft, nil
}

// Put writes the draft back if nobody else wrote it since it was
// fetched, comparing document versions inside the transaction. On
// success the stored version is bumped and mirrored into draft.
func (db *DB) Put(draft *model.Draft) error {
	return db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		key := []byte(draft.ID)

		if existing := b.Get(key); existing != nil {
			var stored model.Draft
			if err := json.Unmarshal(existing, &stored); err != nil {
				return fmt.Errorf("unmarshal stored draft: %w", err)
			}
			if stored.Version != draft.Version {
				return database.ErrConflict
			}
		} else if draft.Version != 0 {
			return database.ErrConflict
		}

		draft.Version++
		bytes, err := json.Marshal(draft)
		if err != nil {
			draft.Version--
			return fmt.Errorf("marshal draft: %w", err)
		}

		if err := b.Put(key, bytes); err != nil {
			draft.Version--
			return fmt.Errorf("put draft: %w", err)
		}
		return nil
	})
}

// Delete removes the draft document. Missing documents are not an error.
func (db *DB) Delete(id string) error {
	return db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("delete draft: %w", err)
		}
		return nil
	})
}
