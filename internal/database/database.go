package database

import (
	"context"
	"fmt"

	"github.com/draftden/draftden/internal/logging"
	bolt "go.etcd.io/bbolt"
)

var (
	// ErrNotFound is returned when a document does not exist in its bucket
	ErrNotFound = fmt.Errorf("document not found")
	// ErrConflict is returned by Put when the document was modified since
	// it was fetched
	ErrConflict = fmt.Errorf("document version conflict")
)

type Config struct {
	// Path to the bbolt file holding draft, deck and user documents
	FilePath string `envconfig:"DRAFTDEN_DB_FILE_PATH" default:"draftden.db"`
}

type DB struct {
	DB *bolt.DB
}

func NewFromEnv(ctx context.Context, config *Config) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("creating db connection")

	db, err := bolt.Open(config.FilePath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("creating connection DB: %w", err)
	}

	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	logger.Infof("closing DB connection")

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("error close DB connection: %w", err)
	}

	return nil
}
