package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/xraph/hookq/store"
)

// defaultCollection is the collection holding hook documents when no
// collectionName is configured.
const defaultCollection = "hooks"

// Ensure Store implements the composite contract at compile time.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of store.Store. The caller owns the
// *mongo.Database lifecycle; Store never disconnects the client.
type Store struct {
	db     *mongod.Database
	col    string
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithCollection sets the collection name holding hook documents.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.col = name
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a MongoDB store on the given database. The caller owns the
// database/client lifecycle — the Store will not close it on Close().
func New(db *mongod.Database, opts ...Option) *Store {
	s := &Store{
		db:     db,
		col:    defaultCollection,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// collection returns the hook collection handle.
func (s *Store) collection() *mongod.Collection {
	return s.db.Collection(s.col)
}

// Migrate creates the indexes claiming depends on: a status index for
// the backpressure count and a compound (status, run_after, attempts)
// index for the claim query.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongod.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "run_after", Value: 1},
			{Key: "attempts", Value: 1},
		}},
	}

	_, err := s.collection().Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("hookq/mongo: migrate %s indexes: %w", s.col, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op because the caller owns the client lifecycle.
func (s *Store) Close() error {
	return nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments returns true when err indicates no documents found.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// isDuplicateKey checks if a MongoDB error is a duplicate key violation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "E11000")
}
