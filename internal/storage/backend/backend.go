// Package backend picks a storage implementation from the DATABASE_URL scheme.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/mposter-be/internal/storage"
	"github.com/hongminglow/mposter-be/internal/storage/mongo"
	"github.com/hongminglow/mposter-be/internal/storage/postgres"
	"github.com/hongminglow/mposter-be/internal/storage/sqlite"
)

// Kind names a storage backend.
type Kind string

const (
	Postgres Kind = "postgres"
	Mongo    Kind = "mongo"
	SQLite   Kind = "sqlite"
)

// Detect returns the backend for databaseURL and the DSN to hand it.
func Detect(databaseURL string) (Kind, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		return Mongo, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return SQLite, strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return SQLite, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
}

// Open connects to the backend named by databaseURL. mongoDatabase is only
// used for MongoDB URLs.
func Open(ctx context.Context, databaseURL, mongoDatabase string) (storage.Store, Kind, error) {
	kind, dsn, err := Detect(databaseURL)
	if err != nil {
		return nil, "", err
	}
	var store storage.Store
	switch kind {
	case Postgres:
		store, err = postgres.NewStore(ctx, dsn)
	case Mongo:
		store, err = mongo.NewStore(ctx, dsn, mongoDatabase)
	case SQLite:
		store, err = sqlite.Open(dsn)
	}
	if err != nil {
		return nil, "", err
	}
	return store, kind, nil
}
