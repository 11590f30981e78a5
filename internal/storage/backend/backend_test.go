package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		url  string
		kind Kind
		dsn  string
	}{
		{"postgres://u:p@localhost:5432/mposter", Postgres, "postgres://u:p@localhost:5432/mposter"},
		{"postgresql://localhost/mposter", Postgres, "postgresql://localhost/mposter"},
		{"mongodb://localhost:27017", Mongo, "mongodb://localhost:27017"},
		{"mongodb+srv://cluster.example.net/?retryWrites=true", Mongo, "mongodb+srv://cluster.example.net/?retryWrites=true"},
		{"sqlite://mposter.db", SQLite, "mposter.db"},
		{"sqlite://:memory:", SQLite, ":memory:"},
		{"file:mposter.db?cache=shared", SQLite, "file:mposter.db?cache=shared"},
	}
	for _, tc := range cases {
		kind, dsn, err := Detect(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.kind, kind, tc.url)
		assert.Equal(t, tc.dsn, dsn, tc.url)
	}
}

func TestDetectRejectsUnknownScheme(t *testing.T) {
	_, _, err := Detect("mysql://localhost/db")
	assert.Error(t, err)
}

func TestOpenSQLiteMemory(t *testing.T) {
	store, kind, err := Open(context.Background(), "sqlite://:memory:", "")
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, SQLite, kind)

	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
