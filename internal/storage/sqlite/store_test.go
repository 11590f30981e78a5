package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/storage"
	"github.com/hongminglow/mposter-be/internal/storage/storagetest"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := Open(":memory:")
		require.NoError(t, err)
		return s
	})
}

func TestOpenIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/mposter.db"

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{":memory:", ":memory:"},
		{"mposter.db", "mposter.db?_pragma=busy_timeout(5000)"},
		{"file:mposter.db?cache=shared", "file:mposter.db?cache=shared&_pragma=busy_timeout(5000)"},
		{"file:mposter.db?_pragma=busy_timeout(100)", "file:mposter.db?_pragma=busy_timeout(100)"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, withPragmas(tt.dsn))
		})
	}
}

func TestConcurrentWritesOnFileDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "mposter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	const writers = 32
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		email := fmt.Sprintf("user%d@x.com", i)
		if i%2 == 0 {
			email = "same@x.com"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, models.User{
				Name:         "User",
				Email:        email,
				Mobile:       "9876543210",
				Role:         models.RoleUser,
				PasswordHash: "hash",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	}
	assert.Equal(t, writers/2+1, created)
}
