// Package storagetest holds the behaviour every storage.Store backend must
// share. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/optional"
	"github.com/hongminglow/mposter-be/internal/storage"
)

// MissingID parses as an identifier in every backend but never matches a record.
const MissingID = "000000000000000000000000"

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

// Run exercises users, parties and banners against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { runUsers(t, newStore) })
	t.Run("parties", func(t *testing.T) { runParties(t, newStore) })
	t.Run("banners", func(t *testing.T) { runBanners(t, newStore) })
}

func open(t *testing.T, newStore Factory) storage.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleUser(email string) models.User {
	return models.User{
		Name:         "Ann",
		Email:        email,
		Mobile:       "9876543210",
		Role:         models.RoleUser,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuJ0m7n1e2Z5b7cYcN7d9x3r4f6G8hKQe",
	}
}

func ptr[T any](v T) *T { return &v }

func runUsers(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		s := open(t, newStore)
		created, err := s.CreateUser(ctx, sampleUser("ann@x.com"))
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "ann@x.com", created.Email)
		assert.Nil(t, created.PartyRef)
		assert.Nil(t, created.ProfileImageRef)
		assert.False(t, created.CreatedAt.IsZero())
		assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

		byID, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, byID.Email)
		assert.Equal(t, created.PasswordHash, byID.PasswordHash)

		byEmail, err := s.FindByEmail(ctx, "ann@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("optional fields round trip", func(t *testing.T) {
		s := open(t, newStore)
		u := sampleUser("opt@x.com")
		u.PartyRef = ptr(int64(3))
		u.ProfileImageRef = ptr("https://cdn.example.com/p.png")
		created, err := s.CreateUser(ctx, u)
		require.NoError(t, err)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.PartyRef)
		assert.Equal(t, int64(3), *got.PartyRef)
		require.NotNil(t, got.ProfileImageRef)
		assert.Equal(t, "https://cdn.example.com/p.png", *got.ProfileImageRef)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		s := open(t, newStore)
		first, err := s.CreateUser(ctx, sampleUser("dup@x.com"))
		require.NoError(t, err)

		second := sampleUser("dup@x.com")
		second.Name = "Other"
		_, err = s.CreateUser(ctx, second)
		assert.True(t, errors.Is(err, storage.ErrAlreadyExists), "got %v", err)

		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, first.ID, users[0].ID)
		assert.Equal(t, "Ann", users[0].Name)
	})

	t.Run("email match is exact", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.CreateUser(ctx, sampleUser("case@x.com"))
		require.NoError(t, err)

		_, err = s.FindByEmail(ctx, "CASE@x.com")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("missing user", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.FindByID(ctx, MissingID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		_, err = s.FindByID(ctx, "not-an-id")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		_, err = s.FindByEmail(ctx, "nobody@x.com")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		_, err = s.UpdateUser(ctx, MissingID, models.UserPatch{Name: ptr("x")})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("update writes only present fields", func(t *testing.T) {
		s := open(t, newStore)
		u := sampleUser("patch@x.com")
		u.PartyRef = ptr(int64(9))
		created, err := s.CreateUser(ctx, u)
		require.NoError(t, err)

		updated, err := s.UpdateUser(ctx, created.ID, models.UserPatch{Mobile: ptr("9999999999")})
		require.NoError(t, err)
		assert.Equal(t, "9999999999", updated.Mobile)
		assert.Equal(t, created.Name, updated.Name)
		assert.Equal(t, created.Email, updated.Email)
		assert.Equal(t, created.Role, updated.Role)
		assert.Equal(t, created.PasswordHash, updated.PasswordHash)
		require.NotNil(t, updated.PartyRef)
		assert.Equal(t, int64(9), *updated.PartyRef)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("update clears nullable fields", func(t *testing.T) {
		s := open(t, newStore)
		u := sampleUser("clear@x.com")
		u.PartyRef = ptr(int64(2))
		u.ProfileImageRef = ptr("https://cdn.example.com/c.png")
		created, err := s.CreateUser(ctx, u)
		require.NoError(t, err)

		updated, err := s.UpdateUser(ctx, created.ID, models.UserPatch{
			PartyRef:        optional.Null[int64](),
			ProfileImageRef: optional.Null[string](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.PartyRef)
		assert.Nil(t, updated.ProfileImageRef)

		reread, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, reread.PartyRef)
		assert.Nil(t, reread.ProfileImageRef)
	})

	t.Run("empty update keeps the record", func(t *testing.T) {
		s := open(t, newStore)
		created, err := s.CreateUser(ctx, sampleUser("same@x.com"))
		require.NoError(t, err)

		updated, err := s.UpdateUser(ctx, created.ID, models.UserPatch{})
		require.NoError(t, err)
		assert.Equal(t, created.Profile(), updated.Profile())
		assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	})

	t.Run("update to a taken email is rejected", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.CreateUser(ctx, sampleUser("taken@x.com"))
		require.NoError(t, err)
		other, err := s.CreateUser(ctx, sampleUser("other@x.com"))
		require.NoError(t, err)

		_, err = s.UpdateUser(ctx, other.ID, models.UserPatch{Email: ptr("taken@x.com")})
		assert.True(t, errors.Is(err, storage.ErrAlreadyExists), "got %v", err)

		reread, err := s.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "other@x.com", reread.Email)
	})
}

func runParties(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("crud", func(t *testing.T) {
		s := open(t, newStore)
		created, err := s.CreateParty(ctx, models.Party{PID: 1, Title: "Green", PartyColor: "#00ff00"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		got, err := s.FindParty(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green", got.Title)

		updated, err := s.UpdateParty(ctx, created.ID, models.PartyPatch{Description: optional.Of("for trees")})
		require.NoError(t, err)
		assert.Equal(t, "Green", updated.Title)
		assert.Equal(t, "for trees", updated.Description)
		assert.Equal(t, int64(1), updated.PID)

		list, err := s.ListParties(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, s.DeleteParty(ctx, created.ID))
		_, err = s.FindParty(ctx, created.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteParty(ctx, created.ID), storage.ErrNotFound))
	})

	t.Run("duplicate pid", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.CreateParty(ctx, models.Party{PID: 5})
		require.NoError(t, err)
		_, err = s.CreateParty(ctx, models.Party{PID: 5})
		assert.True(t, errors.Is(err, storage.ErrAlreadyExists), "got %v", err)
	})

	t.Run("missing party", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.FindParty(ctx, MissingID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		_, err = s.UpdateParty(ctx, MissingID, models.PartyPatch{Title: optional.Of("x")})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func runBanners(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("crud and by user", func(t *testing.T) {
		s := open(t, newStore)
		a, err := s.CreateBanner(ctx, models.Banner{UserID: ptr(int64(1)), BannerCode: ptr(int64(100)), Title: "Rally"})
		require.NoError(t, err)
		_, err = s.CreateBanner(ctx, models.Banner{UserID: ptr(int64(2)), Title: "March"})
		require.NoError(t, err)

		all, err := s.ListBanners(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		mine, err := s.ListBannersByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, a.ID, mine[0].ID)

		none, err := s.ListBannersByUser(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, none)

		updated, err := s.UpdateBanner(ctx, a.ID, models.BannerPatch{Title: optional.Of("Rally 2"), BannerCode: optional.Null[int64]()})
		require.NoError(t, err)
		assert.Equal(t, "Rally 2", updated.Title)
		assert.Nil(t, updated.BannerCode)
		require.NotNil(t, updated.UserID)
		assert.Equal(t, int64(1), *updated.UserID)

		got, err := s.FindBanner(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rally 2", got.Title)
	})

	t.Run("missing banner", func(t *testing.T) {
		s := open(t, newStore)
		_, err := s.FindBanner(ctx, MissingID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		_, err = s.UpdateBanner(ctx, MissingID, models.BannerPatch{})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}
