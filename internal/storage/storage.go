package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/mposter-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures the credential persistence the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// PartyStore persists the party reference list.
type PartyStore interface {
	CreateParty(ctx context.Context, party models.Party) (models.Party, error)
	ListParties(ctx context.Context) ([]models.Party, error)
	FindParty(ctx context.Context, id string) (models.Party, error)
	UpdateParty(ctx context.Context, id string, patch models.PartyPatch) (models.Party, error)
	DeleteParty(ctx context.Context, id string) error
}

// BannerStore persists user banners.
type BannerStore interface {
	CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error)
	ListBanners(ctx context.Context) ([]models.Banner, error)
	FindBanner(ctx context.Context, id string) (models.Banner, error)
	ListBannersByUser(ctx context.Context, userID int64) ([]models.Banner, error)
	UpdateBanner(ctx context.Context, id string, patch models.BannerPatch) (models.Banner, error)
}

// Store is a complete backend, able to release its connections.
type Store interface {
	UserStore
	PartyStore
	BannerStore
	Close() error
}
