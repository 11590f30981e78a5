// Package account implements registration, login and profile maintenance on
// top of a storage.UserStore.
package account

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/logger"
	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/dto"
	"github.com/hongminglow/mposter-be/internal/models/optional"
	"github.com/hongminglow/mposter-be/internal/storage"
	"github.com/hongminglow/mposter-be/internal/validation"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // bcrypt ignores anything longer
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// ProfileCache is an optional cache for Profile lookups. Fill must not replace
// an existing entry; Put always does.
type ProfileCache interface {
	Get(ctx context.Context, id string) (models.Profile, bool, error)
	Fill(ctx context.Context, p models.Profile) (bool, error)
	Put(ctx context.Context, p models.Profile) error
	Invalidate(ctx context.Context, id string) error
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token   string
	Profile models.Profile
}

// Service owns the account lifecycle.
type Service struct {
	users  storage.UserStore
	hasher auth.PasswordHasher
	tokens TokenIssuer
	cache  ProfileCache
}

// Option customises a Service.
type Option func(*Service)

// WithProfileCache enables profile caching.
func WithProfileCache(c ProfileCache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService wires the store, hasher and token issuer together.
func NewService(users storage.UserStore, hasher auth.PasswordHasher, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{users: users, hasher: hasher, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates req, hashes the password and stores a new user. Role
// defaults to "user".
func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	if err := checkPassword(req.Password); err != nil {
		return models.User{}, err
	}
	if err := validation.Struct(req); err != nil {
		return models.User{}, err
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return models.User{}, ErrEmailInUse
	case !errors.Is(err, storage.ErrNotFound):
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	created, err := s.users.CreateUser(ctx, models.User{
		Name:            req.Name,
		Email:           req.Email,
		Mobile:          req.Mobile,
		PartyRef:        req.PartyRef,
		Role:            role,
		ProfileImageRef: emptyToNil(req.ProfileImageRef),
		PasswordHash:    hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, ErrEmailInUse
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user by email: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate token: %w", err)
	}
	return LoginResult{Token: token, Profile: user.Profile()}, nil
}

// Profile returns the public projection of the user with id.
func (s *Service) Profile(ctx context.Context, id string) (models.Profile, error) {
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warningf("profile cache get %s: %v", id, err)
		} else if ok {
			return p, nil
		}
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}
	p := user.Profile()
	if s.cache != nil {
		// an Update that lands after our read has already put the newer profile
		if _, err := s.cache.Fill(ctx, p); err != nil {
			logger.Warningf("profile cache fill %s: %v", id, err)
		}
	}
	return p, nil
}

// List returns every stored user.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update merges the present fields of req into the user with id. A new
// password goes through the same hasher as registration, and a new email must
// be well formed and unused.
func (s *Service) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (models.User, error) {
	if _, err := s.find(ctx, id); err != nil {
		return models.User{}, err
	}

	patch, err := s.buildPatch(req)
	if err != nil {
		return models.User{}, err
	}
	if patch.Email != nil {
		owner, err := s.users.FindByEmail(ctx, *patch.Email)
		switch {
		case err == nil && owner.ID != id:
			return models.User{}, ErrEmailInUse
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return models.User{}, fmt.Errorf("find user by email: %w", err)
		}
	}

	updated, err := s.users.UpdateUser(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return models.User{}, ErrUserNotFound
		case errors.Is(err, storage.ErrAlreadyExists):
			return models.User{}, ErrEmailInUse
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}

	s.refreshCache(ctx, updated.Profile())
	return updated, nil
}

// refreshCache writes p through to the cache. If that fails the entry is
// dropped instead so reads fall back to the store.
func (s *Service) refreshCache(ctx context.Context, p models.Profile) {
	if s.cache == nil {
		return
	}
	err := s.cache.Put(ctx, p)
	if err == nil {
		return
	}
	logger.Warningf("profile cache put %s: %v", p.ID, err)
	if err := s.cache.Invalidate(ctx, p.ID); err != nil {
		logger.Warningf("profile cache invalidate %s: %v", p.ID, err)
	}
}

func (s *Service) find(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return user, nil
}

// buildPatch validates every present field. Required fields cannot be
// cleared; partyRef and profileImageRef can.
func (s *Service) buildPatch(req dto.UpdateUserRequest) (models.UserPatch, error) {
	var patch models.UserPatch

	checks := []struct {
		field string
		in    optional.Field[string]
		tag   string
		dst   **string
	}{
		{"name", req.Name, "required,max=200", &patch.Name},
		{"email", req.Email, "required,max=150,email_address", &patch.Email},
		{"mobile", req.Mobile, "required,mobile", &patch.Mobile},
		{"role", req.Role, "required,oneof=user admin", &patch.Role},
	}
	for _, c := range checks {
		if !c.in.Set {
			continue
		}
		if err := validation.Var(c.field, c.in.Value, c.tag); err != nil {
			return models.UserPatch{}, err
		}
		v := c.in.Value
		*c.dst = &v
	}

	if req.Password.Set {
		if err := checkPassword(req.Password.Value); err != nil {
			return models.UserPatch{}, err
		}
		hash, err := s.hasher.Hash(req.Password.Value)
		if err != nil {
			return models.UserPatch{}, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	patch.PartyRef = req.PartyRef
	if req.ProfileImageRef.Set {
		if req.ProfileImageRef.Null || req.ProfileImageRef.Value == "" {
			patch.ProfileImageRef = optional.Null[string]()
		} else {
			if err := validation.Var("profileImageRef", req.ProfileImageRef.Value, "max=2048"); err != nil {
				return models.UserPatch{}, err
			}
			patch.ProfileImageRef = req.ProfileImageRef
		}
	}
	return patch, nil
}

func checkPassword(pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return validation.New("password", fmt.Sprintf("password must be at least %d characters long", minPasswordLen))
	}
	if len(pw) > maxPasswordBytes {
		return validation.New("password", fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
