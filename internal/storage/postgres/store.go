package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const (
	userColumns   = `id, name, email, mobile, party_ref, role, profile_image_ref, password_hash, created_at, updated_at`
	partyColumns  = `id, pid, party_logo_url, title, description, party_color, created_at, updated_at`
	bannerColumns = `id, banner_code, user_id, title, description, created_at, updated_at`
)

// Store provides Postgres-backed persistence for users, parties and banners.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			email VARCHAR(150) NOT NULL,
			mobile VARCHAR(15) NOT NULL,
			party_ref BIGINT,
			role TEXT NOT NULL DEFAULT 'user',
			profile_image_ref TEXT,
			password_hash VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (email);`,
		`CREATE TABLE IF NOT EXISTS parties (
			id TEXT PRIMARY KEY,
			pid BIGINT NOT NULL,
			party_logo_url TEXT NOT NULL DEFAULT '',
			title VARCHAR(150) NOT NULL DEFAULT '',
			description VARCHAR(600) NOT NULL DEFAULT '',
			party_color VARCHAR(10) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS parties_pid_unique_idx ON parties (pid);`,
		`CREATE TABLE IF NOT EXISTS banners (
			id TEXT PRIMARY KEY,
			banner_code BIGINT,
			user_id BIGINT,
			title VARCHAR(150) NOT NULL DEFAULT '',
			description VARCHAR(400) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS banners_user_id_idx ON banners (user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (id, name, email, mobile, party_ref, role, profile_image_ref, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), user.Name, user.Email, user.Mobile,
		storage.Nullable(user.PartyRef), user.Role, storage.Nullable(user.ProfileImageRef), user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, mapWriteErr(err)
	}
	return created, nil
}

// FindByID fetches a user by identifier.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByEmail fetches a user by exact email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateUser writes only the columns present in patch and bumps updated_at.
func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	query, args := updateQuery("users", userColumns, id, storage.UserAssignments(patch))
	updated, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return models.User{}, mapWriteErr(err)
	}
	return updated, nil
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

// CreateParty inserts a party; a duplicate pid is reported as ErrAlreadyExists.
func (s *Store) CreateParty(ctx context.Context, party models.Party) (models.Party, error) {
	query := `
		INSERT INTO parties (id, pid, party_logo_url, title, description, party_color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + partyColumns
	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), party.PID, party.PartyLogoURL, party.Title, party.Description, party.PartyColor)
	created, err := scanParty(row)
	if err != nil {
		return models.Party{}, mapWriteErr(err)
	}
	return created, nil
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+partyColumns+` FROM parties ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanParty)
}

func (s *Store) FindParty(ctx context.Context, id string) (models.Party, error) {
	return scanParty(s.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id))
}

func (s *Store) UpdateParty(ctx context.Context, id string, patch models.PartyPatch) (models.Party, error) {
	query, args := updateQuery("parties", partyColumns, id, storage.PartyAssignments(patch))
	updated, err := scanParty(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Party{}, mapWriteErr(err)
	}
	return updated, nil
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	query := `
		INSERT INTO banners (id, banner_code, user_id, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + bannerColumns
	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), storage.Nullable(banner.BannerCode), storage.Nullable(banner.UserID), banner.Title, banner.Description)
	created, err := scanBanner(row)
	if err != nil {
		return models.Banner{}, mapWriteErr(err)
	}
	return created, nil
}

func (s *Store) ListBanners(ctx context.Context) ([]models.Banner, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bannerColumns+` FROM banners ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBanner)
}

func (s *Store) FindBanner(ctx context.Context, id string) (models.Banner, error) {
	return scanBanner(s.pool.QueryRow(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id))
}

func (s *Store) ListBannersByUser(ctx context.Context, userID int64) ([]models.Banner, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bannerColumns+` FROM banners WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBanner)
}

func (s *Store) UpdateBanner(ctx context.Context, id string, patch models.BannerPatch) (models.Banner, error) {
	query, args := updateQuery("banners", bannerColumns, id, storage.BannerAssignments(patch))
	return scanBanner(s.pool.QueryRow(ctx, query, args...))
}

// updateQuery renders an UPDATE ... RETURNING statement with $n placeholders.
// updated_at is always bumped, so an empty patch still touches the row.
func updateQuery(table, columns, id string, sets []storage.Assignment) (string, []any) {
	clauses := make([]string, 0, len(sets)+1)
	args := make([]any, 0, len(sets)+1)
	for i, a := range sets {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", a.Column, i+1))
		args = append(args, a.Value)
	}
	clauses = append(clauses, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		table, strings.Join(clauses, ", "), len(args), columns)
	return query, args
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Mobile, &user.PartyRef, &user.Role,
		&user.ProfileImageRef, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanParty(row pgx.Row) (models.Party, error) {
	var p models.Party
	if err := row.Scan(&p.ID, &p.PID, &p.PartyLogoURL, &p.Title, &p.Description, &p.PartyColor,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Party{}, storage.ErrNotFound
		}
		return models.Party{}, err
	}
	return p, nil
}

func scanBanner(row pgx.Row) (models.Banner, error) {
	var b models.Banner
	if err := row.Scan(&b.ID, &b.BannerCode, &b.UserID, &b.Title, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Banner{}, storage.ErrNotFound
		}
		return models.Banner{}, err
	}
	return b, nil
}
