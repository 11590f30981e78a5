// Package sqlite is the embedded storage backend, used for local runs and as
// the hermetic store in tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	userColumns   = `id, name, email, mobile, party_ref, role, profile_image_ref, password_hash, created_at, updated_at`
	partyColumns  = `id, pid, party_logo_url, title, description, party_color, created_at, updated_at`
	bannerColumns = `id, banner_code, user_id, title, description, created_at, updated_at`
)

const schema = `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  mobile TEXT NOT NULL,
  party_ref INTEGER,
  role TEXT NOT NULL DEFAULT 'user',
  profile_image_ref TEXT,
  password_hash TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS parties(
  id TEXT PRIMARY KEY,
  pid INTEGER NOT NULL,
  party_logo_url TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  party_color TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_parties_pid ON parties(pid);

CREATE TABLE IF NOT EXISTS banners(
  id TEXT PRIMARY KEY,
  banner_code INTEGER,
  user_id INTEGER,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_banners_user ON banners(user_id);
`

// Store provides SQLite-backed persistence.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// busyTimeoutMillis is how long a connection waits on a lock held by another
// process before failing with SQLITE_BUSY.
const busyTimeoutMillis = 5000

// Open connects to the SQLite database at dsn and ensures the schema exists.
// SQLite allows one writer at a time, so the pool holds a single connection
// and concurrent requests queue in database/sql instead of failing with
// SQLITE_BUSY. ":memory:" needs the single connection anyway to stay one
// database.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// withPragmas adds a busy timeout to file databases so writers from other
// processes are waited on rather than reported as errors.
func withPragmas(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, busyTimeoutMillis)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :email, :mobile, :party_ref, :role, :profile_image_ref, :password_hash, :created_at, :updated_at)`,
		user)
	if err != nil {
		return models.User{}, mapWriteErr(err)
	}
	return s.FindByID(ctx, user.ID)
}

func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return u, mapReadErr(err)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return u, mapReadErr(err)
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	if err := s.update(ctx, "users", id, storage.UserAssignments(patch)); err != nil {
		return models.User{}, err
	}
	return s.FindByID(ctx, id)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	return users, err
}

func (s *Store) CreateParty(ctx context.Context, party models.Party) (models.Party, error) {
	now := s.now()
	party.ID = uuid.NewString()
	party.CreatedAt, party.UpdatedAt = now, now
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO parties (`+partyColumns+`)
		VALUES (:id, :pid, :party_logo_url, :title, :description, :party_color, :created_at, :updated_at)`,
		party)
	if err != nil {
		return models.Party{}, mapWriteErr(err)
	}
	return s.FindParty(ctx, party.ID)
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	parties := []models.Party{}
	err := s.db.SelectContext(ctx, &parties, `SELECT `+partyColumns+` FROM parties ORDER BY created_at, id`)
	return parties, err
}

func (s *Store) FindParty(ctx context.Context, id string) (models.Party, error) {
	var p models.Party
	err := s.db.GetContext(ctx, &p, `SELECT `+partyColumns+` FROM parties WHERE id = ?`, id)
	return p, mapReadErr(err)
}

func (s *Store) UpdateParty(ctx context.Context, id string, patch models.PartyPatch) (models.Party, error) {
	if err := s.update(ctx, "parties", id, storage.PartyAssignments(patch)); err != nil {
		return models.Party{}, err
	}
	return s.FindParty(ctx, id)
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM parties WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	now := s.now()
	banner.ID = uuid.NewString()
	banner.CreatedAt, banner.UpdatedAt = now, now
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO banners (`+bannerColumns+`)
		VALUES (:id, :banner_code, :user_id, :title, :description, :created_at, :updated_at)`,
		banner)
	if err != nil {
		return models.Banner{}, mapWriteErr(err)
	}
	return s.FindBanner(ctx, banner.ID)
}

func (s *Store) ListBanners(ctx context.Context) ([]models.Banner, error) {
	banners := []models.Banner{}
	err := s.db.SelectContext(ctx, &banners, `SELECT `+bannerColumns+` FROM banners ORDER BY created_at, id`)
	return banners, err
}

func (s *Store) FindBanner(ctx context.Context, id string) (models.Banner, error) {
	var b models.Banner
	err := s.db.GetContext(ctx, &b, `SELECT `+bannerColumns+` FROM banners WHERE id = ?`, id)
	return b, mapReadErr(err)
}

func (s *Store) ListBannersByUser(ctx context.Context, userID int64) ([]models.Banner, error) {
	banners := []models.Banner{}
	err := s.db.SelectContext(ctx, &banners,
		`SELECT `+bannerColumns+` FROM banners WHERE user_id = ? ORDER BY created_at, id`, userID)
	return banners, err
}

func (s *Store) UpdateBanner(ctx context.Context, id string, patch models.BannerPatch) (models.Banner, error) {
	if err := s.update(ctx, "banners", id, storage.BannerAssignments(patch)); err != nil {
		return models.Banner{}, err
	}
	return s.FindBanner(ctx, id)
}

// update writes sets plus updated_at to the row with the given id.
func (s *Store) update(ctx context.Context, table, id string, sets []storage.Assignment) error {
	clauses := make([]string, 0, len(sets)+1)
	args := make([]any, 0, len(sets)+2)
	for _, a := range sets {
		clauses = append(clauses, a.Column+" = ?")
		args = append(args, a.Value)
	}
	clauses = append(clauses, "updated_at = ?")
	args = append(args, s.now(), id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(clauses, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func mapReadErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func mapWriteErr(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return storage.ErrAlreadyExists
		}
		// without extended result codes only the message names the constraint
		if strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
			return storage.ErrAlreadyExists
		}
	}
	return err
}
