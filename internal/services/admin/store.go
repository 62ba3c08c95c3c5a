package admin

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/db/models"
	"github.com/corralworks/corral/internal/repository"
	"github.com/corralworks/corral/internal/telemetry"
)

const defaultCacheSize = 256

// Store serves principal lookups and credential checks against the admins
// table. It implements both auth.PrincipalStore and auth.CredentialVerifier.
//
// Lookups go through a small read-through LRU so the hot path of an
// authenticated request avoids a database round trip. Credential
// verification always reads the database: a cached hash must never outlive a
// password change.
type Store struct {
	admins repository.AdminRepository
	cache  *lru.Cache[string, *auth.Principal]
}

// NewStore creates the admin store with a read-through principal cache.
func NewStore(admins repository.AdminRepository) (*Store, error) {
	cache, err := lru.New[string, *auth.Principal](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create principal cache: %w", err)
	}
	return &Store{admins: admins, cache: cache}, nil
}

// Lookup resolves a username to its principal.
func (s *Store) Lookup(ctx context.Context, username string) (*auth.Principal, error) {
	if p, ok := s.cache.Get(username); ok {
		return p, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "corral/services/admin", "admin.Lookup",
		attribute.String("admin.username", username),
	)
	defer span.End()

	rec, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", username, auth.ErrPrincipalNotFound)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	p := principalFrom(rec)
	s.cache.Add(username, p)
	return p, nil
}

// Verify checks a username/password pair against the stored bcrypt hash.
// Unknown usernames and wrong passwords return the same error shape.
func (s *Store) Verify(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("verify: empty username")
	}

	rec, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as bad
			// passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return fmt.Errorf("verify %q: bad credentials", username)
		}
		return fmt.Errorf("verify admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("verify %q: bad credentials", username)
	}
	return nil
}

// Create registers a new admin with a bcrypt-hashed password and returns the
// stored record.
func (s *Store) Create(ctx context.Context, username, password, description string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Description:  description,
		Attributes:   models.TagMap{},
	}
	if err := rec.ValidateForCreate(); err != nil {
		return nil, fmt.Errorf("validate admin: %w", err)
	}
	if err := s.admins.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetPassword replaces an admin's password and drops any cached principal.
func (s *Store) SetPassword(ctx context.Context, username, password string) error {
	rec, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.admins.SetPasswordHash(ctx, rec.ID, string(hash)); err != nil {
		return err
	}
	s.cache.Remove(username)
	return nil
}

// List returns all registered admins.
func (s *Store) List(ctx context.Context) ([]models.Admin, error) {
	return s.admins.List(ctx)
}

func principalFrom(rec *models.Admin) *auth.Principal {
	attrs := make(map[string]string, len(rec.Attributes))
	for k, v := range rec.Attributes {
		attrs[k] = v
	}
	return &auth.Principal{
		ID:         rec.ID,
		Username:   rec.Username,
		Attributes: attrs,
	}
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize
// verification timing for unknown usernames.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
