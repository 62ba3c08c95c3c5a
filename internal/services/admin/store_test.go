package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/db/models"
	"github.com/corralworks/corral/internal/repository"
)

// memoryAdminRepository is an in-memory AdminRepository for tests.
type memoryAdminRepository struct {
	byUsername map[string]*models.Admin
	nextID     int64
	getCalls   int
}

func newMemoryAdminRepository() *memoryAdminRepository {
	return &memoryAdminRepository{byUsername: map[string]*models.Admin{}, nextID: 1}
}

func (m *memoryAdminRepository) Create(_ context.Context, admin *models.Admin) error {
	if _, ok := m.byUsername[admin.Username]; ok {
		return fmt.Errorf("admin %q already exists", admin.Username)
	}
	admin.ID = m.nextID
	m.nextID++
	m.byUsername[admin.Username] = admin
	return nil
}

func (m *memoryAdminRepository) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	for _, a := range m.byUsername {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("admin: %w", repository.ErrNotFound)
}

func (m *memoryAdminRepository) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	m.getCalls++
	if a, ok := m.byUsername[username]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("admin: %w", repository.ErrNotFound)
}

func (m *memoryAdminRepository) Update(_ context.Context, admin *models.Admin) error {
	m.byUsername[admin.Username] = admin
	return nil
}

func (m *memoryAdminRepository) SetPasswordHash(_ context.Context, id int64, passwordHash string) error {
	for _, a := range m.byUsername {
		if a.ID == id {
			a.PasswordHash = passwordHash
			return nil
		}
	}
	return fmt.Errorf("admin: %w", repository.ErrNotFound)
}

func (m *memoryAdminRepository) List(_ context.Context) ([]models.Admin, error) {
	out := make([]models.Admin, 0, len(m.byUsername))
	for _, a := range m.byUsername {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memoryAdminRepository) Delete(_ context.Context, id int64) error {
	for username, a := range m.byUsername {
		if a.ID == id {
			delete(m.byUsername, username)
			return nil
		}
	}
	return fmt.Errorf("admin: %w", repository.ErrNotFound)
}

func newTestStore(t *testing.T) (*Store, *memoryAdminRepository) {
	t.Helper()
	repo := newMemoryAdminRepository()
	store, err := NewStore(repo)
	require.NoError(t, err)
	return store, repo
}

func TestStoreCreateHashesPassword(t *testing.T) {
	store, repo := newTestStore(t)

	rec, err := store.Create(context.Background(), "alice", "secret", "first admin")
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.NotEqual(t, "secret", rec.PasswordHash)

	stored := repo.byUsername["alice"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func TestStoreCreateRejectsEmptyUsername(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Create(context.Background(), "", "secret", "")
	assert.Error(t, err)
}

func TestStoreVerify(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Create(context.Background(), "alice", "secret", "")
	require.NoError(t, err)

	assert.NoError(t, store.Verify(context.Background(), "alice", "secret"))

	wrongPassword := store.Verify(context.Background(), "alice", "nope")
	unknownUser := store.Verify(context.Background(), "nobody", "nope")
	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)

	// The two failures must be indistinguishable apart from the username so
	// responses cannot be used to enumerate accounts.
	assert.Contains(t, wrongPassword.Error(), "bad credentials")
	assert.Contains(t, unknownUser.Error(), "bad credentials")
}

func TestStoreVerifyEmptyUsername(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Verify(context.Background(), "", ""))
}

func TestStoreLookupCachesPrincipal(t *testing.T) {
	store, repo := newTestStore(t)
	_, err := store.Create(context.Background(), "alice", "secret", "")
	require.NoError(t, err)

	before := repo.getCalls
	p1, err := store.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	p2, err := store.Lookup(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, before+1, repo.getCalls, "second lookup must hit the cache")
}

func TestStoreLookupUnknownUsername(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
}

func TestStoreSetPasswordInvalidatesCache(t *testing.T) {
	store, repo := newTestStore(t)
	_, err := store.Create(context.Background(), "alice", "old", "")
	require.NoError(t, err)

	_, err = store.Lookup(context.Background(), "alice")
	require.NoError(t, err)

	require.NoError(t, store.SetPassword(context.Background(), "alice", "new"))

	assert.Error(t, store.Verify(context.Background(), "alice", "old"))
	assert.NoError(t, store.Verify(context.Background(), "alice", "new"))

	// Lookup after the password change goes back to the repository.
	before := repo.getCalls
	_, err = store.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, before+1, repo.getCalls)
}
