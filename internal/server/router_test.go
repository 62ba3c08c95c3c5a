package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/db/models"
	"github.com/corralworks/corral/internal/events"
	"github.com/corralworks/corral/internal/repository"
	"github.com/corralworks/corral/internal/services/admin"
	"github.com/corralworks/corral/internal/services/inventory"
	"github.com/corralworks/corral/internal/session"
)

var testJWTSecret = []byte("router-test-secret")

// memoryAdminRepository backs the admin store in router tests.
type memoryAdminRepository struct {
	byUsername map[string]*models.Admin
	nextID     int64
}

func (m *memoryAdminRepository) Create(_ context.Context, a *models.Admin) error {
	m.nextID++
	a.ID = m.nextID
	m.byUsername[a.Username] = a
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
	if a, ok := m.byUsername[username]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("admin: %w", repository.ErrNotFound)
}

func (m *memoryAdminRepository) Update(_ context.Context, a *models.Admin) error {
	m.byUsername[a.Username] = a
	return nil
}

func (m *memoryAdminRepository) SetPasswordHash(_ context.Context, id int64, hash string) error {
	for _, a := range m.byUsername {
		if a.ID == id {
			a.PasswordHash = hash
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

// memorySessionRepository backs the session manager in router tests.
type memorySessionRepository struct {
	byHash map[string]*models.Session
}

func (m *memorySessionRepository) Create(_ context.Context, s *models.Session) error {
	cp := *s
	m.byHash[s.TokenHash] = &cp
	return nil
}

func (m *memorySessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*models.Session, error) {
	if s, ok := m.byHash[tokenHash]; ok {
		cp := *s
		cp.Data = s.Data.Clone()
		return &cp, nil
	}
	return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
}

func (m *memorySessionRepository) Update(_ context.Context, s *models.Session) error {
	for hash, existing := range m.byHash {
		if existing.ID == s.ID {
			cp := *s
			m.byHash[hash] = &cp
			return nil
		}
	}
	return fmt.Errorf("session: %w", repository.ErrNotFound)
}

func (m *memorySessionRepository) UpdateLastUsed(_ context.Context, id string) error {
	return nil
}

func (m *memorySessionRepository) Delete(_ context.Context, id string) error {
	for hash, s := range m.byHash {
		if s.ID == id {
			delete(m.byHash, hash)
			return nil
		}
	}
	return fmt.Errorf("session: %w", repository.ErrNotFound)
}

func (m *memorySessionRepository) DeleteExpired(_ context.Context) error { return nil }

// memoryNodeRepository backs the inventory service in router tests.
type memoryNodeRepository struct {
	byName map[string]*models.Node
}

func (m *memoryNodeRepository) Create(_ context.Context, n *models.Node) error {
	m.byName[n.Name] = n
	return nil
}

func (m *memoryNodeRepository) GetByID(_ context.Context, id int64) (*models.Node, error) {
	for _, n := range m.byName {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("node: %w", repository.ErrNotFound)
}

func (m *memoryNodeRepository) GetByName(_ context.Context, name string) (*models.Node, error) {
	if n, ok := m.byName[name]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("node: %w", repository.ErrNotFound)
}

func (m *memoryNodeRepository) Update(_ context.Context, n *models.Node) error {
	m.byName[n.Name] = n
	return nil
}

func (m *memoryNodeRepository) List(_ context.Context) ([]models.Node, error) {
	out := make([]models.Node, 0, len(m.byName))
	for _, n := range m.byName {
		out = append(out, *n)
	}
	return out, nil
}

func (m *memoryNodeRepository) ListBySoftwareProfile(_ context.Context, _ int64) ([]models.Node, error) {
	return nil, nil
}

func (m *memoryNodeRepository) Delete(_ context.Context, id int64) error {
	for name, n := range m.byName {
		if n.ID == id {
			delete(m.byName, name)
			return nil
		}
	}
	return fmt.Errorf("node: %w", repository.ErrNotFound)
}

type memorySoftwareProfileRepository struct{}

func (memorySoftwareProfileRepository) Create(_ context.Context, _ *models.SoftwareProfile) error {
	return nil
}

func (memorySoftwareProfileRepository) GetByName(_ context.Context, _ string) (*models.SoftwareProfile, error) {
	return nil, fmt.Errorf("software profile: %w", repository.ErrNotFound)
}

func (memorySoftwareProfileRepository) Update(_ context.Context, _ *models.SoftwareProfile) error {
	return nil
}

func (memorySoftwareProfileRepository) List(_ context.Context) ([]models.SoftwareProfile, error) {
	return nil, nil
}

func (memorySoftwareProfileRepository) Delete(_ context.Context, _ int64) error { return nil }

type memoryHardwareProfileRepository struct{}

func (memoryHardwareProfileRepository) Create(_ context.Context, _ *models.HardwareProfile) error {
	return nil
}

func (memoryHardwareProfileRepository) GetByName(_ context.Context, _ string) (*models.HardwareProfile, error) {
	return nil, fmt.Errorf("hardware profile: %w", repository.ErrNotFound)
}

func (memoryHardwareProfileRepository) Update(_ context.Context, _ *models.HardwareProfile) error {
	return nil
}

func (memoryHardwareProfileRepository) List(_ context.Context) ([]models.HardwareProfile, error) {
	return nil, nil
}

func (memoryHardwareProfileRepository) Delete(_ context.Context, _ int64) error { return nil }

// newTestHandler assembles the full router over in-memory stores, seeded
// with admin bob/builder and two nodes.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	adminRepo := &memoryAdminRepository{byUsername: map[string]*models.Admin{}}
	admins, err := admin.NewStore(adminRepo)
	require.NoError(t, err)
	_, err = admins.Create(context.Background(), "bob", "builder", "test admin")
	require.NoError(t, err)

	sessions := session.NewManager(
		&memorySessionRepository{byHash: map[string]*models.Session{}},
		time.Hour, false,
	)

	nodeRepo := &memoryNodeRepository{byName: map[string]*models.Node{
		"node-01": {ID: 1, Name: "node-01", State: models.NodeStateInstalled, Tags: models.TagMap{"rack": "r1"}},
		"node-02": {ID: 2, Name: "node-02", State: models.NodeStateCreated, Tags: models.TagMap{"rack": "r2"}},
	}}

	bus := events.NewBus()
	inv := inventory.NewService(nodeRepo, memorySoftwareProfileRepository{}, memoryHardwareProfileRepository{}, bus)

	strategies := []auth.Strategy{
		auth.NewSessionStrategy(),
		auth.NewBasicStrategy(admins),
		auth.NewFormStrategy(admins),
		auth.NewBearerStrategy(auth.VerificationKey{HMACSecret: testJWTSecret}, admins),
	}
	authenticator := auth.NewAuthenticator(strategies, admins, nil)

	return NewRouter(RouterOptions{
		Inventory:     inv,
		Admins:        admins,
		Authenticator: authenticator,
		Sessions:      sessions,
		Bus:           bus,
	})
}

func basicAuthHeader(pair string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(pair))
}

func TestRouterUnauthenticatedRejection(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v2/nodes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Authentication required", rec.Body.String())
}

func TestRouterHealthIsOpen(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterBasicAuthOnProtectedRoute(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("GET", "/v2/nodes", nil)
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Nodes []nodeResponse `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Nodes, 2)
}

func TestRouterBasicAuthWrongPassword(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("GET", "/v2/nodes", nil)
	r.Header.Set("Authorization", basicAuthHeader("bob:wrong"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", rec.Body.String())
}

func TestRouterFormLoginEstablishesSession(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("POST", "/v2/auth/login",
		strings.NewReader(`{"username":"bob","password":"builder"}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body principalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bob", body.Username)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookie := cookies[0]
	assert.Equal(t, session.CookieName, cookie.Name)

	// The cookie alone must authenticate the next request.
	r = httptest.NewRequest("GET", "/v2/auth/whoami", nil)
	r.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bob", body.Username)
}

func TestRouterEmptyLoginBodyRejected(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("POST", "/v2/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", rec.Body.String())
}

func TestRouterLogoutEndsSession(t *testing.T) {
	handler := newTestHandler(t)

	// Login to obtain a session cookie.
	r := httptest.NewRequest("POST", "/v2/auth/login",
		strings.NewReader(`{"username":"bob","password":"builder"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]

	// Logout with that cookie.
	r = httptest.NewRequest("POST", "/v2/auth/logout", nil)
	r.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The old cookie must no longer authenticate.
	r = httptest.NewRequest("GET", "/v2/auth/whoami", nil)
	r.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterBearerTokenOnProtectedRoute(t *testing.T) {
	handler := newTestHandler(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "bob",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString(testJWTSecret)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/v2/auth/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body principalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bob", body.Username)
}

func TestRouterNodeGetNotFound(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("GET", "/v2/nodes/ghost", nil)
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterNodeListTagFilter(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("GET", `/v2/nodes?tag_filter=rack+%3D%3D+%22r1%22`, nil)
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Nodes []nodeResponse `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Nodes, 1)
	assert.Equal(t, "node-01", body.Nodes[0].Name)
}

func TestRouterNodeListBadTagFilter(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("GET", `/v2/nodes?tag_filter=rack+%3D%3D`, nil)
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterNodeUpdateState(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("PUT", "/v2/nodes/node-02",
		strings.NewReader(`{"state":"Provisioned"}`))
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body nodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.NodeStateProvisioned, body.State)
}

func TestRouterNodeUpdateEmptyBody(t *testing.T) {
	handler := newTestHandler(t)

	r := httptest.NewRequest("PUT", "/v2/nodes/node-02", strings.NewReader(`{}`))
	r.Header.Set("Authorization", basicAuthHeader("bob:builder"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
