package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHMACSecret = []byte("test-signing-secret")

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testHMACSecret)
	require.NoError(t, err)
	return token
}

func newTestBearerStrategy(principals map[string]*Principal) *BearerStrategy {
	return NewBearerStrategy(
		VerificationKey{HMACSecret: testHMACSecret},
		&stubPrincipals{principals: principals},
	)
}

func TestBearerStrategyValidToken(t *testing.T) {
	s := newTestBearerStrategy(map[string]*Principal{
		"carol": {ID: 3, Username: "carol"},
	})

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, jwt.MapClaims{
		"username": "carol",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}))

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusValid, result.Status)
	assert.Equal(t, "carol", result.Username)
}

func TestBearerStrategyMissingHeaderIsFailure(t *testing.T) {
	// Unlike the basic strategy, a missing or foreign header is a hard
	// failure here, never absence.
	s := newTestBearerStrategy(nil)

	result := s.Attempt(context.Background(), newTestRequest(nil))
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyNonBearerScheme(t *testing.T) {
	s := newTestBearerStrategy(nil)

	req := newTestRequest(nil)
	req.Header.Set("Authorization", basicHeader("alice:secret"))

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyEmptyToken(t *testing.T) {
	s := newTestBearerStrategy(nil)

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer ")

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyBadSignature(t *testing.T) {
	s := newTestBearerStrategy(map[string]*Principal{
		"carol": {ID: 3, Username: "carol"},
	})

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "carol",
	}).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+forged)

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyRejectsUnsignedToken(t *testing.T) {
	// alg=none must reject no matter what the claims say.
	s := newTestBearerStrategy(map[string]*Principal{
		"carol": {ID: 3, Username: "carol"},
	})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "carol",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+unsigned)

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyExpiredToken(t *testing.T) {
	s := newTestBearerStrategy(map[string]*Principal{
		"carol": {ID: 3, Username: "carol"},
	})

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, jwt.MapClaims{
		"username": "carol",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	}))

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyMissingUsernameClaim(t *testing.T) {
	s := newTestBearerStrategy(map[string]*Principal{
		"carol": {ID: 3, Username: "carol"},
	})

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, jwt.MapClaims{
		"sub": "carol",
	}))

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyUnknownPrincipal(t *testing.T) {
	// A well-signed token whose username does not resolve rejects exactly
	// like a bad signature.
	s := newTestBearerStrategy(nil)

	req := newTestRequest(nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, jwt.MapClaims{
		"username": "carol",
	}))

	result := s.Attempt(context.Background(), req)
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestBearerStrategyHooksAreNoOps(t *testing.T) {
	s := newTestBearerStrategy(nil)
	req := newTestRequest(nil)

	// Must not panic without a session; bearer establishes no continuity.
	s.OnSuccess(req, "carol")
	s.OnFailure(req)
}
