package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationKey holds the static JWT verification material sourced from
// secret configuration at startup. At most one of the fields is consulted per
// token, selected by the token's declared signing method.
type VerificationKey struct {
	HMACSecret   []byte
	RSAPublicKey *rsa.PublicKey
}

// Resolve is the jwt.Keyfunc that maps a parsed token to its verification
// key. Tokens declaring a method this key cannot serve are rejected here in
// addition to the parser's allowed-method check.
func (k VerificationKey) Resolve(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(k.HMACSecret) == 0 {
			return nil, fmt.Errorf("no HMAC secret configured")
		}
		return k.HMACSecret, nil
	case *jwt.SigningMethodRSA:
		if k.RSAPublicKey == nil {
			return nil, fmt.Errorf("no RSA public key configured")
		}
		return k.RSAPublicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
	}
}

// LoadVerificationKey assembles the verification key from an inline HMAC
// secret and an optional PEM file holding an RSA public key. At least one
// source must be present for bearer authentication to be usable.
func LoadVerificationKey(hmacSecret, rsaPublicKeyPath string) (VerificationKey, error) {
	key := VerificationKey{}
	if hmacSecret != "" {
		key.HMACSecret = []byte(hmacSecret)
	}
	if rsaPublicKeyPath != "" {
		pem, err := os.ReadFile(rsaPublicKeyPath)
		if err != nil {
			return VerificationKey{}, fmt.Errorf("failed to read RSA public key: %w", err)
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return VerificationKey{}, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		key.RSAPublicKey = pub
	}
	if key.HMACSecret == nil && key.RSAPublicKey == nil {
		return VerificationKey{}, fmt.Errorf("no JWT verification key configured")
	}
	return key, nil
}
