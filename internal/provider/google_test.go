package provider

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleTestVerifier(t *testing.T, clientID string) (*GoogleVerifier, *rsa.PrivateKey, func()) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	set := jwkSet{Keys: []jwk{{
		Kty: "RSA",
		Kid: "test-kid",
		N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
	}}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(set)
	}))

	v := NewGoogleVerifier(clientID)
	v.certsURL = server.URL
	v.httpClient = server.Client()
	return v, key, server.Close
}

func signGoogleToken(t *testing.T, key *rsa.PrivateKey, claims googleClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-kid"
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func baseGoogleClaims(clientID string) googleClaims {
	return googleClaims{
		Email:      "ada@example.com",
		Verified:   true,
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Picture:    "https://pictures.example/ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "goog-123",
			Audience:  jwt.ClaimStrings{clientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestGoogleVerify(t *testing.T) {
	v, key, cleanup := newGoogleTestVerifier(t, "client-id")
	defer cleanup()

	identity, err := v.Verify(context.Background(), signGoogleToken(t, key, baseGoogleClaims("client-id")))
	require.NoError(t, err)
	assert.Equal(t, "google", identity.Provider)
	assert.Equal(t, "goog-123", identity.ProviderID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "Ada", identity.FirstName)
	assert.Equal(t, "Lovelace", identity.LastName)
}

func TestGoogleVerifyWrongAudience(t *testing.T) {
	v, key, cleanup := newGoogleTestVerifier(t, "client-id")
	defer cleanup()

	claims := baseGoogleClaims("other-client")
	_, err := v.Verify(context.Background(), signGoogleToken(t, key, claims))
	assert.Error(t, err)
}

func TestGoogleVerifyExpired(t *testing.T) {
	v, key, cleanup := newGoogleTestVerifier(t, "client-id")
	defer cleanup()

	claims := baseGoogleClaims("client-id")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err := v.Verify(context.Background(), signGoogleToken(t, key, claims))
	assert.Error(t, err)
}

func TestGoogleVerifyWrongIssuer(t *testing.T) {
	v, key, cleanup := newGoogleTestVerifier(t, "client-id")
	defer cleanup()

	claims := baseGoogleClaims("client-id")
	claims.Issuer = "https://evil.example"
	_, err := v.Verify(context.Background(), signGoogleToken(t, key, claims))
	assert.Error(t, err)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("", "", "Grace Brewster Hopper")
	assert.Equal(t, "Grace", first)
	assert.Equal(t, "Brewster Hopper", last)

	first, last = splitName("Ada", "Lovelace", "ignored")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)

	first, last = splitName("", "", "mononym")
	assert.Equal(t, "mononym", first)
	assert.Empty(t, last)
}
