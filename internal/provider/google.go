package provider

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// GoogleVerifier validates Google ID tokens against Google's published
// signing keys. Keys are cached and refetched when an unknown kid shows up.
type GoogleVerifier struct {
	clientID   string
	certsURL   string
	httpClient *http.Client

	mu     sync.Mutex
	keys   map[string]*rsa.PublicKey
	expiry time.Time
}

// NewGoogleVerifier creates a Google ID-token verifier for the given OAuth
// client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		certsURL:   googleCertsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       map[string]*rsa.PublicKey{},
	}
}

// Name returns "google".
func (g *GoogleVerifier) Name() string {
	return "google"
}

type googleClaims struct {
	Email      string `json:"email"`
	Verified   bool   `json:"email_verified"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	jwt.RegisteredClaims
}

// Verify checks the ID token's signature, issuer, audience and expiry, and
// returns the embedded identity.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("google: token missing kid header")
		}
		return g.keyFor(ctx, kid)
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience(g.clientID))
	if err != nil {
		return nil, fmt.Errorf("google: verify id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("google: invalid id token")
	}

	issuerOK := false
	for _, iss := range googleIssuers {
		if claims.Issuer == iss {
			issuerOK = true
			break
		}
	}
	if !issuerOK {
		return nil, fmt.Errorf("google: unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("google: id token carries no subject")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("google: id token carries no email")
	}

	first, last := splitName(claims.GivenName, claims.FamilyName, claims.Name)
	return &Identity{
		Provider:   g.Name(),
		ProviderID: claims.Subject,
		Email:      claims.Email,
		FirstName:  first,
		LastName:   last,
		AvatarURL:  claims.Picture,
	}, nil
}

func (g *GoogleVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if key, ok := g.keys[kid]; ok && time.Now().Before(g.expiry) {
		return key, nil
	}
	if err := g.refreshLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := g.keys[kid]
	if !ok {
		return nil, fmt.Errorf("google: no signing key for kid %q", kid)
	}
	return key, nil
}

func (g *GoogleVerifier) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.certsURL, nil)
	if err != nil {
		return fmt.Errorf("google: create certs request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google: fetch certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google: certs fetch failed with status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("google: decode certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			return err
		}
		keys[k.Kid] = pub
	}

	g.keys = keys
	g.expiry = time.Now().Add(time.Hour)
	return nil
}

func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("google: decode modulus for kid %q: %w", k.Kid, err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("google: decode exponent for kid %q: %w", k.Kid, err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

func splitName(given, family, full string) (string, string) {
	if given != "" || family != "" {
		return given, family
	}
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
