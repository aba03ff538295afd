// Package provider resolves external OAuth credentials into a normalized
// identity the auth service can link to a local account.
package provider

import "context"

// Identity is the provider-agnostic result of a successful credential
// verification.
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
	AvatarURL  string
}

// Verifier turns a provider credential (ID token or authorization code) into
// an Identity.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, credential string) (*Identity, error)
}
