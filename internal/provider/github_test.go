package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitHubTestVerifier(server *httptest.Server) *GitHubVerifier {
	v := NewGitHubVerifier("client", "secret", "")
	v.tokenURL = server.URL + "/token"
	v.profileURL = server.URL + "/user"
	v.emailsURL = server.URL + "/emails"
	v.httpClient = server.Client()
	return v
}

func TestGitHubVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			assert.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
		case "/user":
			assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":42,"login":"octocat","name":"Octo Cat","email":"octo@example.com","avatar_url":"https://avatars.example/42"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	identity, err := newGitHubTestVerifier(server).Verify(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "github", identity.Provider)
	assert.Equal(t, "42", identity.ProviderID)
	assert.Equal(t, "octo@example.com", identity.Email)
	assert.Equal(t, "Octo", identity.FirstName)
	assert.Equal(t, "Cat", identity.LastName)
}

func TestGitHubVerifyPrivateEmailFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			w.Write([]byte(`{"access_token":"gho_test"}`))
		case "/user":
			w.Write([]byte(`{"id":42,"login":"octocat","name":"","email":""}`))
		case "/emails":
			w.Write([]byte(`[{"email":"alt@example.com","primary":false,"verified":true},{"email":"primary@example.com","primary":true,"verified":true}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	identity, err := newGitHubTestVerifier(server).Verify(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", identity.Email)
	assert.Equal(t, "octocat", identity.FirstName)
	assert.Empty(t, identity.LastName)
}

func TestGitHubVerifyCodeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
	}))
	defer server.Close()

	_, err := newGitHubTestVerifier(server).Verify(context.Background(), "stale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_verification_code")
}
