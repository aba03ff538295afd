package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	githubTokenURL   = "https://github.com/login/oauth/access_token"
	githubProfileURL = "https://api.github.com/user"
	githubEmailsURL  = "https://api.github.com/user/emails"
)

// GitHubVerifier exchanges an authorization code for an access token, then
// resolves the GitHub profile behind it.
type GitHubVerifier struct {
	clientID     string
	clientSecret string
	redirectURL  string
	tokenURL     string
	profileURL   string
	emailsURL    string
	httpClient   *http.Client
}

// NewGitHubVerifier creates a GitHub code verifier.
func NewGitHubVerifier(clientID, clientSecret, redirectURL string) *GitHubVerifier {
	return &GitHubVerifier{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		tokenURL:     githubTokenURL,
		profileURL:   githubProfileURL,
		emailsURL:    githubEmailsURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns "github".
func (g *GitHubVerifier) Name() string {
	return "github"
}

// Verify exchanges the code and fetches the profile, falling back to the
// emails endpoint when the profile email is private.
func (g *GitHubVerifier) Verify(ctx context.Context, code string) (*Identity, error) {
	accessToken, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return g.fetchProfile(ctx, accessToken)
}

func (g *GitHubVerifier) exchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"code":          {code},
	}
	if g.redirectURL != "" {
		data.Set("redirect_uri", g.redirectURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("github: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("github: decode token response: %w", err)
	}
	if tokenResp.Error != "" {
		return "", fmt.Errorf("github: %s: %s", tokenResp.Error, tokenResp.ErrorDesc)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("github: token response carries no access token")
	}
	return tokenResp.AccessToken, nil
}

func (g *GitHubVerifier) fetchProfile(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("github: create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: profile fetch failed with status %d", resp.StatusCode)
	}

	var profile struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("github: decode profile: %w", err)
	}

	email := profile.Email
	if email == "" {
		email, err = g.fetchPrimaryEmail(ctx, accessToken)
		if err != nil {
			return nil, err
		}
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	first, last := splitName("", "", name)

	return &Identity{
		Provider:   g.Name(),
		ProviderID: fmt.Sprintf("%d", profile.ID),
		Email:      email,
		FirstName:  first,
		LastName:   last,
		AvatarURL:  profile.AvatarURL,
	}, nil
}

func (g *GitHubVerifier) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.emailsURL, nil)
	if err != nil {
		return "", fmt.Errorf("github: create emails request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github: fetch emails: %w", err)
	}
	defer resp.Body.Close()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("github: decode emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", fmt.Errorf("github: account exposes no email")
}
