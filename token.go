package abac

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin is how long before the recorded expiry a token is
// treated as expired. It absorbs clock skew and round-trip latency so
// a token never expires mid-flight.
const refreshMargin = 30 * time.Second

// defaultExpiresIn is used when a grant response omits expires_in.
const defaultExpiresIn = 300

// TokenResponse is the decoded body of a successful grant response
// from the Keycloak token endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// tokenEndpoint returns the Keycloak OpenID Connect token endpoint for
// the configured realm.
func (c *Client) tokenEndpoint() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.config.KeycloakURL, c.config.Realm)
}

// LoginWithPassword authenticates with username and password
// (Resource Owner Password Grant) and stores the returned tokens.
func (c *Client) LoginWithPassword(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"username":      {username},
		"password":      {password},
	}
	return c.requestToken(ctx, form, "authentication failed")
}

// LoginWithClientCredentials authenticates as the configured client
// itself (Client Credentials Grant), for service accounts.
func (c *Client) LoginWithClientCredentials(ctx context.Context) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
	}
	return c.requestToken(ctx, form, "authentication failed")
}

// RefreshAccessToken exchanges the held refresh token for a new access
// token. It fails before any network call when no refresh token is held.
func (c *Client) RefreshAccessToken(ctx context.Context) (*TokenResponse, error) {
	if c.refreshToken == "" {
		return nil, &AuthenticationError{Message: "no refresh token available"}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"refresh_token": {c.refreshToken},
	}
	return c.requestToken(ctx, form, "token refresh failed")
}

// requestToken posts a grant request to the token endpoint, stores the
// tokens on success, and maps failures to AuthenticationError.
func (c *Client) requestToken(ctx context.Context, form url.Values, failPrefix string) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("requesting token", "grant_type", form.Get("grant_type"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var grantErr struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(respBody, &grantErr)

		reason := grantErr.ErrorDescription
		if reason == "" {
			reason = grantErr.Error
		}
		if reason == "" {
			reason = fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)
		}
		return nil, &AuthenticationError{Message: failPrefix + ": " + reason}
	}

	var tokens TokenResponse
	if err := json.Unmarshal(respBody, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	c.storeTokens(&tokens)
	return &tokens, nil
}

// storeTokens records the grant response in the client's token state.
// A missing refresh token keeps the previously held one; a missing
// expires_in falls back to defaultExpiresIn.
func (c *Client) storeTokens(tokens *TokenResponse) {
	c.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.refreshToken = tokens.RefreshToken
	}

	expiresIn := tokens.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}
	c.tokenExpiry = c.now().Add(time.Duration(expiresIn) * time.Second)
}

// ensureAuthenticated verifies a usable access token is held before a
// request goes out, refreshing when the token is within refreshMargin
// of its expiry. It never initiates a login on its own.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.accessToken == "" {
		return &AuthenticationError{
			Message: "not authenticated: call LoginWithPassword or LoginWithClientCredentials first",
		}
	}

	if c.now().Before(c.tokenExpiry.Add(-refreshMargin)) {
		return nil
	}

	if c.refreshToken == "" {
		return &AuthenticationError{Message: "token expired and no refresh token available"}
	}

	_, err := c.RefreshAccessToken(ctx)
	return err
}

// TokenClaims decodes the claims of the held access token without
// verifying its signature. Validation stays with the resource server;
// this is a local convenience for inspecting subject, roles, and expiry.
func (c *Client) TokenClaims() (jwt.MapClaims, error) {
	if c.accessToken == "" {
		return nil, &AuthenticationError{Message: "not authenticated: no access token held"}
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(c.accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

// GetTokenInfo asks the API to describe the current token as the
// resource server sees it.
func (c *Client) GetTokenInfo(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/token-info", nil)
}
