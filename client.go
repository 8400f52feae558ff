package abac

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the ABAC client configuration. The zero value of any
// field is replaced with its documented default by NewClient.
type Config struct {
	APIBaseURL   string        // ABAC API endpoint (default: http://localhost:3000)
	KeycloakURL  string        // Keycloak endpoint (default: http://localhost:8080)
	Realm        string        // Keycloak realm (default: abac-realm)
	ClientID     string        // OAuth2 client id (default: abac-webapp)
	ClientSecret string        // OAuth2 client secret
	Timeout      time.Duration // Request timeout (default: 30s)
	HTTPClient   *http.Client  // Custom HTTP client (optional)
	Logger       *slog.Logger  // Debug logger (optional)
}

// DefaultConfig returns a Config with the local development defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:   "http://localhost:3000",
		KeycloakURL:  "http://localhost:8080",
		Realm:        "abac-realm",
		ClientID:     "abac-webapp",
		ClientSecret: "abac-webapp-secret-change-in-production",
		Timeout:      30 * time.Second,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by the ABAC_*
// environment variables where they are set.
func ConfigFromEnv() Config {
	config := DefaultConfig()
	if v := os.Getenv("ABAC_API_URL"); v != "" {
		config.APIBaseURL = v
	}
	if v := os.Getenv("ABAC_KEYCLOAK_URL"); v != "" {
		config.KeycloakURL = v
	}
	if v := os.Getenv("ABAC_REALM"); v != "" {
		config.Realm = v
	}
	if v := os.Getenv("ABAC_CLIENT_ID"); v != "" {
		config.ClientID = v
	}
	if v := os.Getenv("ABAC_CLIENT_SECRET"); v != "" {
		config.ClientSecret = v
	}
	return config
}

// Client is the ABAC API client. It holds the token state for a single
// logical session: methods are synchronous and the client performs no
// internal locking, so concurrent callers must serialize access or use
// one client per goroutine.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	accessToken  string
	refreshToken string
	tokenExpiry  time.Time

	// now is replaced in tests to drive the expiry check.
	now func() time.Time
}

// NewClient creates a new ABAC client.
func NewClient(config Config) (*Client, error) {
	defaults := DefaultConfig()
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaults.APIBaseURL
	}
	if config.KeycloakURL == "" {
		config.KeycloakURL = defaults.KeycloakURL
	}
	if config.Realm == "" {
		config.Realm = defaults.Realm
	}
	if config.ClientID == "" {
		config.ClientID = defaults.ClientID
	}
	if config.ClientSecret == "" {
		config.ClientSecret = defaults.ClientSecret
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")
	config.KeycloakURL = strings.TrimRight(config.KeycloakURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// dispatch sends an authenticated JSON request to the ABAC API and
// returns the raw success body. The authentication guard runs before
// any network I/O.
func (c *Client) dispatch(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.APIBaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("dispatching API request",
		"method", method,
		"path", path,
		"request_id", requestID,
	)

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
		var data map[string]any
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &data); err != nil {
				data = map[string]any{"raw": string(respBody)}
			}
		}

		errMsg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		if msg, ok := data["message"].(string); ok {
			errMsg = msg
		} else if msg, ok := data["error"].(string); ok {
			errMsg = msg
		}

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errMsg,
			Response:   data,
		}
	}

	return respBody, nil
}

// do dispatches a request and decodes the response body into a map.
func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	respBody, err := c.dispatch(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &data); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return data, nil
}

// doList dispatches a request whose response body is a JSON array.
func (c *Client) doList(ctx context.Context, method, path string, body any) ([]map[string]any, error) {
	respBody, err := c.dispatch(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if err := json.Unmarshal(respBody, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return entries, nil
}

// doJSON dispatches a request and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	respBody, err := c.dispatch(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Close cleans up client resources.
func (c *Client) Close() error {
	// Currently no cleanup needed
	return nil
}
