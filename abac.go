// Package abac provides a Go client for the ABAC API.
//
// The client authenticates against a Keycloak realm using one of the
// OAuth2 grant flows (password, client credentials, refresh token) and
// issues bearer-authenticated requests to the ABAC resource endpoints
// for users, resources, policies, access checks, and the audit log.
// Access tokens are refreshed transparently shortly before they expire.
//
// # Quick Start
//
//	client, err := abac.NewClient(abac.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.LoginWithPassword(ctx, "admin", "admin123"); err != nil {
//	    log.Fatal(err)
//	}
//
//	decision, err := client.CheckAccess(ctx, abac.AccessRequest{
//	    UserID:     "u-1",
//	    ResourceID: "r-1",
//	    Action:     "read",
//	})
package abac

import (
	"errors"
	"fmt"
)

// Version is the SDK version.
const Version = "0.1.0"

// Common errors returned by the SDK.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAPI            = errors.New("API request failed")
	ErrConnection     = errors.New("connection to ABAC services failed")
)

// AuthenticationError is returned when a grant flow fails or when a
// request cannot proceed because no valid credential is held.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match against ErrAuthentication.
func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// APIError is returned when the ABAC API responds with a non-success
// status after authentication succeeded. Response holds the decoded
// error body for caller inspection.
type APIError struct {
	StatusCode int
	Message    string
	Response   map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap lets errors.Is match against ErrAPI.
func (e *APIError) Unwrap() error {
	return ErrAPI
}
