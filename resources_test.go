package abac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDefaultsDisplayName(t *testing.T) {
	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u-1"}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	t.Run("display name defaults to username", func(t *testing.T) {
		_, err := client.CreateUser(context.Background(), "alice", "alice@example.com", UserOptions{})
		require.NoError(t, err)
		assert.Equal(t, "alice", gotBody["display_name"])
		assert.Equal(t, "alice@example.com", gotBody["email"])
	})

	t.Run("explicit display name wins", func(t *testing.T) {
		_, err := client.CreateUser(context.Background(), "alice", "alice@example.com", UserOptions{
			DisplayName: "Alice Cooper",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Cooper", gotBody["display_name"])
	})
}

func TestSetUserAttribute(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/u-1/attributes/department", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "engineering", body["value"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	_, err := client.SetUserAttribute(context.Background(), "u-1", "department", "engineering")
	require.NoError(t, err)
}

// TestCreateResourceAndList drives the full flow against an in-memory
// fake: service-account login, create a resource, see it in the list.
func TestCreateResourceAndList(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "svc-token", "expires_in": 300}`))
	}))
	defer idp.Close()

	var stored []map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		require.Equal(t, "/api/resources", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			body["id"] = "r-1"
			stored = append(stored, body)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(body)
		case http.MethodGet:
			json.NewEncoder(w).Encode(stored)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer api.Close()

	client := newTestClient(t, api.URL, idp.URL)

	_, err := client.LoginWithClientCredentials(context.Background())
	require.NoError(t, err)

	created, err := client.CreateResource(context.Background(), "doc1", "file", ResourceOptions{})
	require.NoError(t, err)
	assert.Equal(t, "doc1", created["name"])

	resources, err := client.GetResources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "doc1", resources[0]["name"])
	assert.Equal(t, "file", resources[0]["type"])
}

func TestCreateResourceOmitsEmptyDescription(t *testing.T) {
	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "r-1"}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	_, err := client.CreateResource(context.Background(), "doc1", "file", ResourceOptions{})
	require.NoError(t, err)
	_, present := gotBody["description"]
	assert.False(t, present)
}

func TestCreatePolicy(t *testing.T) {
	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/policies", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "p-1"}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	_, err := client.CreatePolicy(context.Background(), "deny-guests", EffectDeny, PolicyOptions{
		Description: "Guests may not write",
		Priority:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, "deny", gotBody["effect"])
	assert.Equal(t, float64(10), gotBody["priority"])
	assert.Equal(t, "Guests may not write", gotBody["description"])
}

func TestAddPolicyCondition(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/policies/p-1/conditions", r.URL.Path)

		var cond PolicyCondition
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cond))
		assert.Equal(t, "user", cond.SubjectType)
		assert.Equal(t, "department", cond.AttributeName)
		assert.Equal(t, "equals", cond.Operator)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "c-1"}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	_, err := client.AddPolicyCondition(context.Background(), "p-1", PolicyCondition{
		SubjectType:   "user",
		AttributeName: "department",
		Operator:      "equals",
		Value:         "engineering",
	})
	require.NoError(t, err)
}

func TestTogglePolicy(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/policies/p-1/toggle", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "p-1", "active": false}`))
	}))
	defer api.Close()

	client := authedClient(t, api.URL)

	result, err := client.TogglePolicy(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, false, result["active"])
}

func TestEffectConstants(t *testing.T) {
	tests := []struct {
		effect   string
		expected string
	}{
		{EffectAllow, "allow"},
		{EffectDeny, "deny"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.effect)
	}
}
