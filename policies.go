package abac

import "context"

// Policy effects understood by the ABAC engine.
const (
	EffectAllow = "allow"
	EffectDeny  = "deny"
)

// PolicyOptions holds the optional fields for CreatePolicy.
type PolicyOptions struct {
	Description string
	Priority    int
}

// PolicyCondition is one attribute condition attached to a policy.
type PolicyCondition struct {
	SubjectType   string `json:"subject_type"`   // "user", "resource", or "environment"
	AttributeName string `json:"attribute_name"` // attribute to compare
	Operator      string `json:"operator"`       // e.g. "equals", "contains"
	Value         string `json:"value"`
}

// GetPolicies lists all policies.
func (c *Client) GetPolicies(ctx context.Context) ([]map[string]any, error) {
	return c.doList(ctx, "GET", "/api/policies", nil)
}

// GetPolicy returns a specific policy.
func (c *Client) GetPolicy(ctx context.Context, policyID string) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/policies/"+policyID, nil)
}

// CreatePolicy creates a new policy with the given effect.
func (c *Client) CreatePolicy(ctx context.Context, name, effect string, opts PolicyOptions) (map[string]any, error) {
	body := map[string]any{
		"name":     name,
		"effect":   effect,
		"priority": opts.Priority,
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}
	return c.do(ctx, "POST", "/api/policies", body)
}

// DeletePolicy deletes a policy.
func (c *Client) DeletePolicy(ctx context.Context, policyID string) (map[string]any, error) {
	return c.do(ctx, "DELETE", "/api/policies/"+policyID, nil)
}

// AddPolicyCondition attaches a condition to a policy.
func (c *Client) AddPolicyCondition(ctx context.Context, policyID string, cond PolicyCondition) (map[string]any, error) {
	return c.do(ctx, "POST", "/api/policies/"+policyID+"/conditions", cond)
}

// TogglePolicy flips a policy's active status.
func (c *Client) TogglePolicy(ctx context.Context, policyID string) (map[string]any, error) {
	return c.do(ctx, "PATCH", "/api/policies/"+policyID+"/toggle", nil)
}
