package abac

import (
	"context"
	"fmt"
)

// AccessRequest describes one access question: may this user perform
// this action on this resource, given these environment attributes.
type AccessRequest struct {
	UserID      string
	ResourceID  string
	Action      string
	Environment map[string]string
}

// body shapes the request for the wire, defaulting a nil environment
// to an empty object as the API expects.
func (r AccessRequest) body() map[string]any {
	env := r.Environment
	if env == nil {
		env = map[string]string{}
	}
	return map[string]any{
		"user_id":     r.UserID,
		"resource_id": r.ResourceID,
		"action":      r.Action,
		"environment": env,
	}
}

// AccessDecision is the engine's answer to an AccessRequest.
type AccessDecision struct {
	Allowed  bool   `json:"allowed"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// CheckAccess evaluates an access request without writing to the
// audit log.
func (c *Client) CheckAccess(ctx context.Context, req AccessRequest) (*AccessDecision, error) {
	var decision AccessDecision
	if err := c.doJSON(ctx, "POST", "/api/access/check", req.body(), &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// EvaluateAccess evaluates an access request and records the decision
// in the audit log.
func (c *Client) EvaluateAccess(ctx context.Context, req AccessRequest) (*AccessDecision, error) {
	var decision AccessDecision
	if err := c.doJSON(ctx, "POST", "/api/access/evaluate", req.body(), &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// BatchCheckAccess evaluates multiple access requests in one round
// trip. Decisions come back in request order.
func (c *Client) BatchCheckAccess(ctx context.Context, reqs []AccessRequest) ([]AccessDecision, error) {
	bodies := make([]map[string]any, len(reqs))
	for i, req := range reqs {
		bodies[i] = req.body()
	}

	var decisions []AccessDecision
	if err := c.doJSON(ctx, "POST", "/api/access/batch-check", map[string]any{"requests": bodies}, &decisions); err != nil {
		return nil, err
	}
	return decisions, nil
}

// GetPermissions returns all permissions a user holds on a resource.
func (c *Client) GetPermissions(ctx context.Context, userID, resourceID string) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/access/permissions/"+userID+"/"+resourceID, nil)
}

// AuditLogOptions configures audit log queries.
type AuditLogOptions struct {
	Limit  int // defaults to 100
	Offset int
}

// GetAuditLog retrieves audit log entries, newest first.
func (c *Client) GetAuditLog(ctx context.Context, opts AuditLogOptions) ([]map[string]any, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	path := fmt.Sprintf("/api/access/audit?limit=%d&offset=%d", limit, opts.Offset)
	return c.doList(ctx, "GET", path, nil)
}

// GetAuditStats returns aggregate audit statistics.
func (c *Client) GetAuditStats(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/access/audit/stats", nil)
}

// ClearAuditLog deletes all audit log entries.
func (c *Client) ClearAuditLog(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, "DELETE", "/api/access/audit", nil)
}
