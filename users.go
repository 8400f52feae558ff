package abac

import "context"

// UserOptions holds the optional fields for CreateUser.
type UserOptions struct {
	DisplayName string // defaults to the username
}

// GetUsers lists all users.
func (c *Client) GetUsers(ctx context.Context) ([]map[string]any, error) {
	return c.doList(ctx, "GET", "/api/users", nil)
}

// GetUser returns a specific user.
func (c *Client) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/users/"+userID, nil)
}

// CreateUser creates a new user.
func (c *Client) CreateUser(ctx context.Context, username, email string, opts UserOptions) (map[string]any, error) {
	displayName := opts.DisplayName
	if displayName == "" {
		displayName = username
	}
	return c.do(ctx, "POST", "/api/users", map[string]any{
		"username":     username,
		"email":        email,
		"display_name": displayName,
	})
}

// UpdateUser updates the given fields of a user.
func (c *Client) UpdateUser(ctx context.Context, userID string, fields map[string]any) (map[string]any, error) {
	return c.do(ctx, "PUT", "/api/users/"+userID, fields)
}

// DeleteUser deletes a user.
func (c *Client) DeleteUser(ctx context.Context, userID string) (map[string]any, error) {
	return c.do(ctx, "DELETE", "/api/users/"+userID, nil)
}

// SetUserAttribute sets a user attribute.
func (c *Client) SetUserAttribute(ctx context.Context, userID, name, value string) (map[string]any, error) {
	return c.do(ctx, "PUT", "/api/users/"+userID+"/attributes/"+name, map[string]any{
		"value": value,
	})
}

// DeleteUserAttribute removes a user attribute.
func (c *Client) DeleteUserAttribute(ctx context.Context, userID, name string) (map[string]any, error) {
	return c.do(ctx, "DELETE", "/api/users/"+userID+"/attributes/"+name, nil)
}
