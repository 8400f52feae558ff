package abac

import "context"

// ResourceOptions holds the optional fields for CreateResource.
type ResourceOptions struct {
	Description string
}

// GetResources lists all resources.
func (c *Client) GetResources(ctx context.Context) ([]map[string]any, error) {
	return c.doList(ctx, "GET", "/api/resources", nil)
}

// GetResource returns a specific resource.
func (c *Client) GetResource(ctx context.Context, resourceID string) (map[string]any, error) {
	return c.do(ctx, "GET", "/api/resources/"+resourceID, nil)
}

// CreateResource creates a new resource of the given type.
func (c *Client) CreateResource(ctx context.Context, name, resourceType string, opts ResourceOptions) (map[string]any, error) {
	body := map[string]any{
		"name": name,
		"type": resourceType,
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}
	return c.do(ctx, "POST", "/api/resources", body)
}

// DeleteResource deletes a resource.
func (c *Client) DeleteResource(ctx context.Context, resourceID string) (map[string]any, error) {
	return c.do(ctx, "DELETE", "/api/resources/"+resourceID, nil)
}

// SetResourceAttribute sets a resource attribute.
func (c *Client) SetResourceAttribute(ctx context.Context, resourceID, name, value string) (map[string]any, error) {
	return c.do(ctx, "PUT", "/api/resources/"+resourceID+"/attributes/"+name, map[string]any{
		"value": value,
	})
}
