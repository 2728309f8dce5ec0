package api

import (
	"context"
	"net/http"
)

const adminRequestsPath = "/api/admin/requests"

func (c *Client) ListAdminRequests(ctx context.Context) ([]AdminRequest, error) {
	var out []AdminRequest
	err := c.do(ctx, http.MethodGet, adminRequestsPath, nil, &out)
	return out, err
}

func (c *Client) ApproveAdminRequest(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, idPath(adminRequestsPath, id)+"/approve", nil, nil)
}

func (c *Client) RejectAdminRequest(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, idPath(adminRequestsPath, id)+"/reject", nil, nil)
}
