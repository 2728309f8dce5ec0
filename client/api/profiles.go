package api

import (
	"context"
	"net/http"
)

func (c *Client) GetAlumniProfile(ctx context.Context) (AlumniProfile, error) {
	var out AlumniProfile
	err := c.do(ctx, http.MethodGet, "/api/profile/alumni/me", nil, &out)
	return out, err
}

func (c *Client) UpdateAlumniProfile(ctx context.Context, p AlumniProfile) (AlumniProfile, error) {
	var out AlumniProfile
	err := c.do(ctx, http.MethodPut, "/api/profile/alumni/me", p, &out)
	return out, err
}

func (c *Client) GetInvestorProfile(ctx context.Context) (InvestorProfile, error) {
	var out InvestorProfile
	err := c.do(ctx, http.MethodGet, "/api/profile/investor/me", nil, &out)
	return out, err
}

func (c *Client) UpdateInvestorProfile(ctx context.Context, p InvestorProfile) (InvestorProfile, error) {
	var out InvestorProfile
	err := c.do(ctx, http.MethodPut, "/api/profile/investor/me", p, &out)
	return out, err
}
