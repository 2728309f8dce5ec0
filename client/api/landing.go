package api

import (
	"context"
	"io"
	"net/http"
)

const landingPath = "/api/landing-page"

// GetLandingPage returns the caller's tenant landing page.
func (c *Client) GetLandingPage(ctx context.Context) (LandingPage, error) {
	var out LandingPage
	err := c.do(ctx, http.MethodGet, landingPath, nil, &out)
	return out, err
}

// SaveLandingPage overwrites the whole landing page.
func (c *Client) SaveLandingPage(ctx context.Context, p LandingPage) (LandingPage, error) {
	var out LandingPage
	err := c.do(ctx, http.MethodPut, landingPath, p, &out)
	return out, err
}

// UploadLandingImage uploads one image and returns its absolute URL.
func (c *Client) UploadLandingImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var out UploadResult
	if err := c.upload(ctx, landingPath+"/images", filename, r, nil, &out); err != nil {
		return "", err
	}
	return c.ResolveURL(out.URL), nil
}
