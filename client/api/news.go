package api

import (
	"context"
	"io"
	"net/http"
)

const newsPath = "/api/v1/news"

func (c *Client) ListNews(ctx context.Context) ([]News, error) {
	var out []News
	err := c.do(ctx, http.MethodGet, newsPath, nil, &out)
	return out, err
}

func (c *Client) CreateNews(ctx context.Context, n News) (News, error) {
	var out News
	err := c.do(ctx, http.MethodPost, newsPath, n, &out)
	return out, err
}

func (c *Client) UpdateNews(ctx context.Context, n News) (News, error) {
	var out News
	err := c.do(ctx, http.MethodPut, idPath(newsPath, n.ID), n, &out)
	return out, err
}

func (c *Client) DeleteNews(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(newsPath, id), nil, nil)
}

// UploadNewsFile uploads a news image or reference file; kind is "image" or "reference".
func (c *Client) UploadNewsFile(ctx context.Context, kind, filename string, r io.Reader) (string, error) {
	var out UploadResult
	if err := c.upload(ctx, newsPath+"/upload", filename, r, map[string]string{"kind": kind}, &out); err != nil {
		return "", err
	}
	return c.ResolveURL(out.URL), nil
}
