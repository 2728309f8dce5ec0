package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	c.UseTokens(staticToken("tok-123"), nil)
	return c, srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/chat-rooms", r.URL.Path)
		json.NewEncoder(w).Encode([]ChatRoom{{ID: 1, ChatName: "Cohort", ChatType: ChatGroup}})
	})

	rooms, err := c.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, rooms, 1)
	assert.Equal(t, ChatGroup, rooms[0].ChatType)
}

func TestErrorMessageFromBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"template name already used"}`))
	})

	_, err := c.CreateTemplate(context.Background(), Template{Name: "Seed"})
	require.Error(t, err)
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusConflict, herr.StatusCode)
	assert.Equal(t, "template name already used", herr.Error())
}

func TestErrorMessageFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.DeleteNews(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
}

func TestUnauthorizedHook(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	called := false
	c.UseTokens(staticToken("expired"), func() { called = true })

	_, err := c.ListTemplates(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.True(t, called)
}

func TestUnknownFieldsAreTolerated(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"userId":3,"fullName":"Ada","email":"ada@x.io","favouriteColor":"blue"}`))
	})

	p, err := c.GetAlumniProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FullName)
	assert.Nil(t, p.StartupName)
}

func TestResolveURL(t *testing.T) {
	c := New("http://api.local:8080/")
	assert.Equal(t, "https://cdn.example.com/a.png", c.ResolveURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "http://api.local:8080/uploads/a.png", c.ResolveURL("/uploads/a.png"))
	assert.Equal(t, "http://api.local:8080/uploads/a.png", c.ResolveURL("uploads/a.png"))
	assert.Equal(t, "", c.ResolveURL(""))
}

func TestUploadLandingImage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		json.NewEncoder(w).Encode(UploadResult{URL: "/uploads/landing/logo.png"})
	})

	u, err := c.UploadLandingImage(context.Background(), "logo.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, c.BaseURL()+"/uploads/landing/logo.png", u)
}

func TestListTasksQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("templateId"))
		assert.Empty(t, r.URL.Query().Get("phaseId"))
		w.Write([]byte(`[]`))
	})

	tasks, err := c.ListTasks(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
