package landing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incubator/portal/client/api"
)

type fakeAPI struct {
	page      api.LandingPage
	saved     []api.LandingPage
	uploadErr error
	// called while the request is in flight
	onSave   func()
	onUpload func()
}

func (f *fakeAPI) GetLandingPage(ctx context.Context) (api.LandingPage, error) {
	return f.page, nil
}

func (f *fakeAPI) SaveLandingPage(ctx context.Context, p api.LandingPage) (api.LandingPage, error) {
	f.saved = append(f.saved, p)
	f.page = p
	if f.onSave != nil {
		f.onSave()
	}
	return p, nil
}

func (f *fakeAPI) UploadLandingImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if f.onUpload != nil {
		f.onUpload()
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "http://localhost:8080/uploads/" + filename, nil
}

func TestBuilder_SaveRewritesOrder(t *testing.T) {
	fake := &fakeAPI{}
	b := NewBuilder(fake, nil)
	require.NoError(t, b.Load(context.Background()))

	require.NoError(t, b.Edit(func(d *Draft) error {
		d.Add(api.SectionHero)
		d.Add(api.SectionFAQ)
		d.Add(api.SectionGallery)
		if err := d.Move(2, 0); err != nil {
			return err
		}
		d.Sections[1].SectionOrder = 42
		return nil
	}))

	saved, err := b.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.saved, 1)
	assertOrdered(t, fake.saved[0])
	assert.Equal(t, api.SectionGallery, saved.Sections[0].Type)
}

func TestBuilder_UploadImage(t *testing.T) {
	fake := &fakeAPI{}
	b := NewBuilder(fake, nil)

	var hero int
	require.NoError(t, b.Edit(func(d *Draft) error {
		hero = d.Add(api.SectionHero)
		return d.SetField(hero, "title", "Launch")
	}))

	url, err := b.UploadImage(context.Background(), hero, "backgroundImage", "bg.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/bg.png", url)
	assert.Contains(t, b.Page().Sections[hero].ContentJSON, `"backgroundImage":"http://localhost:8080/uploads/bg.png"`)

	before := b.Page()
	fake.uploadErr = errors.New("too large")
	_, err = b.UploadImage(context.Background(), hero, "backgroundImage", "big.png", strings.NewReader("png"))
	require.Error(t, err)
	assert.Equal(t, before, b.Page())

	_, err = b.UploadImage(context.Background(), 9, "image", "x.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrSectionIndex)
}

func TestBuilder_SaveKeepsDraftOnEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/landing-page", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	b := NewBuilder(api.New(srv.URL), nil)
	require.NoError(t, b.Edit(func(d *Draft) error {
		d.Add(api.SectionHero)
		d.Add(api.SectionAbout)
		d.SetTheme("#111", "", "")
		return nil
	}))

	saved, err := b.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved.Sections, 2)

	p := b.Page()
	assert.Len(t, p.Sections, 2)
	assert.Equal(t, "#111", p.ThemeColor)
}

func TestBuilder_SaveKeepsEditsMadeInFlight(t *testing.T) {
	fake := &fakeAPI{}
	b := NewBuilder(fake, nil)
	require.NoError(t, b.Edit(func(d *Draft) error {
		d.Add(api.SectionHero)
		return nil
	}))
	fake.onSave = func() {
		require.NoError(t, b.Edit(func(d *Draft) error {
			d.Add(api.SectionFAQ)
			return nil
		}))
	}

	_, err := b.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.saved[0].Sections, 1)

	p := b.Page()
	require.Len(t, p.Sections, 2)
	assert.Equal(t, api.SectionFAQ, p.Sections[1].Type)
}

func TestBuilder_UploadFollowsReorderedSection(t *testing.T) {
	fake := &fakeAPI{}
	b := NewBuilder(fake, nil)
	require.NoError(t, b.Edit(func(d *Draft) error {
		d.Add(api.SectionHero)
		d.Add(api.SectionGallery)
		return nil
	}))
	fake.onUpload = func() {
		require.NoError(t, b.Edit(func(d *Draft) error { return d.MoveDown(0) }))
	}

	url, err := b.UploadImage(context.Background(), 0, "backgroundImage", "bg.png", strings.NewReader("png"))
	require.NoError(t, err)

	p := b.Page()
	assert.Equal(t, api.SectionGallery, p.Sections[0].Type)
	assert.NotContains(t, p.Sections[0].ContentJSON, url)
	assert.Equal(t, api.SectionHero, p.Sections[1].Type)
	assert.Contains(t, p.Sections[1].ContentJSON, url)
}

func TestBuilder_UploadIntoRemovedSection(t *testing.T) {
	fake := &fakeAPI{}
	b := NewBuilder(fake, nil)
	require.NoError(t, b.Edit(func(d *Draft) error {
		d.Add(api.SectionHero)
		d.Add(api.SectionGallery)
		return nil
	}))
	fake.onUpload = func() {
		require.NoError(t, b.Edit(func(d *Draft) error { return d.Remove(0) }))
	}

	url, err := b.UploadImage(context.Background(), 0, "backgroundImage", "bg.png", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrSectionChanged)
	assert.Equal(t, "http://localhost:8080/uploads/bg.png", url)

	p := b.Page()
	require.Len(t, p.Sections, 1)
	assert.NotContains(t, p.Sections[0].ContentJSON, url)
}

func TestRender(t *testing.T) {
	page := api.LandingPage{
		ThemeColor: "#123456",
		Sections: []api.Section{
			{Type: api.SectionAbout, ContentJSON: `{"title":"About us","content":"We build."}`, SectionOrder: 1},
			{Type: api.SectionHero, ContentJSON: `{"title":"Welcome"}`, SectionOrder: 0},
			{Type: api.SectionCustom, ContentJSON: `oops`, SectionOrder: 2},
		},
		SocialLinks: map[string]string{"x": "https://x.com/acme"},
	}
	out := Render(page)

	assert.Contains(t, out, "Theme: #123456 / - / -")
	assert.Less(t, strings.Index(out, "HERO: Welcome"), strings.Index(out, "ABOUT: About us"))
	assert.Contains(t, out, "content: We build.")
	assert.Contains(t, out, "CUSTOM (invalid content)")
	assert.Contains(t, out, "x: https://x.com/acme")
}
