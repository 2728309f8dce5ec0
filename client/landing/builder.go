package landing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"incubator/portal/client/api"
	"incubator/portal/logger"
)

// ErrSectionChanged reports an uploaded image whose target section was edited
// or removed while the upload was in flight.
var ErrSectionChanged = errors.New("landing: section changed during upload")

// API is the landing-page slice of the REST client.
type API interface {
	GetLandingPage(ctx context.Context) (api.LandingPage, error)
	SaveLandingPage(ctx context.Context, p api.LandingPage) (api.LandingPage, error)
	UploadLandingImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

var _ API = (*api.Client)(nil)

// Builder couples a Draft with the server. Save overwrites the whole page.
type Builder struct {
	api API
	log logger.Logger

	mu    sync.Mutex
	draft *Draft
	// gen counts local changes; Save keeps edits made after its snapshot.
	gen uint64
}

func NewBuilder(landingAPI API, log logger.Logger) *Builder {
	if log == nil {
		log = logger.Discard
	}
	return &Builder{api: landingAPI, log: log, draft: NewDraft(api.LandingPage{})}
}

// Load replaces the draft with the saved page.
func (b *Builder) Load(ctx context.Context) error {
	page, err := b.api.GetLandingPage(ctx)
	if err != nil {
		b.log.Error("loading landing page", err)
		return fmt.Errorf("loading landing page: %w", err)
	}
	b.mu.Lock()
	b.draft = NewDraft(page)
	b.gen++
	b.mu.Unlock()
	return nil
}

// Edit runs fn against the draft under the builder lock.
func (b *Builder) Edit(fn func(d *Draft) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	return fn(b.draft)
}

// Page is a snapshot of the draft.
func (b *Builder) Page() api.LandingPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft.Page()
}

// Save rewrites sectionOrder to match position and PUTs the whole page. On
// success the draft is replaced with the server's copy, unless the server sent
// no page back or the draft was edited while the request was in flight.
func (b *Builder) Save(ctx context.Context) (api.LandingPage, error) {
	b.mu.Lock()
	page, gen := b.draft.Page(), b.gen
	b.mu.Unlock()

	saved, err := b.api.SaveLandingPage(ctx, page)
	if err != nil {
		b.log.Error("saving landing page", err)
		return api.LandingPage{}, fmt.Errorf("saving landing page: %w", err)
	}
	if isEmptyPage(saved) {
		saved = page
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		b.log.Info("landing page edited during save; keeping local draft")
		return saved, nil
	}
	b.draft = NewDraft(saved)
	return saved, nil
}

func isEmptyPage(p api.LandingPage) bool {
	return len(p.Sections) == 0 && len(p.SocialLinks) == 0 &&
		p.ThemeColor == "" && p.ThemeColor2 == "" && p.ThemeColor3 == ""
}

// UploadImage uploads r right away and stores the returned URL at fieldPath in
// section i. A failed upload leaves the draft untouched. When the sections were
// reordered during the upload the URL follows the section; when the section was
// edited or removed the URL is returned with ErrSectionChanged.
func (b *Builder) UploadImage(ctx context.Context, i int, fieldPath, filename string, r io.Reader) (string, error) {
	b.mu.Lock()
	if err := b.draft.check(i); err != nil {
		b.mu.Unlock()
		return "", err
	}
	target := b.draft.Sections[i]
	b.mu.Unlock()

	url, err := b.api.UploadLandingImage(ctx, filename, r)
	if err != nil {
		b.log.Error("uploading landing image", map[string]interface{}{"section": i, "field": fieldPath}, err)
		return "", fmt.Errorf("uploading image: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	j := b.draft.find(target, i)
	if j < 0 {
		b.log.Warn("landing section changed during upload", map[string]interface{}{"section": i, "url": url})
		return url, fmt.Errorf("%w: section %d", ErrSectionChanged, i)
	}
	b.gen++
	if err := b.draft.SetField(j, fieldPath, url); err != nil {
		return "", err
	}
	return url, nil
}
