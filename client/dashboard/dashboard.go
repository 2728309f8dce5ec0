// Package dashboard loads the data behind each role's home screen. Every
// loader issues its fetches concurrently and settles them all: a failed fetch
// is logged and recorded in Errors while its slice stays empty.
package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"incubator/portal/client/api"
	"incubator/portal/client/progress"
	"incubator/portal/logger"
)

// API is everything the dashboards read.
type API interface {
	GetAlumniProfile(ctx context.Context) (api.AlumniProfile, error)
	GetInvestorProfile(ctx context.Context) (api.InvestorProfile, error)
	ListNews(ctx context.Context) ([]api.News, error)
	ListRooms(ctx context.Context) ([]api.ChatRoom, error)
	ListTemplates(ctx context.Context) ([]api.Template, error)
	ListPhases(ctx context.Context, templateID int) ([]api.Phase, error)
	ListTasks(ctx context.Context, templateID, phaseID int) ([]api.Task, error)
	ListSubmissions(ctx context.Context, templateID int) ([]api.Submission, error)
	ListAssignments(ctx context.Context) ([]api.Assignment, error)
	GetLandingPage(ctx context.Context) (api.LandingPage, error)
	ListAdminRequests(ctx context.Context) ([]api.AdminRequest, error)
}

var _ API = (*api.Client)(nil)

// Slice names used as keys of Errors.
const (
	SliceProfile     = "profile"
	SliceNews        = "news"
	SliceRooms       = "rooms"
	SliceTemplates   = "templates"
	SliceTasks       = "tasks"
	SlicePhases      = "phases"
	SliceSubmissions = "submissions"
	SliceAssignments = "assignments"
	SliceLanding     = "landing"
	SliceRequests    = "requests"
)

// settle runs fetches concurrently and collects failures by slice name.
type settle struct {
	g   errgroup.Group
	log logger.Logger

	mu   sync.Mutex
	errs map[string]error
}

func newSettle(log logger.Logger) *settle {
	if log == nil {
		log = logger.Discard
	}
	return &settle{log: log, errs: map[string]error{}}
}

func (s *settle) fetch(slice string, fn func() error) {
	s.g.Go(func() error {
		if err := fn(); err != nil {
			s.log.Error("dashboard fetch failed", map[string]interface{}{"slice": slice}, err)
			s.mu.Lock()
			s.errs[slice] = err
			s.mu.Unlock()
		}
		return nil
	})
}

func (s *settle) wait() map[string]error {
	_ = s.g.Wait()
	return s.errs
}

type Alumni struct {
	Profile *api.AlumniProfile
	News    []api.News
	Rooms   []api.ChatRoom
	Errors  map[string]error
}

func LoadAlumni(ctx context.Context, c API, log logger.Logger) *Alumni {
	d := &Alumni{}
	s := newSettle(log)
	s.fetch(SliceProfile, func() error {
		p, err := c.GetAlumniProfile(ctx)
		if err == nil {
			d.Profile = &p
		}
		return err
	})
	s.fetch(SliceNews, func() error { v, err := c.ListNews(ctx); d.News = keep(v, err); return err })
	s.fetch(SliceRooms, func() error { v, err := c.ListRooms(ctx); d.Rooms = keep(v, err); return err })
	d.Errors = s.wait()
	return d
}

type Investor struct {
	Profile *api.InvestorProfile
	News    []api.News
	Rooms   []api.ChatRoom
	Errors  map[string]error
}

func LoadInvestor(ctx context.Context, c API, log logger.Logger) *Investor {
	d := &Investor{}
	s := newSettle(log)
	s.fetch(SliceProfile, func() error {
		p, err := c.GetInvestorProfile(ctx)
		if err == nil {
			d.Profile = &p
		}
		return err
	})
	s.fetch(SliceNews, func() error { v, err := c.ListNews(ctx); d.News = keep(v, err); return err })
	s.fetch(SliceRooms, func() error { v, err := c.ListRooms(ctx); d.Rooms = keep(v, err); return err })
	d.Errors = s.wait()
	return d
}

// Mentor also carries the per-template table, counting COMPLETED submissions.
type Mentor struct {
	Templates   []api.Template
	Tasks       []api.Task
	Phases      []api.Phase
	Submissions []api.Submission
	Rooms       []api.ChatRoom
	Rows        []progress.Row
	Errors      map[string]error
}

func LoadMentor(ctx context.Context, c API, log logger.Logger) *Mentor {
	d := &Mentor{}
	s := newSettle(log)
	s.fetch(SliceTemplates, func() error { v, err := c.ListTemplates(ctx); d.Templates = keep(v, err); return err })
	s.fetch(SliceTasks, func() error { v, err := c.ListTasks(ctx, 0, 0); d.Tasks = keep(v, err); return err })
	s.fetch(SliceSubmissions, func() error { v, err := c.ListSubmissions(ctx, 0); d.Submissions = keep(v, err); return err })
	s.fetch(SliceRooms, func() error { v, err := c.ListRooms(ctx); d.Rooms = keep(v, err); return err })
	d.Errors = s.wait()

	// Phases are per template; they are needed to map tasks onto templates.
	p := newSettle(log)
	phases := make([][]api.Phase, len(d.Templates))
	for i, tpl := range d.Templates {
		i, id := i, tpl.ID
		p.fetch(SlicePhases, func() error { v, err := c.ListPhases(ctx, id); phases[i] = keep(v, err); return err })
	}
	for k, err := range p.wait() {
		d.Errors[k] = err
	}
	for _, list := range phases {
		d.Phases = append(d.Phases, list...)
	}

	d.Rows = progress.DashboardRows(d.Templates, d.Phases, d.Tasks, d.Submissions, progress.TaskFullyClosed)
	return d
}

type TenantAdmin struct {
	Templates   []api.Template
	Assignments []api.Assignment
	News        []api.News
	Landing     *api.LandingPage
	Errors      map[string]error
}

func LoadTenantAdmin(ctx context.Context, c API, log logger.Logger) *TenantAdmin {
	d := &TenantAdmin{}
	s := newSettle(log)
	s.fetch(SliceTemplates, func() error { v, err := c.ListTemplates(ctx); d.Templates = keep(v, err); return err })
	s.fetch(SliceAssignments, func() error { v, err := c.ListAssignments(ctx); d.Assignments = keep(v, err); return err })
	s.fetch(SliceNews, func() error { v, err := c.ListNews(ctx); d.News = keep(v, err); return err })
	s.fetch(SliceLanding, func() error {
		page, err := c.GetLandingPage(ctx)
		if err == nil {
			d.Landing = &page
		}
		return err
	})
	d.Errors = s.wait()
	return d
}

type SuperAdmin struct {
	Requests []api.AdminRequest
	News     []api.News
	Errors   map[string]error
}

func LoadSuperAdmin(ctx context.Context, c API, log logger.Logger) *SuperAdmin {
	d := &SuperAdmin{}
	s := newSettle(log)
	s.fetch(SliceRequests, func() error { v, err := c.ListAdminRequests(ctx); d.Requests = keep(v, err); return err })
	s.fetch(SliceNews, func() error { v, err := c.ListNews(ctx); d.News = keep(v, err); return err })
	d.Errors = s.wait()
	return d
}

// keep turns a failed or missing fetch into an empty, non-nil slice.
func keep[T any](v []T, err error) []T {
	if err != nil || v == nil {
		return []T{}
	}
	return v
}
