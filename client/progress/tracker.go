package progress

import (
	"context"
	"fmt"
	"io"
	"sync"

	"incubator/portal/client/api"
	"incubator/portal/client/validate"
	"incubator/portal/logger"
)

// API is the progress-tracking slice of the REST client.
type API interface {
	ListTemplates(ctx context.Context) ([]api.Template, error)
	CreateTemplate(ctx context.Context, t api.Template) (api.Template, error)
	UpdateTemplate(ctx context.Context, t api.Template) (api.Template, error)
	DeleteTemplate(ctx context.Context, id int) error

	ListPhases(ctx context.Context, templateID int) ([]api.Phase, error)
	CreatePhase(ctx context.Context, p api.Phase) (api.Phase, error)
	UpdatePhase(ctx context.Context, p api.Phase) (api.Phase, error)
	DeletePhase(ctx context.Context, id int) error

	ListTasks(ctx context.Context, templateID, phaseID int) ([]api.Task, error)
	CreateTask(ctx context.Context, t api.Task) (api.Task, error)
	UpdateTask(ctx context.Context, t api.Task) (api.Task, error)
	DeleteTask(ctx context.Context, id int) error

	ListSubmissions(ctx context.Context, templateID int) ([]api.Submission, error)
	CreateSubmission(ctx context.Context, s api.Submission) (api.Submission, error)
	UpdateSubmission(ctx context.Context, s api.Submission) (api.Submission, error)
	DeleteSubmission(ctx context.Context, id int) error
	ReviewSubmission(ctx context.Context, id int, r api.Review) (api.Submission, error)
	UploadSubmissionFile(ctx context.Context, id int, filename string, r io.Reader) (api.Submission, error)

	ListAssignments(ctx context.Context) ([]api.Assignment, error)
	CreateAssignment(ctx context.Context, a api.Assignment) (api.Assignment, error)
	UpdateAssignment(ctx context.Context, a api.Assignment) (api.Assignment, error)
	DeleteAssignment(ctx context.Context, id int) error
}

var _ API = (*api.Client)(nil)

// Tracker holds the progress-tracking lists of one screen. Lists are never
// patched locally: every successful mutation refetches the affected list.
type Tracker struct {
	api API
	log logger.Logger

	mu          sync.RWMutex
	templateID  int
	templates   []api.Template
	phases      []api.Phase
	tasks       []api.Task
	submissions []api.Submission
	assignments []api.Assignment
}

func NewTracker(progressAPI API, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Discard
	}
	return &Tracker{api: progressAPI, log: log}
}

// Select scopes phase, task and submission lists to one template and loads them.
func (t *Tracker) Select(ctx context.Context, templateID int) error {
	t.mu.Lock()
	t.templateID = templateID
	t.mu.Unlock()

	for _, load := range []func(context.Context) error{t.refetchPhases, t.refetchTasks, t.refetchSubmissions} {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) TemplateID() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.templateID
}

func (t *Tracker) Templates() []api.Template {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Template(nil), t.templates...)
}

func (t *Tracker) Phases() []api.Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Phase(nil), t.phases...)
}

func (t *Tracker) Tasks() []api.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Task(nil), t.tasks...)
}

func (t *Tracker) Submissions() []api.Submission {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Submission(nil), t.submissions...)
}

func (t *Tracker) Assignments() []api.Assignment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Assignment(nil), t.assignments...)
}

// Progress of the selected template under rule.
func (t *Tracker) Progress(rule CompletionRule) Progress {
	return TemplateProgress(t.Tasks(), t.Submissions(), rule)
}

// Groups of the selected template under rule.
func (t *Tracker) Groups(rule CompletionRule) []PhaseGroup {
	return GroupByPhase(t.Phases(), t.Tasks(), t.Submissions(), rule)
}

func (t *Tracker) LoadTemplates(ctx context.Context) error {
	list, err := t.api.ListTemplates(ctx)
	if err != nil {
		t.log.Error("loading templates", err)
		return fmt.Errorf("loading templates: %w", err)
	}
	t.mu.Lock()
	t.templates = list
	t.mu.Unlock()
	return nil
}

func (t *Tracker) LoadAssignments(ctx context.Context) error {
	list, err := t.api.ListAssignments(ctx)
	if err != nil {
		t.log.Error("loading assignments", err)
		return fmt.Errorf("loading assignments: %w", err)
	}
	t.mu.Lock()
	t.assignments = list
	t.mu.Unlock()
	return nil
}

func (t *Tracker) refetchPhases(ctx context.Context) error {
	list, err := t.api.ListPhases(ctx, t.TemplateID())
	if err != nil {
		t.log.Error("loading phases", err)
		return fmt.Errorf("loading phases: %w", err)
	}
	t.mu.Lock()
	t.phases = list
	t.mu.Unlock()
	return nil
}

func (t *Tracker) refetchTasks(ctx context.Context) error {
	list, err := t.api.ListTasks(ctx, t.TemplateID(), 0)
	if err != nil {
		t.log.Error("loading tasks", err)
		return fmt.Errorf("loading tasks: %w", err)
	}
	t.mu.Lock()
	t.tasks = list
	t.mu.Unlock()
	return nil
}

func (t *Tracker) refetchSubmissions(ctx context.Context) error {
	list, err := t.api.ListSubmissions(ctx, t.TemplateID())
	if err != nil {
		t.log.Error("loading submissions", err)
		return fmt.Errorf("loading submissions: %w", err)
	}
	t.mu.Lock()
	t.submissions = list
	t.mu.Unlock()
	return nil
}

// mutate validates form (when non-nil), runs op and refetches on success.
func (t *Tracker) mutate(ctx context.Context, what string, form interface{}, op func() error, refetch func(context.Context) error) error {
	if form != nil {
		if err := validate.Struct(form); err != nil {
			return err
		}
	}
	if err := op(); err != nil {
		t.log.Error(what, err)
		return fmt.Errorf("%s: %w", what, err)
	}
	return refetch(ctx)
}

func (t *Tracker) CreateTemplate(ctx context.Context, in api.Template) error {
	return t.mutate(ctx, "creating template", in, func() error {
		_, err := t.api.CreateTemplate(ctx, in)
		return err
	}, t.LoadTemplates)
}

func (t *Tracker) UpdateTemplate(ctx context.Context, in api.Template) error {
	return t.mutate(ctx, "updating template", in, func() error {
		_, err := t.api.UpdateTemplate(ctx, in)
		return err
	}, t.LoadTemplates)
}

func (t *Tracker) DeleteTemplate(ctx context.Context, id int) error {
	return t.mutate(ctx, "deleting template", nil, func() error {
		return t.api.DeleteTemplate(ctx, id)
	}, t.LoadTemplates)
}

func (t *Tracker) CreatePhase(ctx context.Context, in api.Phase) error {
	return t.mutate(ctx, "creating phase", in, func() error {
		_, err := t.api.CreatePhase(ctx, in)
		return err
	}, t.refetchPhases)
}

func (t *Tracker) UpdatePhase(ctx context.Context, in api.Phase) error {
	return t.mutate(ctx, "updating phase", in, func() error {
		_, err := t.api.UpdatePhase(ctx, in)
		return err
	}, t.refetchPhases)
}

func (t *Tracker) DeletePhase(ctx context.Context, id int) error {
	return t.mutate(ctx, "deleting phase", nil, func() error {
		return t.api.DeletePhase(ctx, id)
	}, t.refetchPhases)
}

func (t *Tracker) CreateTask(ctx context.Context, in api.Task) error {
	return t.mutate(ctx, "creating task", in, func() error {
		_, err := t.api.CreateTask(ctx, in)
		return err
	}, t.refetchTasks)
}

func (t *Tracker) UpdateTask(ctx context.Context, in api.Task) error {
	return t.mutate(ctx, "updating task", in, func() error {
		_, err := t.api.UpdateTask(ctx, in)
		return err
	}, t.refetchTasks)
}

func (t *Tracker) DeleteTask(ctx context.Context, id int) error {
	return t.mutate(ctx, "deleting task", nil, func() error {
		return t.api.DeleteTask(ctx, id)
	}, t.refetchTasks)
}

func (t *Tracker) CreateSubmission(ctx context.Context, in api.Submission) error {
	return t.mutate(ctx, "creating submission", in, func() error {
		_, err := t.api.CreateSubmission(ctx, in)
		return err
	}, t.refetchSubmissions)
}

func (t *Tracker) UpdateSubmission(ctx context.Context, in api.Submission) error {
	return t.mutate(ctx, "updating submission", in, func() error {
		_, err := t.api.UpdateSubmission(ctx, in)
		return err
	}, t.refetchSubmissions)
}

func (t *Tracker) DeleteSubmission(ctx context.Context, id int) error {
	return t.mutate(ctx, "deleting submission", nil, func() error {
		return t.api.DeleteSubmission(ctx, id)
	}, t.refetchSubmissions)
}

// ReviewSubmission records a mentor verdict and refetches submissions.
func (t *Tracker) ReviewSubmission(ctx context.Context, id int, review api.Review) error {
	return t.mutate(ctx, "reviewing submission", review, func() error {
		_, err := t.api.ReviewSubmission(ctx, id, review)
		return err
	}, t.refetchSubmissions)
}

func (t *Tracker) UploadSubmissionFile(ctx context.Context, id int, filename string, r io.Reader) error {
	return t.mutate(ctx, "uploading submission file", nil, func() error {
		_, err := t.api.UploadSubmissionFile(ctx, id, filename, r)
		return err
	}, t.refetchSubmissions)
}

func (t *Tracker) CreateAssignment(ctx context.Context, in api.Assignment) error {
	return t.mutate(ctx, "creating assignment", in, func() error {
		_, err := t.api.CreateAssignment(ctx, in)
		return err
	}, t.LoadAssignments)
}

func (t *Tracker) UpdateAssignment(ctx context.Context, in api.Assignment) error {
	return t.mutate(ctx, "updating assignment", in, func() error {
		_, err := t.api.UpdateAssignment(ctx, in)
		return err
	}, t.LoadAssignments)
}

func (t *Tracker) DeleteAssignment(ctx context.Context, id int) error {
	return t.mutate(ctx, "deleting assignment", nil, func() error {
		return t.api.DeleteAssignment(ctx, id)
	}, t.LoadAssignments)
}
