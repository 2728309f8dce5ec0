package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const progressPath = "/api/progresstracking"

func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var out []Template
	err := c.do(ctx, http.MethodGet, progressPath+"/templates", nil, &out)
	return out, err
}

func (c *Client) GetTemplate(ctx context.Context, id int) (Template, error) {
	var out Template
	err := c.do(ctx, http.MethodGet, idPath(progressPath+"/templates", id), nil, &out)
	return out, err
}

func (c *Client) CreateTemplate(ctx context.Context, t Template) (Template, error) {
	var out Template
	err := c.do(ctx, http.MethodPost, progressPath+"/templates", t, &out)
	return out, err
}

func (c *Client) UpdateTemplate(ctx context.Context, t Template) (Template, error) {
	var out Template
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/templates", t.ID), t, &out)
	return out, err
}

func (c *Client) DeleteTemplate(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(progressPath+"/templates", id), nil, nil)
}

// ListPhases returns the phases of one template ordered by orderIndex.
func (c *Client) ListPhases(ctx context.Context, templateID int) ([]Phase, error) {
	var out []Phase
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/phases?templateId=%d", progressPath, templateID), nil, &out)
	return out, err
}

func (c *Client) CreatePhase(ctx context.Context, p Phase) (Phase, error) {
	var out Phase
	err := c.do(ctx, http.MethodPost, progressPath+"/phases", p, &out)
	return out, err
}

func (c *Client) UpdatePhase(ctx context.Context, p Phase) (Phase, error) {
	var out Phase
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/phases", p.ID), p, &out)
	return out, err
}

func (c *Client) DeletePhase(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(progressPath+"/phases", id), nil, nil)
}

// ListTasks returns the tasks of a phase, or of a whole template when phaseID is 0.
func (c *Client) ListTasks(ctx context.Context, templateID, phaseID int) ([]Task, error) {
	q := url.Values{}
	if templateID != 0 {
		q.Set("templateId", fmt.Sprint(templateID))
	}
	if phaseID != 0 {
		q.Set("phaseId", fmt.Sprint(phaseID))
	}
	var out []Task
	err := c.do(ctx, http.MethodGet, progressPath+"/tasks?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, t Task) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPost, progressPath+"/tasks", t, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, t Task) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/tasks", t.ID), t, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(progressPath+"/tasks", id), nil, nil)
}

// ListSubmissions returns submissions for a template (0 = every template visible to the caller).
func (c *Client) ListSubmissions(ctx context.Context, templateID int) ([]Submission, error) {
	path := progressPath + "/submissions"
	if templateID != 0 {
		path = fmt.Sprintf("%s?templateId=%d", path, templateID)
	}
	var out []Submission
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateSubmission(ctx context.Context, s Submission) (Submission, error) {
	var out Submission
	err := c.do(ctx, http.MethodPost, progressPath+"/submissions", s, &out)
	return out, err
}

func (c *Client) UpdateSubmission(ctx context.Context, s Submission) (Submission, error) {
	var out Submission
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/submissions", s.ID), s, &out)
	return out, err
}

func (c *Client) DeleteSubmission(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(progressPath+"/submissions", id), nil, nil)
}

// ReviewSubmission records the mentor verdict.
func (c *Client) ReviewSubmission(ctx context.Context, id int, r Review) (Submission, error) {
	var out Submission
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/submissions", id)+"/review", r, &out)
	return out, err
}

// UploadSubmissionFile attaches a file to a submission and returns the updated submission.
func (c *Client) UploadSubmissionFile(ctx context.Context, id int, filename string, r io.Reader) (Submission, error) {
	var out Submission
	err := c.upload(ctx, idPath(progressPath+"/submissions", id)+"/file", filename, r, nil, &out)
	if err == nil && out.SubmissionFileURL != nil {
		abs := c.ResolveURL(*out.SubmissionFileURL)
		out.SubmissionFileURL = &abs
	}
	return out, err
}

func (c *Client) ListAssignments(ctx context.Context) ([]Assignment, error) {
	var out []Assignment
	err := c.do(ctx, http.MethodGet, progressPath+"/assignments", nil, &out)
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	var out Assignment
	err := c.do(ctx, http.MethodPost, progressPath+"/assignments", a, &out)
	return out, err
}

func (c *Client) UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	var out Assignment
	err := c.do(ctx, http.MethodPut, idPath(progressPath+"/assignments", a.ID), a, &out)
	return out, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath(progressPath+"/assignments", id), nil, nil)
}
