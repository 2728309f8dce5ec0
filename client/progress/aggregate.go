// Package progress shapes already-fetched progress-tracking data: completion
// percentages, phase grouping and status styling. It never calls the server.
package progress

import (
	"math"
	"sort"

	"incubator/portal/client/api"
)

// CompletionRule decides whether a submission status counts as done.
type CompletionRule func(api.SubmissionStatus) bool

// TaskFullyClosed treats only COMPLETED submissions as done. Used by the
// dashboard table and the visualization.
func TaskFullyClosed(s api.SubmissionStatus) bool { return s == api.StatusCompleted }

// SubmissionAccepted treats APPROVED submissions as done. Used by the startup
// progress view and mentor review.
func SubmissionAccepted(s api.SubmissionStatus) bool { return s == api.StatusApproved }

// Percent returns done/total*100 rounded, or 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

type Progress struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

func newProgress(done, total int) Progress {
	return Progress{Done: done, Total: total, Percent: Percent(done, total)}
}

// CompletedTasks counts the tasks with at least one submission satisfying rule.
func CompletedTasks(tasks []api.Task, subs []api.Submission, rule CompletionRule) int {
	closed := make(map[int]bool)
	for _, s := range subs {
		if rule(s.Status) {
			closed[s.TaskID] = true
		}
	}
	n := 0
	for _, t := range tasks {
		if closed[t.ID] {
			n++
		}
	}
	return n
}

// TemplateProgress is the completion of every task of one template.
func TemplateProgress(tasks []api.Task, subs []api.Submission, rule CompletionRule) Progress {
	return newProgress(CompletedTasks(tasks, subs, rule), len(tasks))
}

// PhaseGroup is one phase with its tasks, their submissions and its progress.
type PhaseGroup struct {
	Phase       api.Phase
	Tasks       []api.Task
	Submissions []api.Submission
	Progress    Progress
}

// GroupByPhase buckets tasks and submissions by phase, ordered by orderIndex.
// Tasks whose phase is not in phases are collected in a trailing group with a
// zero Phase.
func GroupByPhase(phases []api.Phase, tasks []api.Task, subs []api.Submission, rule CompletionRule) []PhaseGroup {
	ordered := append([]api.Phase(nil), phases...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	groups := make([]PhaseGroup, len(ordered))
	byPhase := make(map[int]int, len(ordered))
	for i, p := range ordered {
		groups[i].Phase = p
		byPhase[p.ID] = i
	}

	var orphans PhaseGroup
	taskGroup := make(map[int]*PhaseGroup, len(tasks))
	for _, t := range tasks {
		g := &orphans
		if i, ok := byPhase[t.PhaseID]; ok {
			g = &groups[i]
		}
		g.Tasks = append(g.Tasks, t)
		taskGroup[t.ID] = g
	}
	for _, s := range subs {
		if g, ok := taskGroup[s.TaskID]; ok {
			g.Submissions = append(g.Submissions, s)
		}
	}

	if len(orphans.Tasks) > 0 {
		groups = append(groups, orphans)
	}
	for i := range groups {
		groups[i].Progress = TemplateProgress(groups[i].Tasks, groups[i].Submissions, rule)
	}
	return groups
}

// Row is one line of the template dashboard table.
type Row struct {
	Template api.Template
	Progress Progress
}

// DashboardRows computes per-template progress from flat phase, task and
// submission lists, using rule for completion.
func DashboardRows(templates []api.Template, phases []api.Phase, tasks []api.Task, subs []api.Submission, rule CompletionRule) []Row {
	phaseTemplate := make(map[int]int, len(phases))
	for _, p := range phases {
		phaseTemplate[p.ID] = p.TemplateID
	}
	tasksByTemplate := make(map[int][]api.Task)
	for _, t := range tasks {
		if tid, ok := phaseTemplate[t.PhaseID]; ok {
			tasksByTemplate[tid] = append(tasksByTemplate[tid], t)
		}
	}

	rows := make([]Row, 0, len(templates))
	for _, tpl := range templates {
		rows = append(rows, Row{
			Template: tpl,
			Progress: TemplateProgress(tasksByTemplate[tpl.ID], subs, rule),
		})
	}
	return rows
}
