package progress

const (
	SelectTemplatesQuery = `
		SELECT id, name, description, tenant_id
		FROM progress_templates
		WHERE tenant_id IS NOT DISTINCT FROM $1 OR $2
		ORDER BY id
	`
	SelectTemplateQuery = `SELECT id, name, description, tenant_id FROM progress_templates WHERE id = $1`
	InsertTemplateQuery = `
		INSERT INTO progress_templates (name, description, tenant_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, tenant_id
	`
	UpdateTemplateQuery = `
		UPDATE progress_templates SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description, tenant_id
	`
	DeleteTemplateQuery = `DELETE FROM progress_templates WHERE id = $1`

	SelectPhasesQuery = `
		SELECT id, name, order_index, template_id
		FROM progress_phases
		WHERE $1 = 0 OR template_id = $1
		ORDER BY template_id, order_index, id
	`
	SelectPhaseQuery = `SELECT id, name, order_index, template_id FROM progress_phases WHERE id = $1`
	InsertPhaseQuery = `
		INSERT INTO progress_phases (name, order_index, template_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, order_index, template_id
	`
	UpdatePhaseQuery = `
		UPDATE progress_phases SET name = $2, order_index = $3, template_id = $4
		WHERE id = $1
		RETURNING id, name, order_index, template_id
	`
	DeletePhaseQuery = `DELETE FROM progress_phases WHERE id = $1`

	// SelectTasksQuery filters by template (through the phase) and/or phase; 0 disables a filter
	SelectTasksQuery = `
		SELECT t.id, t.task_name, t.description, t.due_days, t.due_date, t.phase_id, t.mentor_id
		FROM progress_tasks t
		JOIN progress_phases p ON p.id = t.phase_id
		WHERE ($1 = 0 OR p.template_id = $1) AND ($2 = 0 OR t.phase_id = $2)
		ORDER BY p.order_index, t.id
	`
	SelectTaskQuery = `
		SELECT id, task_name, description, due_days, due_date, phase_id, mentor_id
		FROM progress_tasks WHERE id = $1
	`
	InsertTaskQuery = `
		INSERT INTO progress_tasks (task_name, description, due_days, due_date, phase_id, mentor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, task_name, description, due_days, due_date, phase_id, mentor_id
	`
	UpdateTaskQuery = `
		UPDATE progress_tasks
		SET task_name = $2, description = $3, due_days = $4, due_date = $5, phase_id = $6, mentor_id = $7
		WHERE id = $1
		RETURNING id, task_name, description, due_days, due_date, phase_id, mentor_id
	`
	DeleteTaskQuery = `DELETE FROM progress_tasks WHERE id = $1`

	submissionColumns = `s.id, s.task_id, s.startup_id, s.user_id, s.status, s.mentor_feedback, s.score, s.submission_file_url, s.created_at`

	// SelectSubmissionsQuery: $1 template filter (0 = all), $2 owner filter (0 = all)
	SelectSubmissionsQuery = `
		SELECT ` + submissionColumns + `
		FROM progress_submissions s
		JOIN progress_tasks t ON t.id = s.task_id
		JOIN progress_phases p ON p.id = t.phase_id
		WHERE ($1 = 0 OR p.template_id = $1) AND ($2 = 0 OR s.user_id = $2 OR s.startup_id = $2)
		ORDER BY s.created_at DESC, s.id DESC
	`
	SelectSubmissionQuery = `SELECT ` + submissionColumns + ` FROM progress_submissions s WHERE s.id = $1`
	InsertSubmissionQuery = `
		INSERT INTO progress_submissions AS s (task_id, startup_id, user_id, status, submission_file_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + submissionColumns
	UpdateSubmissionQuery = `
		UPDATE progress_submissions AS s
		SET task_id = $2, status = $3, submission_file_url = $4
		WHERE s.id = $1
		RETURNING ` + submissionColumns
	ReviewSubmissionQuery = `
		UPDATE progress_submissions AS s
		SET status = $2, mentor_feedback = $3, score = $4
		WHERE s.id = $1
		RETURNING ` + submissionColumns
	SetSubmissionFileQuery = `
		UPDATE progress_submissions AS s
		SET submission_file_url = $2, status = 'SUBMITTED'
		WHERE s.id = $1
		RETURNING ` + submissionColumns
	DeleteSubmissionQuery = `DELETE FROM progress_submissions WHERE id = $1`

	SelectAssignmentsQuery = `
		SELECT a.id, a.template_id, a.assigned_to_id, a.assigned_to_type, a.assigned_by_id
		FROM progress_assignments a
		JOIN progress_templates t ON t.id = a.template_id
		WHERE t.tenant_id IS NOT DISTINCT FROM $1 OR $2
		ORDER BY a.id
	`
	InsertAssignmentQuery = `
		INSERT INTO progress_assignments (template_id, assigned_to_id, assigned_to_type, assigned_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, template_id, assigned_to_id, assigned_to_type, assigned_by_id
	`
	UpdateAssignmentQuery = `
		UPDATE progress_assignments SET template_id = $2, assigned_to_id = $3, assigned_to_type = $4
		WHERE id = $1
		RETURNING id, template_id, assigned_to_id, assigned_to_type, assigned_by_id
	`
	DeleteAssignmentQuery = `DELETE FROM progress_assignments WHERE id = $1`
)
