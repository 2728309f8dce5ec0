package profile

const (
	// SelectAlumniProfileQuery left-joins so a user without a profile row still gets one
	SelectAlumniProfileQuery = `
		SELECT u.id, u.full_name, u.email,
			p.startup_name, p.graduation_year, p.job_title,
			COALESCE(p.mentorship_interests, '{}'), p.progress, p.linkedin_url
		FROM users u
		LEFT JOIN alumni_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`

	UpsertAlumniProfileQuery = `
		INSERT INTO alumni_profiles (
			user_id, startup_name, graduation_year, job_title,
			mentorship_interests, progress, linkedin_url, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			startup_name = EXCLUDED.startup_name,
			graduation_year = EXCLUDED.graduation_year,
			job_title = EXCLUDED.job_title,
			mentorship_interests = EXCLUDED.mentorship_interests,
			progress = EXCLUDED.progress,
			linkedin_url = EXCLUDED.linkedin_url,
			updated_at = CURRENT_TIMESTAMP
	`

	SelectInvestorProfileQuery = `
		SELECT u.id, u.full_name, u.email,
			p.firm_name, COALESCE(p.investment_focus, '{}'),
			p.ticket_size_min, p.ticket_size_max, p.portfolio_url
		FROM users u
		LEFT JOIN investor_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`

	UpsertInvestorProfileQuery = `
		INSERT INTO investor_profiles (
			user_id, firm_name, investment_focus, ticket_size_min,
			ticket_size_max, portfolio_url, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			firm_name = EXCLUDED.firm_name,
			investment_focus = EXCLUDED.investment_focus,
			ticket_size_min = EXCLUDED.ticket_size_min,
			ticket_size_max = EXCLUDED.ticket_size_max,
			portfolio_url = EXCLUDED.portfolio_url,
			updated_at = CURRENT_TIMESTAMP
	`
)
