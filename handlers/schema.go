package handlers

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		tenant_id INT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
		id SERIAL PRIMARY KEY,
		chat_name TEXT NOT NULL,
		chat_type TEXT NOT NULL CHECK (chat_type IN ('INDIVIDUAL', 'GROUP')),
		tenant_id INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS chat_room_users (
		room_id INT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (room_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id SERIAL PRIMARY KEY,
		room_id INT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		sender_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_room_time ON chat_messages (room_id, timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS progress_templates (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		tenant_id INT
	)`,
	`CREATE TABLE IF NOT EXISTS progress_phases (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		order_index INT NOT NULL DEFAULT 0,
		template_id INT NOT NULL REFERENCES progress_templates(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS progress_tasks (
		id SERIAL PRIMARY KEY,
		task_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_days INT NOT NULL DEFAULT 0,
		due_date TIMESTAMPTZ,
		phase_id INT NOT NULL REFERENCES progress_phases(id) ON DELETE CASCADE,
		mentor_id INT REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS progress_submissions (
		id SERIAL PRIMARY KEY,
		task_id INT NOT NULL REFERENCES progress_tasks(id) ON DELETE CASCADE,
		startup_id INT,
		user_id INT,
		status TEXT NOT NULL DEFAULT 'SUBMITTED',
		mentor_feedback TEXT,
		score DOUBLE PRECISION,
		submission_file_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS progress_assignments (
		id SERIAL PRIMARY KEY,
		template_id INT NOT NULL REFERENCES progress_templates(id) ON DELETE CASCADE,
		assigned_to_id INT NOT NULL,
		assigned_to_type TEXT NOT NULL,
		assigned_by_id INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS landing_pages (
		tenant_id INT PRIMARY KEY,
		page JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS alumni_profiles (
		user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		startup_name TEXT,
		graduation_year INT,
		job_title TEXT,
		mentorship_interests TEXT[],
		progress INT,
		linkedin_url TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS investor_profiles (
		user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		firm_name TEXT,
		investment_focus TEXT[],
		ticket_size_min DOUBLE PRECISION,
		ticket_size_max DOUBLE PRECISION,
		portfolio_url TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS news (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		image_url TEXT,
		reference_file_url TEXT,
		tenant_id INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS admin_requests (
		id SERIAL PRIMARY KEY,
		tenant_name TEXT NOT NULL,
		requester_email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates any missing table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
