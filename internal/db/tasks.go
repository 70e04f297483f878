package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tgienger/taskdeck/internal/models"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
		t.project_id, p.name, p.color, t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN projects p ON p.id = t.project_id
`

// TaskListOptions narrows and pages a task listing
type TaskListOptions struct {
	Filter models.TaskFilter
	Limit  int
	Offset int
}

// CreateTask creates a new task owned by userID. Status defaults to todo.
func (db *DB) CreateTask(ctx context.Context, userID string, in models.TaskInput) (*models.Task, error) {
	status := in.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := db.now()
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, project_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, nullable(in.ProjectID), in.Title, in.Description, string(status), string(priority), nullable(in.DueDate), now, now)
	if err != nil {
		return nil, err
	}

	return db.GetTask(ctx, userID, id)
}

// GetTask retrieves one of the user's tasks with its project summary
func (db *DB) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	row := db.QueryRowContext(ctx, taskSelect+" WHERE t.user_id = ? AND t.id = ?", userID, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListTasks returns the user's tasks matching opts, newest first. Search
// matches title or description without regard to case.
func (db *DB) ListTasks(ctx context.Context, userID string, opts TaskListOptions) ([]models.Task, error) {
	query := taskSelect + " WHERE t.user_id = ?"
	args := []any{userID}

	f := opts.Filter
	if f.Status != "" {
		query += " AND t.status = ?"
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		query += " AND t.priority = ?"
		args = append(args, string(f.Priority))
	}
	if f.ProjectID != "" {
		query += " AND t.project_id = ?"
		args = append(args, f.ProjectID)
	}
	if f.Search != "" {
		query += " AND (LOWER(t.title) LIKE ? OR LOWER(t.description) LIKE ?)"
		searchPattern := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, searchPattern, searchPattern)
	}

	query += " ORDER BY t.created_at DESC, t.rowid DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask replaces a task's editable fields. A nil project or due date
// clears it; an empty status or priority keeps the stored value.
func (db *DB) UpdateTask(ctx context.Context, userID, id string, in models.TaskInput) (*models.Task, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?,
			description = ?,
			status = COALESCE(NULLIF(?, ''), status),
			priority = COALESCE(NULLIF(?, ''), priority),
			due_date = ?,
			project_id = ?,
			updated_at = ?
		WHERE user_id = ? AND id = ?
	`, in.Title, in.Description, string(in.Status), string(in.Priority), nullable(in.DueDate), nullable(in.ProjectID), db.now(), userID, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return db.GetTask(ctx, userID, id)
}

// UpdateTaskStatus changes only the status of a task
func (db *DB) UpdateTaskStatus(ctx context.Context, userID, id string, status models.TaskStatus) (*models.Task, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ? WHERE user_id = ? AND id = ?
	`, string(status), db.now(), userID, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return db.GetTask(ctx, userID, id)
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		status, priority string
		dueDate          sql.NullString
		projectID        sql.NullString
		projectName      sql.NullString
		projectColor     sql.NullString
	)
	err := s.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate,
		&projectID, &projectName, &projectColor, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	if dueDate.Valid && dueDate.String != "" {
		d, err := models.ParseDate(dueDate.String)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if projectID.Valid {
		id := projectID.String
		t.ProjectID = &id
		t.Project = &models.ProjectRef{ID: id, Name: projectName.String, Color: projectColor.String}
	}
	return t, nil
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
