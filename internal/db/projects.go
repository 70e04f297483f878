package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/tgienger/taskdeck/internal/models"
)

const projectColumns = `
	p.id, p.name, p.description, p.color, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'done')
`

// CreateProject creates a new project owned by userID
func (db *DB) CreateProject(ctx context.Context, userID string, in models.ProjectInput) (*models.Project, error) {
	color := in.Color
	if color == "" {
		color = models.DefaultProjectColor
	}
	now := db.now()
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, in.Name, in.Description, color, now, now)
	if err != nil {
		return nil, err
	}

	return db.GetProject(ctx, userID, id)
}

// GetProject retrieves one of the user's projects with its task counts
func (db *DB) GetProject(ctx context.Context, userID, id string) (*models.Project, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.user_id = ? AND p.id = ?
	`, userID, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListProjects returns the user's projects, newest first
func (db *DB) ListProjects(ctx context.Context, userID string, limit, offset int) ([]models.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.user_id = ?
		ORDER BY p.created_at DESC, p.rowid DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject replaces a project's editable fields
func (db *DB) UpdateProject(ctx context.Context, userID, id string, in models.ProjectInput) (*models.Project, error) {
	color := in.Color
	if color == "" {
		color = models.DefaultProjectColor
	}
	res, err := db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`, in.Name, in.Description, color, db.now(), userID, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return db.GetProject(ctx, userID, id)
}

// DeleteProject deletes a project. Its tasks are kept and lose their
// project reference.
func (db *DB) DeleteProject(ctx context.Context, userID, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM projects WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	p := &models.Project{}
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &p.UpdatedAt, &p.TotalTasks, &p.CompletedTasks)
	if err != nil {
		return nil, err
	}
	return p, nil
}
