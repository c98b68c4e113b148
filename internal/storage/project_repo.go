// internal/storage/project_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mockden/mockden-backend/internal/domain"
)

// Specific errors for project operations
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project slug already taken")
)

// CreateProject inserts a new project registration.
func CreateProject(ctx context.Context, db *sql.DB, p *domain.Project) error {
	sqlStatement := `INSERT INTO projects (id, user_id, name, slug) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, p.ID, p.UserID, p.Name, p.Slug)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			customLog.Warnf("Storage: Constraint violation registering project '%s' for user %s: %v", p.Slug, p.UserID, err)
			return ErrProjectExists
		}
		customLog.Warnf("Storage: Failed to insert project '%s' for user %s: %v", p.Slug, p.UserID, err)
		return fmt.Errorf("database error registering project: %w", err)
	}
	return nil
}

// ListProjects returns all projects owned by a user.
func ListProjects(ctx context.Context, db *sql.DB, userId string) ([]domain.Project, error) {
	query := `SELECT id, user_id, name, slug, created_at FROM projects WHERE user_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, userId)
	if err != nil {
		customLog.Warnf("Storage: Error listing projects for user %s: %v", userId, err)
		return nil, fmt.Errorf("database error listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Slug, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed processing project list: %w", err)
		}
		projects = append(projects, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading project list: %w", err)
	}
	return projects, nil
}

// FindProjectByID retrieves a project owned by the given user.
func FindProjectByID(ctx context.Context, db *sql.DB, userId, projectId string) (*domain.Project, error) {
	query := `SELECT id, user_id, name, slug, created_at FROM projects WHERE id = ? AND user_id = ? LIMIT 1`
	row := db.QueryRowContext(ctx, query, projectId, userId)

	var p domain.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Slug, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		customLog.Warnf("Storage: Error finding project %s: %v", projectId, err)
		return nil, fmt.Errorf("database error finding project: %w", err)
	}
	return &p, nil
}

// DeleteProject removes a project and, via FK cascade, everything under it.
func DeleteProject(ctx context.Context, db *sql.DB, userId, projectId string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, projectId, userId)
	if err != nil {
		customLog.Warnf("Storage: Error deleting project %s: %v", projectId, err)
		return fmt.Errorf("database error deleting project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming project deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
