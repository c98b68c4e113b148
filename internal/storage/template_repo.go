// internal/storage/template_repo.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mockden/mockden-backend/internal/domain"
)

// Specific errors for template operations
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateInUse    = errors.New("template is referenced by an endpoint")
)

// CreateTemplate inserts a new template. The JSON document has already been
// checked for well-formedness by the handler.
func CreateTemplate(ctx context.Context, db *sql.DB, t *domain.Template) error {
	sqlStatement := `INSERT INTO templates (id, project_id, name, description, json) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, sqlStatement, t.ID, t.ProjectID, t.Name, t.Description, string(t.JSON)); err != nil {
		customLog.Warnf("Storage: Failed to insert template '%s' in project %s: %v", t.Name, t.ProjectID, err)
		return fmt.Errorf("database error creating template: %w", err)
	}
	return nil
}

func scanTemplate(row interface{ Scan(...any) error }) (*domain.Template, error) {
	var t domain.Template
	var doc string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &doc, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.JSON = json.RawMessage(doc)
	return &t, nil
}

// FindTemplateByID retrieves a template scoped to a project.
func FindTemplateByID(ctx context.Context, db *sql.DB, projectId, templateId string) (*domain.Template, error) {
	query := `SELECT id, project_id, name, description, json, created_at, updated_at
		FROM templates WHERE id = ? AND project_id = ? LIMIT 1`
	t, err := scanTemplate(db.QueryRowContext(ctx, query, templateId, projectId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		customLog.Warnf("Storage: Error finding template %s: %v", templateId, err)
		return nil, fmt.Errorf("database error finding template: %w", err)
	}
	return t, nil
}

// FindTemplateJSON loads just the stored document, project-agnostic. Used by
// the resolution path.
func FindTemplateJSON(ctx context.Context, db *sql.DB, templateId string) (json.RawMessage, error) {
	var doc string
	err := db.QueryRowContext(ctx, `SELECT json FROM templates WHERE id = ? LIMIT 1`, templateId).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("database error finding template document: %w", err)
	}
	return json.RawMessage(doc), nil
}

// ListTemplates returns all templates in a project.
func ListTemplates(ctx context.Context, db *sql.DB, projectId string) ([]domain.Template, error) {
	query := `SELECT id, project_id, name, description, json, created_at, updated_at
		FROM templates WHERE project_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error listing templates for project %s: %v", projectId, err)
		return nil, fmt.Errorf("database error listing templates: %w", err)
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing template list: %w", err)
		}
		templates = append(templates, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading template list: %w", err)
	}
	return templates, nil
}

// UpdateTemplate replaces a template's name, description and document.
func UpdateTemplate(ctx context.Context, db *sql.DB, t *domain.Template) error {
	sqlStatement := `UPDATE templates SET name = ?, description = ?, json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND project_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, t.Name, t.Description, string(t.JSON), t.ID, t.ProjectID)
	if err != nil {
		customLog.Warnf("Storage: Failed to update template %s: %v", t.ID, err)
		return fmt.Errorf("database error updating template: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming template update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// DeleteTemplate removes a template. Deletion is blocked while any endpoint
// references it as a data source.
func DeleteTemplate(ctx context.Context, db *sql.DB, projectId, templateId string) error {
	var refs int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM endpoints WHERE template_id = ?`, templateId).Scan(&refs); err != nil {
		return fmt.Errorf("database error checking template references: %w", err)
	}
	if refs > 0 {
		return ErrTemplateInUse
	}

	result, err := db.ExecContext(ctx, `DELETE FROM templates WHERE id = ? AND project_id = ?`, templateId, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error deleting template %s: %v", templateId, err)
		return fmt.Errorf("database error deleting template: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming template deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
