// internal/storage/endpoint_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mockden/mockden-backend/internal/domain"
)

// Specific errors for endpoint operations
var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrRouteExists      = errors.New("route already exists in this project")
)

// CreateEndpoint inserts a new endpoint definition. Exactly one of
// TemplateID/SchemaID must be set; APIKey is set iff the endpoint is private.
func CreateEndpoint(ctx context.Context, db *sql.DB, e *domain.Endpoint) error {
	sqlStatement := `INSERT INTO endpoints
		(id, project_id, route, name, description, access_mode, source_kind, template_id, schema_id, api_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement,
		e.ID, e.ProjectID, e.Route, e.Name, e.Description, string(e.AccessMode), string(e.SourceKind),
		e.TemplateID, e.SchemaID, e.APIKey)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			customLog.Warnf("Storage: Route conflict for '%s' in project %s: %v", e.Route, e.ProjectID, err)
			return ErrRouteExists
		}
		customLog.Warnf("Storage: Failed to insert endpoint '%s': %v", e.Route, err)
		return fmt.Errorf("database error creating endpoint: %w", err)
	}
	return nil
}

func scanEndpoint(row interface{ Scan(...any) error }) (*domain.Endpoint, error) {
	var e domain.Endpoint
	var mode, kind string
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Route, &e.Name, &e.Description, &mode, &kind,
		&e.TemplateID, &e.SchemaID, &e.APIKey, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.AccessMode = domain.AccessMode(mode)
	e.SourceKind = domain.SourceKind(kind)
	return &e, nil
}

const endpointColumns = `id, project_id, route, name, description, access_mode, source_kind,
	template_id, schema_id, api_key, created_at, updated_at`

// FindEndpointByID retrieves an endpoint scoped to a project.
func FindEndpointByID(ctx context.Context, db *sql.DB, projectId, endpointId string) (*domain.Endpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoints WHERE id = ? AND project_id = ? LIMIT 1`
	e, err := scanEndpoint(db.QueryRowContext(ctx, query, endpointId, projectId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		customLog.Warnf("Storage: Error finding endpoint %s: %v", endpointId, err)
		return nil, fmt.Errorf("database error finding endpoint: %w", err)
	}
	return e, nil
}

// FindEndpointByRoute looks up an endpoint by its fully qualified route.
// The match is exact and case-sensitive; this is the registry lookup the
// resolution engine performs per request.
func FindEndpointByRoute(ctx context.Context, db *sql.DB, fullRoute string) (*domain.Endpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoints WHERE route = ? LIMIT 1`
	e, err := scanEndpoint(db.QueryRowContext(ctx, query, fullRoute))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		customLog.Warnf("Storage: Error looking up route '%s': %v", fullRoute, err)
		return nil, fmt.Errorf("database error looking up route: %w", err)
	}
	return e, nil
}

// ListEndpoints returns all endpoints in a project.
func ListEndpoints(ctx context.Context, db *sql.DB, projectId string) ([]domain.Endpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoints WHERE project_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error listing endpoints for project %s: %v", projectId, err)
		return nil, fmt.Errorf("database error listing endpoints: %w", err)
	}
	defer rows.Close()

	endpoints := make([]domain.Endpoint, 0)
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing endpoint list: %w", err)
		}
		endpoints = append(endpoints, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading endpoint list: %w", err)
	}
	return endpoints, nil
}

// UpdateEndpoint rewrites every mutable column in a single statement so that
// a data-source switch sets the new reference and clears the old one
// atomically, and a key change never lands separately from its access mode.
func UpdateEndpoint(ctx context.Context, db *sql.DB, e *domain.Endpoint) error {
	sqlStatement := `UPDATE endpoints SET
		route = ?, name = ?, description = ?, access_mode = ?, source_kind = ?,
		template_id = ?, schema_id = ?, api_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND project_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement,
		e.Route, e.Name, e.Description, string(e.AccessMode), string(e.SourceKind),
		e.TemplateID, e.SchemaID, e.APIKey, e.ID, e.ProjectID)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrRouteExists
		}
		customLog.Warnf("Storage: Failed to update endpoint %s: %v", e.ID, err)
		return fmt.Errorf("database error updating endpoint: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming endpoint update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// DeleteEndpoint removes an endpoint definition.
func DeleteEndpoint(ctx context.Context, db *sql.DB, projectId, endpointId string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM endpoints WHERE id = ? AND project_id = ?`, endpointId, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error deleting endpoint %s: %v", endpointId, err)
		return fmt.Errorf("database error deleting endpoint: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming endpoint deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// EndpointIDsBySchema returns the ids of endpoints serving a schema. Used to
// invalidate cached payloads when the schema or its entries change.
func EndpointIDsBySchema(ctx context.Context, db *sql.DB, schemaId string) ([]string, error) {
	return endpointIDsWhere(ctx, db, `SELECT id FROM endpoints WHERE schema_id = ?`, schemaId)
}

// EndpointIDsByTemplate returns the ids of endpoints serving a template.
func EndpointIDsByTemplate(ctx context.Context, db *sql.DB, templateId string) ([]string, error) {
	return endpointIDsWhere(ctx, db, `SELECT id FROM endpoints WHERE template_id = ?`, templateId)
}

func endpointIDsWhere(ctx context.Context, db *sql.DB, query string, arg any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("database error listing endpoint ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed processing endpoint ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading endpoint ids: %w", err)
	}
	return ids, nil
}
