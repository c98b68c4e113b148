// internal/storage/schema_repo.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/schema"
)

// Specific errors for schema/entry operations
var (
	ErrSchemaNotFound = errors.New("schema not found")
	ErrSchemaInUse    = errors.New("schema is referenced by an endpoint")
	ErrEntryNotFound  = errors.New("entry not found")
)

// CreateSchema inserts a new schema. Fields are stored as a JSON document;
// the caller has already run the structural check.
func CreateSchema(ctx context.Context, db *sql.DB, s *domain.Schema) error {
	fieldsJSON, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to serialize schema fields: %w", err)
	}
	sqlStatement := `INSERT INTO schemas (id, project_id, name, description, fields) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, sqlStatement, s.ID, s.ProjectID, s.Name, s.Description, string(fieldsJSON)); err != nil {
		customLog.Warnf("Storage: Failed to insert schema '%s' in project %s: %v", s.Name, s.ProjectID, err)
		return fmt.Errorf("database error creating schema: %w", err)
	}
	return nil
}

func scanSchema(row interface{ Scan(...any) error }) (*domain.Schema, error) {
	var s domain.Schema
	var fieldsJSON string
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Description, &fieldsJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &s.Fields); err != nil {
		return nil, fmt.Errorf("failed to parse stored schema fields: %w", err)
	}
	return &s, nil
}

// FindSchemaByID retrieves a schema scoped to a project.
func FindSchemaByID(ctx context.Context, db *sql.DB, projectId, schemaId string) (*domain.Schema, error) {
	query := `SELECT id, project_id, name, description, fields, created_at, updated_at
		FROM schemas WHERE id = ? AND project_id = ? LIMIT 1`
	s, err := scanSchema(db.QueryRowContext(ctx, query, schemaId, projectId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSchemaNotFound
		}
		customLog.Warnf("Storage: Error finding schema %s: %v", schemaId, err)
		return nil, fmt.Errorf("database error finding schema: %w", err)
	}
	return s, nil
}

// FindSchemaFields loads just the field list of a schema, project-agnostic.
// Used by the resolution path and by entry validation.
func FindSchemaFields(ctx context.Context, db *sql.DB, schemaId string) ([]schema.FieldDefinition, error) {
	var fieldsJSON string
	err := db.QueryRowContext(ctx, `SELECT fields FROM schemas WHERE id = ? LIMIT 1`, schemaId).Scan(&fieldsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSchemaNotFound
		}
		return nil, fmt.Errorf("database error finding schema fields: %w", err)
	}
	var fields []schema.FieldDefinition
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse stored schema fields: %w", err)
	}
	return fields, nil
}

// ListSchemas returns all schemas in a project.
func ListSchemas(ctx context.Context, db *sql.DB, projectId string) ([]domain.Schema, error) {
	query := `SELECT id, project_id, name, description, fields, created_at, updated_at
		FROM schemas WHERE project_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error listing schemas for project %s: %v", projectId, err)
		return nil, fmt.Errorf("database error listing schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]domain.Schema, 0)
	for rows.Next() {
		s, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing schema list: %w", err)
		}
		schemas = append(schemas, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading schema list: %w", err)
	}
	return schemas, nil
}

// UpdateSchema replaces a schema's name, description and field list.
func UpdateSchema(ctx context.Context, db *sql.DB, s *domain.Schema) error {
	fieldsJSON, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to serialize schema fields: %w", err)
	}
	sqlStatement := `UPDATE schemas SET name = ?, description = ?, fields = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND project_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, s.Name, s.Description, string(fieldsJSON), s.ID, s.ProjectID)
	if err != nil {
		customLog.Warnf("Storage: Failed to update schema %s: %v", s.ID, err)
		return fmt.Errorf("database error updating schema: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming schema update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSchemaNotFound
	}
	return nil
}

// DeleteSchema removes a schema and (via FK cascade) its entries. Deletion is
// blocked while any endpoint references the schema as its data source.
func DeleteSchema(ctx context.Context, db *sql.DB, projectId, schemaId string) error {
	var refs int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM endpoints WHERE schema_id = ?`, schemaId).Scan(&refs); err != nil {
		return fmt.Errorf("database error checking schema references: %w", err)
	}
	if refs > 0 {
		return ErrSchemaInUse
	}

	result, err := db.ExecContext(ctx, `DELETE FROM schemas WHERE id = ? AND project_id = ?`, schemaId, projectId)
	if err != nil {
		customLog.Warnf("Storage: Error deleting schema %s: %v", schemaId, err)
		return fmt.Errorf("database error deleting schema: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming schema deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSchemaNotFound
	}
	return nil
}

// --- Entry Operations ---

// CreateEntry inserts a validated, coerced record for a schema.
func CreateEntry(ctx context.Context, db *sql.DB, e *domain.Entry) error {
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize entry data: %w", err)
	}
	sqlStatement := `INSERT INTO entries (id, schema_id, data) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, sqlStatement, e.ID, e.SchemaID, string(dataJSON)); err != nil {
		customLog.Warnf("Storage: Failed to insert entry for schema %s: %v", e.SchemaID, err)
		return fmt.Errorf("database error creating entry: %w", err)
	}
	return nil
}

func scanEntry(row interface{ Scan(...any) error }) (*domain.Entry, error) {
	var e domain.Entry
	var dataJSON string
	if err := row.Scan(&e.ID, &e.SchemaID, &dataJSON, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dataJSON), &e.Data); err != nil {
		return nil, fmt.Errorf("failed to parse stored entry data: %w", err)
	}
	return &e, nil
}

// FindEntryByID retrieves a single entry scoped to a schema.
func FindEntryByID(ctx context.Context, db *sql.DB, schemaId, entryId string) (*domain.Entry, error) {
	query := `SELECT id, schema_id, data, created_at, updated_at FROM entries WHERE id = ? AND schema_id = ? LIMIT 1`
	e, err := scanEntry(db.QueryRowContext(ctx, query, entryId, schemaId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		customLog.Warnf("Storage: Error finding entry %s: %v", entryId, err)
		return nil, fmt.Errorf("database error finding entry: %w", err)
	}
	return e, nil
}

// ListEntries returns all entries of a schema in insertion order.
func ListEntries(ctx context.Context, db *sql.DB, schemaId string) ([]domain.Entry, error) {
	query := `SELECT id, schema_id, data, created_at, updated_at FROM entries WHERE schema_id = ? ORDER BY created_at`
	rows, err := db.QueryContext(ctx, query, schemaId)
	if err != nil {
		customLog.Warnf("Storage: Error listing entries for schema %s: %v", schemaId, err)
		return nil, fmt.Errorf("database error listing entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing entry list: %w", err)
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading entry list: %w", err)
	}
	return entries, nil
}

// ListEntryData returns just the record payloads of a schema's entries.
// This is the schema-backed endpoint payload.
func ListEntryData(ctx context.Context, db *sql.DB, schemaId string) ([]map[string]any, error) {
	entries, err := ListEntries(ctx, db, schemaId)
	if err != nil {
		return nil, err
	}
	data := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		data = append(data, e.Data)
	}
	return data, nil
}

// UpdateEntry replaces an entry's record data. The schema binding is
// immutable.
func UpdateEntry(ctx context.Context, db *sql.DB, e *domain.Entry) error {
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize entry data: %w", err)
	}
	sqlStatement := `UPDATE entries SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND schema_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, string(dataJSON), e.ID, e.SchemaID)
	if err != nil {
		customLog.Warnf("Storage: Failed to update entry %s: %v", e.ID, err)
		return fmt.Errorf("database error updating entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming entry update: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteEntry removes a single entry.
func DeleteEntry(ctx context.Context, db *sql.DB, schemaId, entryId string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND schema_id = ?`, entryId, schemaId)
	if err != nil {
		customLog.Warnf("Storage: Error deleting entry %s: %v", entryId, err)
		return fmt.Errorf("database error deleting entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming entry deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
