// api/models/project_models.go
package models

import (
	"encoding/json"

	"github.com/mockden/mockden-backend/internal/schema"
)

// CreateProjectRequest defines the structure for registering a project.
// The slug becomes the first segment of every route the project serves.
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// --- Schema Request Structs ---

// SchemaRequest is the body for creating or updating a schema. The field
// list replaces the stored one wholesale and is structurally re-validated
// on every save.
type SchemaRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Fields      []schema.FieldDefinition `json:"fields" binding:"required,min=1"`
}

// EntryRequest is the body for creating or updating an entry. Data is the
// candidate record; it is validated and coerced before persisting.
type EntryRequest struct {
	Data map[string]any `json:"data" binding:"required"`
}

// --- Template Request Structs ---

// TemplateRequest is the body for creating or updating a template. JSON may
// be any valid JSON document and is returned verbatim at resolution time.
type TemplateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	JSON        json.RawMessage `json:"json" binding:"required"`
}
