// internal/domain/models.go
package domain

import (
	"encoding/json"
	"time"

	"github.com/mockden/mockden-backend/internal/schema"
)

// User defines the structure for user data in the DB
type User struct {
	UserId       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project scopes schemas, templates and endpoints. Its slug prefixes every
// endpoint route the project serves.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Schema is a user-authored description of record shape.
type Schema struct {
	ID          string                   `json:"id"`
	ProjectID   string                   `json:"project_id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Fields      []schema.FieldDefinition `json:"fields"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Entry is one record conforming to a schema. Data holds the coerced record;
// SchemaID never changes after creation.
type Entry struct {
	ID        string         `json:"id"`
	SchemaID  string         `json:"schema_id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Template is a static JSON document returned verbatim.
type Template struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSON        json.RawMessage `json:"json"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccessMode controls whether an endpoint requires an API key.
type AccessMode string

const (
	AccessPublic  AccessMode = "public"
	AccessPrivate AccessMode = "private"
)

// SourceKind selects which payload an endpoint serves.
type SourceKind string

const (
	SourceTemplate SourceKind = "template"
	SourceSchema   SourceKind = "schema"
)

// Endpoint binds an HTTP route to either a template or a schema's entries.
// Exactly one of TemplateID/SchemaID is set; APIKey is set iff the endpoint
// is private.
type Endpoint struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Route       string     `json:"route"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AccessMode  AccessMode `json:"access_mode"`
	SourceKind  SourceKind `json:"source_kind"`
	TemplateID  *string    `json:"template_id,omitempty"`
	SchemaID    *string    `json:"schema_id,omitempty"`
	APIKey      *string    `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
