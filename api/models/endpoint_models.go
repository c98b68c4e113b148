// api/models/endpoint_models.go
package models

import (
	"time"

	"github.com/mockden/mockden-backend/internal/domain"
)

// EndpointRequest is the body for creating or updating an endpoint. Route is
// the project-relative suffix; the stored route is prefixed with the project
// slug. Exactly one of TemplateID/SchemaID must match SourceKind.
type EndpointRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Route       string            `json:"route" binding:"required"`
	AccessMode  domain.AccessMode `json:"access_mode" binding:"required,oneof=public private"`
	SourceKind  domain.SourceKind `json:"source_kind" binding:"required,oneof=template schema"`
	TemplateID  string            `json:"template_id"`
	SchemaID    string            `json:"schema_id"`
}

// EndpointResponse is the owner-facing view of an endpoint. APIKey is set
// only for private endpoints.
type EndpointResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Route       string            `json:"route"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AccessMode  domain.AccessMode `json:"access_mode"`
	SourceKind  domain.SourceKind `json:"source_kind"`
	TemplateID  *string           `json:"template_id,omitempty"`
	SchemaID    *string           `json:"schema_id,omitempty"`
	APIKey      string            `json:"api_key,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewEndpointResponse converts a domain endpoint for the management surface.
func NewEndpointResponse(e *domain.Endpoint) EndpointResponse {
	resp := EndpointResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Route:       e.Route,
		Name:        e.Name,
		Description: e.Description,
		AccessMode:  e.AccessMode,
		SourceKind:  e.SourceKind,
		TemplateID:  e.TemplateID,
		SchemaID:    e.SchemaID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.APIKey != nil {
		resp.APIKey = *e.APIKey
	}
	return resp
}
