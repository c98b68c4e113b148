// api/handlers/endpoint_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mockden/mockden-backend/api/models"
	"github.com/mockden/mockden-backend/config"
	"github.com/mockden/mockden-backend/internal/auth"
	"github.com/mockden/mockden-backend/internal/core"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/resolve"
	"github.com/mockden/mockden-backend/internal/storage"
)

// EndpointHandler holds dependencies for endpoint management handlers.
type EndpointHandler struct {
	DB       *sql.DB
	Cfg      *config.Config
	Resolver *resolve.Resolver
}

// NewEndpointHandler creates a new EndpointHandler.
func NewEndpointHandler(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *EndpointHandler {
	return &EndpointHandler{DB: db, Cfg: cfg, Resolver: resolver}
}

// resolveSource checks that the requested data source reference exists in
// the project and returns the single pointer matching the source kind. The
// unused reference stays nil so a kind switch clears it in the same write.
func (h *EndpointHandler) resolveSource(c *gin.Context, project *domain.Project, req *models.EndpointRequest) (templateID, schemaID *string, ok bool) {
	switch req.SourceKind {
	case domain.SourceTemplate:
		if req.TemplateID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "template_id is required for template-backed endpoints."})
			return nil, nil, false
		}
		if _, err := storage.FindTemplateByID(c.Request.Context(), h.DB, project.ID, req.TemplateID); err != nil {
			_ = c.Error(err)
			return nil, nil, false
		}
		return &req.TemplateID, nil, true
	case domain.SourceSchema:
		if req.SchemaID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "schema_id is required for schema-backed endpoints."})
			return nil, nil, false
		}
		if _, err := storage.FindSchemaByID(c.Request.Context(), h.DB, project.ID, req.SchemaID); err != nil {
			_ = c.Error(err)
			return nil, nil, false
		}
		return nil, &req.SchemaID, true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "source_kind must be 'template' or 'schema'."})
	return nil, nil, false
}

// CreateEndpoint binds a route to a data source. Private endpoints get a
// freshly generated API key, returned once in the response.
func (h *EndpointHandler) CreateEndpoint(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	var req models.EndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := core.ValidateRoute(req.Route); err != nil {
		_ = c.Error(err)
		return
	}

	templateID, schemaID, ok := h.resolveSource(c, project, &req)
	if !ok {
		return
	}

	endpoint := &domain.Endpoint{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Route:       core.FullRoute(project.Slug, req.Route),
		Name:        req.Name,
		Description: req.Description,
		AccessMode:  req.AccessMode,
		SourceKind:  req.SourceKind,
		TemplateID:  templateID,
		SchemaID:    schemaID,
	}

	if req.AccessMode == domain.AccessPrivate {
		key, err := auth.GenerateAPIKey()
		if err != nil {
			_ = c.Error(err)
			return
		}
		endpoint.APIKey = &key
	}

	if err := storage.CreateEndpoint(c.Request.Context(), h.DB, endpoint); err != nil {
		_ = c.Error(err) // ErrRouteExists -> 409
		return
	}

	customLog.Printf("Handler: Created endpoint '%s' (%s, %s) in project %s", endpoint.Route, endpoint.ID, endpoint.AccessMode, project.ID)
	c.JSON(http.StatusCreated, models.NewEndpointResponse(endpoint))
}

// ListEndpoints returns all endpoints of a project.
func (h *EndpointHandler) ListEndpoints(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	endpoints, err := storage.ListEndpoints(c.Request.Context(), h.DB, project.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	responses := make([]models.EndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		responses = append(responses, models.NewEndpointResponse(&endpoints[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetEndpoint returns a single endpoint, including its key when private.
func (h *EndpointHandler) GetEndpoint(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	endpoint, err := storage.FindEndpointByID(c.Request.Context(), h.DB, project.ID, c.Param("endpoint_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.NewEndpointResponse(endpoint))
}

// UpdateEndpoint mutates an endpoint. Key lifecycle rules:
//   - private -> private: the existing key is preserved byte-for-byte; an
//     edit must never rotate it.
//   - private -> public: the key is discarded.
//   - public -> private: a new key is generated; old values never come back.
func (h *EndpointHandler) UpdateEndpoint(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	existing, err := storage.FindEndpointByID(c.Request.Context(), h.DB, project.ID, c.Param("endpoint_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.EndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := core.ValidateRoute(req.Route); err != nil {
		_ = c.Error(err)
		return
	}

	templateID, schemaID, ok := h.resolveSource(c, project, &req)
	if !ok {
		return
	}

	updated := &domain.Endpoint{
		ID:          existing.ID,
		ProjectID:   project.ID,
		Route:       core.FullRoute(project.Slug, req.Route),
		Name:        req.Name,
		Description: req.Description,
		AccessMode:  req.AccessMode,
		SourceKind:  req.SourceKind,
		TemplateID:  templateID,
		SchemaID:    schemaID,
	}

	switch {
	case req.AccessMode == domain.AccessPrivate && existing.AccessMode == domain.AccessPrivate:
		updated.APIKey = existing.APIKey
	case req.AccessMode == domain.AccessPrivate:
		key, err := auth.GenerateAPIKey()
		if err != nil {
			_ = c.Error(err)
			return
		}
		updated.APIKey = &key
	}

	if err := storage.UpdateEndpoint(c.Request.Context(), h.DB, updated); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateEndpoint(updated.ID)
	c.JSON(http.StatusOK, models.NewEndpointResponse(updated))
}

// RegenerateKey replaces a private endpoint's key with a fresh value. The
// old key is invalid the moment this returns.
func (h *EndpointHandler) RegenerateKey(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	endpoint, err := storage.FindEndpointByID(c.Request.Context(), h.DB, project.ID, c.Param("endpoint_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if endpoint.AccessMode != domain.AccessPrivate {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Only private endpoints have an API key to regenerate."})
		return
	}

	key, err := auth.GenerateAPIKey()
	if err != nil {
		_ = c.Error(err)
		return
	}
	endpoint.APIKey = &key

	if err := storage.UpdateEndpoint(c.Request.Context(), h.DB, endpoint); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateEndpoint(endpoint.ID)
	customLog.Printf("Handler: Regenerated API key for endpoint %s", endpoint.ID)
	c.JSON(http.StatusOK, gin.H{"message": "API key regenerated", "api_key": key})
}

// DeleteEndpoint removes an endpoint definition.
func (h *EndpointHandler) DeleteEndpoint(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	endpointId := c.Param("endpoint_id")

	if err := storage.DeleteEndpoint(c.Request.Context(), h.DB, project.ID, endpointId); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateEndpoint(endpointId)
	c.Status(http.StatusNoContent)
}
