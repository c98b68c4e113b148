// api/handlers/schema_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mockden/mockden-backend/api/models"
	"github.com/mockden/mockden-backend/config"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/resolve"
	"github.com/mockden/mockden-backend/internal/schema"
	"github.com/mockden/mockden-backend/internal/storage"
)

// SchemaHandler holds dependencies for schema management handlers.
type SchemaHandler struct {
	DB       *sql.DB
	Cfg      *config.Config
	Resolver *resolve.Resolver
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *SchemaHandler {
	return &SchemaHandler{DB: db, Cfg: cfg, Resolver: resolver}
}

// CreateSchema defines a new record shape inside a project. The field list
// is structurally validated before anything is stored.
func (h *SchemaHandler) CreateSchema(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	var req models.SchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if errs := schema.ValidateFields(req.Fields); errs != nil {
		_ = c.Error(errs)
		return
	}

	s := &domain.Schema{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	}
	if err := storage.CreateSchema(c.Request.Context(), h.DB, s); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: Created schema '%s' (%s) in project %s", s.Name, s.ID, project.ID)
	c.JSON(http.StatusCreated, s)
}

// ListSchemas returns all schemas of a project.
func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	schemas, err := storage.ListSchemas(c.Request.Context(), h.DB, project.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, schemas)
}

// GetSchema returns a single schema.
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	s, err := storage.FindSchemaByID(c.Request.Context(), h.DB, project.ID, c.Param("schema_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSchema replaces a schema's name, description and field list. The new
// field list goes through the same structural check as on create.
func (h *SchemaHandler) UpdateSchema(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	schemaId := c.Param("schema_id")

	var req models.SchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if errs := schema.ValidateFields(req.Fields); errs != nil {
		_ = c.Error(errs)
		return
	}

	s := &domain.Schema{
		ID:          schemaId,
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	}
	if err := storage.UpdateSchema(c.Request.Context(), h.DB, s); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateSchema(c.Request.Context(), schemaId)
	customLog.Printf("Handler: Updated schema %s in project %s", schemaId, project.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Schema updated successfully", "schema_id": schemaId})
}

// DeleteSchema removes a schema and its entries. Blocked with 409 while an
// endpoint still references the schema.
func (h *SchemaHandler) DeleteSchema(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	schemaId := c.Param("schema_id")

	if err := storage.DeleteSchema(c.Request.Context(), h.DB, project.ID, schemaId); err != nil {
		_ = c.Error(err) // ErrSchemaInUse -> 409
		return
	}

	customLog.Printf("Handler: Deleted schema %s from project %s", schemaId, project.ID)
	c.Status(http.StatusNoContent)
}
