// api/handlers/template_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mockden/mockden-backend/api/models"
	"github.com/mockden/mockden-backend/config"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/resolve"
	"github.com/mockden/mockden-backend/internal/storage"
)

// TemplateHandler holds dependencies for template management handlers.
type TemplateHandler struct {
	DB       *sql.DB
	Cfg      *config.Config
	Resolver *resolve.Resolver
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *TemplateHandler {
	return &TemplateHandler{DB: db, Cfg: cfg, Resolver: resolver}
}

// CreateTemplate stores a static JSON document. The only constraint on the
// document is that it parses as JSON; it is served back verbatim.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if !json.Valid(req.JSON) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Template document must be valid JSON."})
		return
	}

	t := &domain.Template{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		JSON:        req.JSON,
	}
	if err := storage.CreateTemplate(c.Request.Context(), h.DB, t); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: Created template '%s' (%s) in project %s", t.Name, t.ID, project.ID)
	c.JSON(http.StatusCreated, t)
}

// ListTemplates returns all templates of a project.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	templates, err := storage.ListTemplates(c.Request.Context(), h.DB, project.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate returns a single template.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}

	t, err := storage.FindTemplateByID(c.Request.Context(), h.DB, project.ID, c.Param("template_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTemplate replaces a template's name, description and document.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	templateId := c.Param("template_id")

	var req models.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if !json.Valid(req.JSON) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Template document must be valid JSON."})
		return
	}

	t := &domain.Template{
		ID:          templateId,
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		JSON:        req.JSON,
	}
	if err := storage.UpdateTemplate(c.Request.Context(), h.DB, t); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateTemplate(c.Request.Context(), templateId)
	c.JSON(http.StatusOK, gin.H{"message": "Template updated successfully", "template_id": templateId})
}

// DeleteTemplate removes a template. Blocked with 409 while an endpoint
// still references it.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	templateId := c.Param("template_id")

	if err := storage.DeleteTemplate(c.Request.Context(), h.DB, project.ID, templateId); err != nil {
		_ = c.Error(err) // ErrTemplateInUse -> 409
		return
	}

	customLog.Printf("Handler: Deleted template %s from project %s", templateId, project.ID)
	c.Status(http.StatusNoContent)
}
