// api/handlers/project_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mockden/mockden-backend/api/models"
	"github.com/mockden/mockden-backend/config"
	"github.com/mockden/mockden-backend/internal/core"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/resolve"
	"github.com/mockden/mockden-backend/internal/storage"
)

// ProjectHandler holds dependencies for project management handlers.
type ProjectHandler struct {
	DB       *sql.DB
	Cfg      *config.Config
	Resolver *resolve.Resolver
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *ProjectHandler {
	return &ProjectHandler{DB: db, Cfg: cfg, Resolver: resolver}
}

// requireProject resolves the :project_id path parameter to a project owned
// by the authenticated user. Attaches the error and returns false on failure.
func requireProject(c *gin.Context, db *sql.DB) (*domain.Project, bool) {
	userId := c.MustGet("userId").(string)
	project, err := storage.FindProjectByID(c.Request.Context(), db, userId, c.Param("project_id"))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return project, true
}

// CreateProject registers a new project for the authenticated user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if !core.IsValidSlug(req.Slug) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid slug. Use lowercase alphanumerics, hyphens and underscores, max length 64."})
		return
	}

	project := &domain.Project{
		ID:     uuid.New().String(),
		UserID: userId,
		Name:   req.Name,
		Slug:   req.Slug,
	}
	if err := storage.CreateProject(c.Request.Context(), h.DB, project); err != nil {
		_ = c.Error(err) // ErrProjectExists -> 409
		return
	}

	customLog.Printf("Handler: Registered project '%s' (%s) for user %s", project.Slug, project.ID, userId)
	c.JSON(http.StatusCreated, project)
}

// ListProjects returns the authenticated user's projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	projects, err := storage.ListProjects(c.Request.Context(), h.DB, userId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject returns a single project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project and everything scoped beneath it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userId := c.MustGet("userId").(string)

	if err := storage.DeleteProject(c.Request.Context(), h.DB, userId, c.Param("project_id")); err != nil {
		_ = c.Error(err)
		return
	}

	// The cascade removed the project's endpoints with it.
	h.Resolver.InvalidateAll()
	c.Status(http.StatusNoContent)
}
