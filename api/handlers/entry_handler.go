// api/handlers/entry_handler.go
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

// EntryHandler holds dependencies for record CRUD handlers.
type EntryHandler struct {
	DB       *sql.DB
	Cfg      *config.Config
	Resolver *resolve.Resolver
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *EntryHandler {
	return &EntryHandler{DB: db, Cfg: cfg, Resolver: resolver}
}

// requireSchema resolves the :schema_id path parameter within the project,
// verifying ownership along the way.
func (h *EntryHandler) requireSchema(c *gin.Context) (*domain.Schema, bool) {
	project, ok := requireProject(c, h.DB)
	if !ok {
		return nil, false
	}
	s, err := storage.FindSchemaByID(c.Request.Context(), h.DB, project.ID, c.Param("schema_id"))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return s, true
}

// CreateEntry validates a candidate record against the schema and stores the
// coerced result.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	s, ok := h.requireSchema(c)
	if !ok {
		return
	}

	var req models.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	coerced, errs := schema.ValidateRecord(s.Fields, req.Data)
	if errs != nil {
		_ = c.Error(errs)
		return
	}

	entry := &domain.Entry{
		ID:       uuid.New().String(),
		SchemaID: s.ID,
		Data:     coerced,
	}
	if err := storage.CreateEntry(c.Request.Context(), h.DB, entry); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateSchema(c.Request.Context(), s.ID)
	customLog.Printf("Handler: Created entry %s for schema %s", entry.ID, s.ID)
	c.JSON(http.StatusCreated, entry)
}

// ListEntries returns all entries of a schema.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	s, ok := h.requireSchema(c)
	if !ok {
		return
	}

	entries, err := storage.ListEntries(c.Request.Context(), h.DB, s.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry returns a single entry.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	s, ok := h.requireSchema(c)
	if !ok {
		return
	}

	entry, err := storage.FindEntryByID(c.Request.Context(), h.DB, s.ID, c.Param("entry_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry replaces an entry's record data after re-validation. The
// schema binding never changes.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	s, ok := h.requireSchema(c)
	if !ok {
		return
	}

	var req models.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	coerced, errs := schema.ValidateRecord(s.Fields, req.Data)
	if errs != nil {
		_ = c.Error(errs)
		return
	}

	entry := &domain.Entry{
		ID:       c.Param("entry_id"),
		SchemaID: s.ID,
		Data:     coerced,
	}
	if err := storage.UpdateEntry(c.Request.Context(), h.DB, entry); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateSchema(c.Request.Context(), s.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Entry updated successfully", "entry_id": entry.ID})
}

// DeleteEntry removes a single entry.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	s, ok := h.requireSchema(c)
	if !ok {
		return
	}

	if err := storage.DeleteEntry(c.Request.Context(), h.DB, s.ID, c.Param("entry_id")); err != nil {
		_ = c.Error(err)
		return
	}

	h.Resolver.InvalidateSchema(c.Request.Context(), s.ID)
	c.Status(http.StatusNoContent)
}
