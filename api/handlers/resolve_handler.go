// api/handlers/resolve_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mockden/mockden-backend/internal/resolve"
)

// APIKeyHeader carries the credential for private endpoints.
const APIKeyHeader = "x-api-key"

// ResolveHandler serves the public, read-only endpoint surface. Two paths
// reach it — the direct route and the /api/v1/resolve proxy — and both run
// the exact same resolution, so their behavior cannot drift apart.
type ResolveHandler struct {
	Resolver *resolve.Resolver
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(resolver *resolve.Resolver) *ResolveHandler {
	return &ResolveHandler{Resolver: resolver}
}

// Direct handles GET /<project-slug>/<route-suffix>, mounted as the router's
// NoRoute fallback so it never shadows the management API.
func (h *ResolveHandler) Direct(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.JSON(http.StatusNotFound, gin.H{"error": "no endpoint is registered for this route"})
		return
	}

	path := strings.TrimPrefix(c.Request.URL.Path, "/")
	slug, suffix, _ := strings.Cut(path, "/")
	if slug == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no endpoint is registered for this route"})
		return
	}
	h.serve(c, slug, suffix)
}

// Proxy handles GET /api/v1/resolve/:project_slug/*route.
func (h *ResolveHandler) Proxy(c *gin.Context) {
	h.serve(c, c.Param("project_slug"), c.Param("route"))
}

// serve runs resolution and maps its two terminal error shapes. No other
// error detail leaks through this boundary.
func (h *ResolveHandler) serve(c *gin.Context, slug, suffix string) {
	payload, err := h.Resolver.Resolve(c.Request.Context(), slug, suffix, c.GetHeader(APIKeyHeader))
	if err != nil {
		switch {
		case errors.Is(err, resolve.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, resolve.ErrKeyRequired), errors.Is(err, resolve.ErrKeyInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			customLog.Warnf("Resolve: unexpected error serving %s/%s: %v", slug, suffix, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve endpoint"})
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
