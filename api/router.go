// api/router.go
package api

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mockden/mockden-backend/api/handlers"
	"github.com/mockden/mockden-backend/api/middleware"
	"github.com/mockden/mockden-backend/config"
	"github.com/mockden/mockden-backend/internal/resolve"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(db *sql.DB, cfg *config.Config, resolver *resolve.Resolver) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	router.Use(cors.Default())
	router.Use(middleware.ErrorHandler())

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	projectHandler := handlers.NewProjectHandler(db, cfg, resolver)
	schemaHandler := handlers.NewSchemaHandler(db, cfg, resolver)
	entryHandler := handlers.NewEntryHandler(db, cfg, resolver)
	templateHandler := handlers.NewTemplateHandler(db, cfg, resolver)
	endpointHandler := handlers.NewEndpointHandler(db, cfg, resolver)
	resolveHandler := handlers.NewResolveHandler(resolver)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	// Rate limiting covers the auth surface only; resolution stays unmetered.
	ratelimiter := middleware.NewRateLimiter(10, time.Minute)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.RateLimitMiddleware(ratelimiter))
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Uniform proxy path for endpoint resolution. Same resolver as the
	// direct path below; no auth middleware — the endpoint's own access
	// mode is the only gate.
	router.GET("/api/v1/resolve/:project_slug/*route", resolveHandler.Proxy)

	// --- Protected Management Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/projects", projectHandler.ListProjects)
		apiRoutes.POST("/projects", projectHandler.CreateProject)
		apiRoutes.GET("/projects/:project_id", projectHandler.GetProject)
		apiRoutes.DELETE("/projects/:project_id", projectHandler.DeleteProject)

		apiRoutes.GET("/projects/:project_id/schemas", schemaHandler.ListSchemas)
		apiRoutes.POST("/projects/:project_id/schemas", schemaHandler.CreateSchema)
		apiRoutes.GET("/projects/:project_id/schemas/:schema_id", schemaHandler.GetSchema)
		apiRoutes.PUT("/projects/:project_id/schemas/:schema_id", schemaHandler.UpdateSchema)
		apiRoutes.DELETE("/projects/:project_id/schemas/:schema_id", schemaHandler.DeleteSchema)

		apiRoutes.GET("/projects/:project_id/schemas/:schema_id/entries", entryHandler.ListEntries)
		apiRoutes.POST("/projects/:project_id/schemas/:schema_id/entries", entryHandler.CreateEntry)
		apiRoutes.GET("/projects/:project_id/schemas/:schema_id/entries/:entry_id", entryHandler.GetEntry)
		apiRoutes.PUT("/projects/:project_id/schemas/:schema_id/entries/:entry_id", entryHandler.UpdateEntry)
		apiRoutes.DELETE("/projects/:project_id/schemas/:schema_id/entries/:entry_id", entryHandler.DeleteEntry)

		apiRoutes.GET("/projects/:project_id/templates", templateHandler.ListTemplates)
		apiRoutes.POST("/projects/:project_id/templates", templateHandler.CreateTemplate)
		apiRoutes.GET("/projects/:project_id/templates/:template_id", templateHandler.GetTemplate)
		apiRoutes.PUT("/projects/:project_id/templates/:template_id", templateHandler.UpdateTemplate)
		apiRoutes.DELETE("/projects/:project_id/templates/:template_id", templateHandler.DeleteTemplate)

		apiRoutes.GET("/projects/:project_id/endpoints", endpointHandler.ListEndpoints)
		apiRoutes.POST("/projects/:project_id/endpoints", endpointHandler.CreateEndpoint)
		apiRoutes.GET("/projects/:project_id/endpoints/:endpoint_id", endpointHandler.GetEndpoint)
		apiRoutes.PUT("/projects/:project_id/endpoints/:endpoint_id", endpointHandler.UpdateEndpoint)
		apiRoutes.POST("/projects/:project_id/endpoints/:endpoint_id/regenerate-key", endpointHandler.RegenerateKey)
		apiRoutes.DELETE("/projects/:project_id/endpoints/:endpoint_id", endpointHandler.DeleteEndpoint)
	}

	// Direct public path: GET /<project-slug>/<route-suffix>. NoRoute keeps
	// it from competing with the static routes above.
	router.NoRoute(resolveHandler.Direct)

	return router
}
