// internal/resolve/resolver.go
package resolve

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mockden/mockden-backend/internal/auth"
	"github.com/mockden/mockden-backend/internal/core"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/logger"
	"github.com/mockden/mockden-backend/internal/storage"
)

// The only two error shapes exposed at the resolution boundary. Both are
// terminal per request; nothing is retried and no partial payload leaks.
var (
	ErrNotFound    = errors.New("no endpoint is registered for this route")
	ErrKeyRequired = errors.New("this endpoint is private: provide an api key")
	ErrKeyInvalid  = errors.New("invalid api key")
)

var customLog = logger.NewLogger()

// Resolver maps (route, credential) to a JSON payload. Resolution is a pure
// read; the shared state is the record store plus the payload cache.
type Resolver struct {
	db    *sql.DB
	cache *Cache
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{
		db:    db,
		cache: NewCache(),
	}
}

// Resolve authorizes and serves one inbound request. providedKey is the raw
// x-api-key header value ("" when absent); it is ignored entirely for public
// endpoints.
func (r *Resolver) Resolve(ctx context.Context, projectSlug, routeSuffix, providedKey string) (json.RawMessage, error) {
	fullRoute := core.FullRoute(projectSlug, routeSuffix)

	endpoint, err := storage.FindEndpointByRoute(ctx, r.db, fullRoute)
	if err != nil {
		if errors.Is(err, storage.ErrEndpointNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endpoint.AccessMode == domain.AccessPrivate {
		if providedKey == "" {
			return nil, ErrKeyRequired
		}
		if endpoint.APIKey == nil || !auth.APIKeyEquals(*endpoint.APIKey, providedKey) {
			return nil, ErrKeyInvalid
		}
	}

	if payload, ok := r.cache.Get(endpoint.ID); ok {
		return payload, nil
	}

	payload, err := r.buildPayload(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	r.cache.Set(endpoint.ID, payload)
	return payload, nil
}

// buildPayload materializes the endpoint's response body: the template
// document verbatim, or the schema's entry records as a JSON array.
func (r *Resolver) buildPayload(ctx context.Context, endpoint *domain.Endpoint) ([]byte, error) {
	switch endpoint.SourceKind {
	case domain.SourceTemplate:
		if endpoint.TemplateID == nil {
			customLog.Warnf("Resolver: endpoint %s has template source but no template reference", endpoint.ID)
			return nil, ErrNotFound
		}
		doc, err := storage.FindTemplateJSON(ctx, r.db, *endpoint.TemplateID)
		if err != nil {
			if errors.Is(err, storage.ErrTemplateNotFound) {
				// Dangling reference: the template was deleted out from
				// under the endpoint.
				return nil, ErrNotFound
			}
			return nil, err
		}
		return doc, nil

	case domain.SourceSchema:
		if endpoint.SchemaID == nil {
			customLog.Warnf("Resolver: endpoint %s has schema source but no schema reference", endpoint.ID)
			return nil, ErrNotFound
		}
		data, err := storage.ListEntryData(ctx, r.db, *endpoint.SchemaID)
		if err != nil {
			if errors.Is(err, storage.ErrSchemaNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize entry payload: %w", err)
		}
		return payload, nil
	}

	customLog.Warnf("Resolver: endpoint %s has unknown source kind %q", endpoint.ID, endpoint.SourceKind)
	return nil, ErrNotFound
}

// --- Write-path invalidation hooks ---

// InvalidateEndpoint evicts one endpoint's cached payload. Call after any
// write to the endpoint definition itself.
func (r *Resolver) InvalidateEndpoint(endpointID string) {
	r.cache.Invalidate(endpointID)
}

// InvalidateAll empties the payload cache. Used for broad writes such as a
// project deletion, where the set of affected endpoints is gone with it.
func (r *Resolver) InvalidateAll() {
	r.cache.InvalidateAll()
}

// InvalidateSchema evicts every endpoint serving the given schema. Call after
// a write to the schema or any of its entries.
func (r *Resolver) InvalidateSchema(ctx context.Context, schemaID string) {
	ids, err := storage.EndpointIDsBySchema(ctx, r.db, schemaID)
	if err != nil {
		customLog.Warnf("Resolver: failed to list endpoints for schema %s, flushing cache: %v", schemaID, err)
		r.cache.InvalidateAll()
		return
	}
	for _, id := range ids {
		r.cache.Invalidate(id)
	}
}

// InvalidateTemplate evicts every endpoint serving the given template.
func (r *Resolver) InvalidateTemplate(ctx context.Context, templateID string) {
	ids, err := storage.EndpointIDsByTemplate(ctx, r.db, templateID)
	if err != nil {
		customLog.Warnf("Resolver: failed to list endpoints for template %s, flushing cache: %v", templateID, err)
		r.cache.InvalidateAll()
		return
	}
	for _, id := range ids {
		r.cache.Invalidate(id)
	}
}
