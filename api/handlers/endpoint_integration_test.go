// api/handlers/endpoint_integration_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockden/mockden-backend/api/models"
	"github.com/mockden/mockden-backend/internal/domain"
	"github.com/mockden/mockden-backend/internal/schema"
)

// signupAndLogin registers a fresh user against the test server and returns
// a bearer token for the management API.
func signupAndLogin(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	signupBody, _ := json.Marshal(models.SignupRequest{Username: "workflow", Email: email, Password: "StrongPassword123!"})
	res, err := http.Post(server.URL+"/auth/signup", "application/json", bytes.NewReader(signupBody))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	loginBody, _ := json.Marshal(models.LoginRequest{Email: email, Password: "StrongPassword123!"})
	res, err = http.Post(server.URL+"/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var loginRes models.LoginResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&loginRes))
	return loginRes.Token
}

// doJSON issues an authenticated JSON request and decodes the response body
// into out (skipped when out is nil). Returns the status code.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, out), "response body: %s", raw)
		}
	}
	return res.StatusCode
}

// publicGET fetches a resolved route, optionally with an API key.
func publicGET(t *testing.T, server *httptest.Server, path, apiKey string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, raw
}

// createProject provisions a project and returns it.
func createProject(t *testing.T, server *httptest.Server, token, name, slug string) domain.Project {
	t.Helper()
	var project domain.Project
	status := doJSON(t, server, http.MethodPost, "/api/v1/projects", token,
		models.CreateProjectRequest{Name: name, Slug: slug}, &project)
	require.Equal(t, http.StatusCreated, status)
	return project
}

func TestEndpointLifecycle(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	token := signupAndLogin(t, server, "lifecycle@integration.com")
	project := createProject(t, server, token, "Shop", "my-shop")
	base := "/api/v1/projects/" + project.ID

	var tmpl domain.Template
	status := doJSON(t, server, http.MethodPost, base+"/templates", token,
		models.TemplateRequest{Name: "banner", JSON: json.RawMessage(`{"headline":"Sale!"}`)}, &tmpl)
	require.Equal(t, http.StatusCreated, status)

	var sch domain.Schema
	status = doJSON(t, server, http.MethodPost, base+"/schemas", token,
		models.SchemaRequest{Name: "products", Fields: []schema.FieldDefinition{
			{Name: "title", Type: schema.FieldTypeText, Required: true},
			{Name: "price", Type: schema.FieldTypeNumber},
		}}, &sch)
	require.Equal(t, http.StatusCreated, status)

	var entry domain.Entry
	status = doJSON(t, server, http.MethodPost, base+"/schemas/"+sch.ID+"/entries", token,
		models.EntryRequest{Data: map[string]any{"title": "Mug", "price": 9.5}}, &entry)
	require.Equal(t, http.StatusCreated, status)

	t.Run("Public Template Endpoint Serves Verbatim", func(t *testing.T) {
		var ep models.EndpointResponse
		status := doJSON(t, server, http.MethodPost, base+"/endpoints", token,
			models.EndpointRequest{Name: "banner", Route: "banner", AccessMode: domain.AccessPublic,
				SourceKind: domain.SourceTemplate, TemplateID: tmpl.ID}, &ep)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "/my-shop/banner", ep.Route)
		assert.Empty(t, ep.APIKey, "public endpoints carry no key")

		code, body := publicGET(t, server, "/my-shop/banner", "")
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"headline":"Sale!"}`, string(body))

		// The proxy path serves the identical payload.
		code, proxied := publicGET(t, server, "/api/v1/resolve/my-shop/banner", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, string(body), string(proxied))
	})

	t.Run("Route Conflict", func(t *testing.T) {
		status := doJSON(t, server, http.MethodPost, base+"/endpoints", token,
			models.EndpointRequest{Name: "banner-again", Route: "banner", AccessMode: domain.AccessPublic,
				SourceKind: domain.SourceTemplate, TemplateID: tmpl.ID}, nil)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("Source Reference Must Exist", func(t *testing.T) {
		status := doJSON(t, server, http.MethodPost, base+"/endpoints", token,
			models.EndpointRequest{Name: "ghost", Route: "ghost", AccessMode: domain.AccessPublic,
				SourceKind: domain.SourceSchema, SchemaID: "no-such-schema"}, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	var private models.EndpointResponse

	t.Run("Private Endpoint Gets Key On Creation", func(t *testing.T) {
		status := doJSON(t, server, http.MethodPost, base+"/endpoints", token,
			models.EndpointRequest{Name: "secret", Route: "secret-products", AccessMode: domain.AccessPrivate,
				SourceKind: domain.SourceSchema, SchemaID: sch.ID}, &private)
		require.Equal(t, http.StatusCreated, status)
		assert.True(t, strings.HasPrefix(private.APIKey, "mkd_"), "key %q should carry the mkd_ prefix", private.APIKey)
	})

	t.Run("Private Endpoint Gate", func(t *testing.T) {
		code, _ := publicGET(t, server, "/my-shop/secret-products", "")
		assert.Equal(t, http.StatusUnauthorized, code, "missing key")

		code, _ = publicGET(t, server, "/my-shop/secret-products", "mkd_wrong")
		assert.Equal(t, http.StatusUnauthorized, code, "wrong key")

		code, body := publicGET(t, server, "/my-shop/secret-products", private.APIKey)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body), "Mug")
	})

	t.Run("Unknown Route Is Not Found", func(t *testing.T) {
		code, _ := publicGET(t, server, "/my-shop/nope", "")
		assert.Equal(t, http.StatusNotFound, code)

		// Never 401 for unknown routes, even without a key.
		code, _ = publicGET(t, server, "/other-shop/secret-products", "")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Editing Metadata Preserves Key", func(t *testing.T) {
		var updated models.EndpointResponse
		status := doJSON(t, server, http.MethodPut, base+"/endpoints/"+private.ID, token,
			models.EndpointRequest{Name: "secret-renamed", Description: "now with a description",
				Route: "secret-products", AccessMode: domain.AccessPrivate,
				SourceKind: domain.SourceSchema, SchemaID: sch.ID}, &updated)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, private.APIKey, updated.APIKey, "key must survive a metadata-only edit unchanged")
	})

	t.Run("Key Rotation Invalidates Old Key", func(t *testing.T) {
		oldKey := private.APIKey

		var rotateRes map[string]string
		status := doJSON(t, server, http.MethodPost, base+"/endpoints/"+private.ID+"/regenerate-key", token, nil, &rotateRes)
		require.Equal(t, http.StatusOK, status)
		newKey := rotateRes["api_key"]
		require.NotEmpty(t, newKey)
		assert.NotEqual(t, oldKey, newKey)

		code, _ := publicGET(t, server, "/my-shop/secret-products", oldKey)
		assert.Equal(t, http.StatusUnauthorized, code, "old key must stop working immediately")

		code, _ = publicGET(t, server, "/my-shop/secret-products", newKey)
		assert.Equal(t, http.StatusOK, code)

		private.APIKey = newKey
	})

	t.Run("Switching To Public Discards Key", func(t *testing.T) {
		var updated models.EndpointResponse
		status := doJSON(t, server, http.MethodPut, base+"/endpoints/"+private.ID, token,
			models.EndpointRequest{Name: "secret-renamed", Route: "secret-products", AccessMode: domain.AccessPublic,
				SourceKind: domain.SourceSchema, SchemaID: sch.ID}, &updated)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, updated.APIKey)

		code, _ := publicGET(t, server, "/my-shop/secret-products", "")
		assert.Equal(t, http.StatusOK, code, "public endpoint must serve without a key")

		// A stale key on a public endpoint is ignored.
		code, _ = publicGET(t, server, "/my-shop/secret-products", private.APIKey)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("Regenerate Refused On Public Endpoint", func(t *testing.T) {
		status := doJSON(t, server, http.MethodPost, base+"/endpoints/"+private.ID+"/regenerate-key", token, nil, nil)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("Delete Guards", func(t *testing.T) {
		status := doJSON(t, server, http.MethodDelete, base+"/schemas/"+sch.ID, token, nil, nil)
		assert.Equal(t, http.StatusConflict, status, "schema referenced by an endpoint cannot be deleted")

		status = doJSON(t, server, http.MethodDelete, base+"/templates/"+tmpl.ID, token, nil, nil)
		assert.Equal(t, http.StatusConflict, status, "template referenced by an endpoint cannot be deleted")

		status = doJSON(t, server, http.MethodDelete, base+"/endpoints/"+private.ID, token, nil, nil)
		require.Equal(t, http.StatusNoContent, status)

		code, _ := publicGET(t, server, "/my-shop/secret-products", "")
		assert.Equal(t, http.StatusNotFound, code, "deleted endpoint must stop resolving")

		status = doJSON(t, server, http.MethodDelete, base+"/schemas/"+sch.ID, token, nil, nil)
		assert.Equal(t, http.StatusNoContent, status, "schema deletable once no endpoint references it")
	})
}

func TestEntryValidationOverHTTP(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	token := signupAndLogin(t, server, "entries@integration.com")
	project := createProject(t, server, token, "Catalog", "catalog")
	base := "/api/v1/projects/" + project.ID

	var sch domain.Schema
	status := doJSON(t, server, http.MethodPost, base+"/schemas", token,
		models.SchemaRequest{Name: "books", Fields: []schema.FieldDefinition{
			{Name: "title", Type: schema.FieldTypeText, Required: true},
			{Name: "pages", Type: schema.FieldTypeNumber},
			{Name: "tags", Type: schema.FieldTypeArray, ArrayItemType: schema.ItemTypeText},
		}}, &sch)
	require.Equal(t, http.StatusCreated, status)

	t.Run("Structurally Invalid Schema Rejected", func(t *testing.T) {
		var errRes struct {
			Fields map[string]string `json:"fields"`
		}
		status := doJSON(t, server, http.MethodPost, base+"/schemas", token,
			models.SchemaRequest{Name: "broken", Fields: []schema.FieldDefinition{
				{Name: "matrix", Type: schema.FieldTypeArray, ArrayItemType: schema.ItemTypeObject,
					ObjectFields: []schema.FieldDefinition{
						{Name: "row", Type: schema.FieldTypeArray, ArrayItemType: schema.ItemTypeNumber},
					}},
			}}, &errRes)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, errRes.Fields["matrix.row"], "nested container must be reported per field")
	})

	t.Run("Coercion Applies Before Persisting", func(t *testing.T) {
		var entry domain.Entry
		status := doJSON(t, server, http.MethodPost, base+"/schemas/"+sch.ID+"/entries", token,
			models.EntryRequest{Data: map[string]any{
				"title":   "Dune",
				"pages":   "412", // numeric string coerces to a number
				"tags":    []any{"sf", "classic"},
				"unknown": "dropped",
			}}, &entry)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, float64(412), entry.Data["pages"])
		assert.NotContains(t, entry.Data, "unknown", "undeclared fields are dropped")

		// The stored record round-trips through a fresh read.
		var fetched domain.Entry
		status = doJSON(t, server, http.MethodGet, base+"/schemas/"+sch.ID+"/entries/"+entry.ID, token, nil, &fetched)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, entry.Data, fetched.Data)
	})

	t.Run("Type Mismatch Rejected With Field Reasons", func(t *testing.T) {
		var errRes struct {
			Fields map[string]string `json:"fields"`
		}
		status := doJSON(t, server, http.MethodPost, base+"/schemas/"+sch.ID+"/entries", token,
			models.EntryRequest{Data: map[string]any{"pages": "not-a-number"}}, &errRes)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "TypeMismatch", errRes.Fields["pages"])
		assert.Equal(t, "MissingRequiredField", errRes.Fields["title"])
	})

	t.Run("Management API Requires Auth", func(t *testing.T) {
		status := doJSON(t, server, http.MethodGet, base+"/schemas", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestResolutionReflectsWrites(t *testing.T) {
	server, _, cleanup := setupTestServer(t)
	defer cleanup()

	token := signupAndLogin(t, server, "freshness@integration.com")
	project := createProject(t, server, token, "Feed", "feed")
	base := "/api/v1/projects/" + project.ID

	var sch domain.Schema
	status := doJSON(t, server, http.MethodPost, base+"/schemas", token,
		models.SchemaRequest{Name: "posts", Fields: []schema.FieldDefinition{
			{Name: "title", Type: schema.FieldTypeText, Required: true},
		}}, &sch)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, server, http.MethodPost, base+"/endpoints", token,
		models.EndpointRequest{Name: "posts", Route: "posts", AccessMode: domain.AccessPublic,
			SourceKind: domain.SourceSchema, SchemaID: sch.ID}, nil)
	require.Equal(t, http.StatusCreated, status)

	code, body := publicGET(t, server, "/feed/posts", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body), "schema without entries serves an empty array")

	status = doJSON(t, server, http.MethodPost, base+"/schemas/"+sch.ID+"/entries", token,
		models.EntryRequest{Data: map[string]any{"title": "Hello"}}, nil)
	require.Equal(t, http.StatusCreated, status)

	code, body = publicGET(t, server, "/feed/posts", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "Hello", "a new entry must be visible on the next read")
}
