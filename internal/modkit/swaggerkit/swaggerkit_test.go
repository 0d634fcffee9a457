package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "signalkit/internal/platform/net/http"
	kit "signalkit/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mounted(t *testing.T, enabled bool) http.Handler {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, enabled)
	return r.Mux()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestDocument_DefaultsApplied(t *testing.T) {
	spec, err := Document()
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", spec["openapi"])
	assert.NotEmpty(t, spec["servers"])

	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "ErrorResponse")

	op := spec["paths"].(map[string]any)["/signals"].(map[string]any)["post"].(map[string]any)
	responses := op["responses"].(map[string]any)
	assert.Contains(t, responses, "200")
	assert.Contains(t, responses, "400")
	assert.Contains(t, responses, "500")
}

func TestDocument_TitleSuffix(t *testing.T) {
	t.Setenv("CORE_API_DOCS_TITLE_SUFFIX", "(staging)")
	spec, err := Document()
	require.NoError(t, err)
	assert.Equal(t, "signalkit API (staging)", spec["info"].(map[string]any)["title"])
}

func TestEnsureServers_Downconverts(t *testing.T) {
	spec := map[string]any{"swagger": "2.0"}
	ensureServers(spec, "/api/v1")
	assert.Equal(t, "3.0.3", spec["openapi"])
	assert.NotContains(t, spec, "swagger")

	spec = map[string]any{"openapi": "3.1.0", "servers": []any{"keep"}}
	ensureServers(spec, "/api/v1")
	assert.Equal(t, "3.0.3", spec["openapi"])
	assert.Equal(t, []any{"keep"}, spec["servers"])
}

func TestMount_ServesDocAndUI(t *testing.T) {
	Register(func(spec map[string]any) { spec["x-test-mutator"] = true })
	h := mounted(t, true)

	rr := get(h, "/api/docs")
	assert.Equal(t, http.StatusPermanentRedirect, rr.Code)

	rr = get(h, "/api/docs/doc.json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	var spec map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Equal(t, true, spec["x-test-mutator"])

	rr = get(h, "/api/docs/index.html")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMount_Disabled(t *testing.T) {
	rr := get(mounted(t, false), "/api/docs/doc.json")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeDocJSON_BadDocument(t *testing.T) {
	kit.Swap(t, &docReader, func() []byte { return []byte("{nope") })
	rr := get(mounted(t, true), "/api/docs/doc.json")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
