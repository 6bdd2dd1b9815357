package recommend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"compass-backend/internal/compass"
	"compass-backend/internal/scoring"
	"compass-backend/internal/shared/telemetry"
)

func newHandlerRouter(t *testing.T) (*gin.Engine, *compass.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := compass.Default()
	require.NoError(t, err)
	engine, err := scoring.NewEngine(scoring.SchemeAdditive)
	require.NoError(t, err)

	r := gin.New()
	NewHandler(catalog, engine).RegisterRoutes(r.Group("/api/v1"))
	return r, catalog
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	var decoded map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &decoded)
	return resp, decoded
}

func TestGetCatalog(t *testing.T) {
	r, _ := newHandlerRouter(t)
	resp, body := doJSON(t, r, http.MethodGet, "/api/v1/compass", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, body, "compass")
	assert.Contains(t, body, "modules")
	assert.Equal(t, "炬象未来 · AI 赋能培训", body["siteTitle"])
}

func TestListModulesFiltersByCategory(t *testing.T) {
	r, catalog := newHandlerRouter(t)

	resp, body := doJSON(t, r, http.MethodGet, "/api/v1/compass/modules?category=innovation", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	modules := body["modules"].([]any)
	assert.Len(t, modules, len(catalog.ModuleSummaries("innovation")))
	for _, m := range modules {
		assert.Equal(t, "innovation", m.(map[string]any)["category"])
	}

	_, body = doJSON(t, r, http.MethodGet, "/api/v1/compass/modules", nil)
	assert.Equal(t, "all", body["category"])
	assert.Len(t, body["modules"], len(catalog.Modules.List))
}

func TestScoreEndpoint(t *testing.T) {
	r, _ := newHandlerRouter(t)
	sel := map[string]string{
		"scale":    scoring.ScaleLarge,
		"audience": scoring.TargetExecutive,
		"focus":    scoring.FocusCapability,
		"duration": scoring.DurationOngoing,
		"approach": scoring.ApproachCase,
	}

	resp, body := doJSON(t, r, http.MethodPost, "/api/v1/compass/score", gin.H{"selections": sel})
	require.Equal(t, http.StatusOK, resp.Code)
	scores := body["scores"].(map[string]any)
	assert.EqualValues(t, 100, scores["strategy"])
	assert.EqualValues(t, 66, scores["efficiency"])
	assert.EqualValues(t, 82, scores["innovation"])
	assert.Equal(t, "additive", scores["scheme"])
	chart := body["chart"].(map[string]any)
	assert.Equal(t, []any{"战略规划", "提产增效", "创新赋能"}, chart["labels"])
	assert.Contains(t, body["recommendation"], "focus")

	resp, body = doJSON(t, r, http.MethodPost, "/api/v1/compass/score", gin.H{"selections": sel, "scheme": "averaged"})
	require.Equal(t, http.StatusOK, resp.Code)
	scores = body["scores"].(map[string]any)
	assert.EqualValues(t, 6, scores["max"])
	assert.LessOrEqual(t, scores["strategy"].(float64), 6.0)
}

func TestScoreEndpointRejectsBadInput(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	r, _ := newHandlerRouter(t)

	resp, body := doJSON(t, r, http.MethodPost, "/api/v1/compass/score", gin.H{"selections": map[string]string{"scale": scoring.ScaleLarge}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "incomplete_selections", body["code"])
	assert.Equal(t, []any{"target", "focus", "duration", "approach"}, body["details"].(map[string]any)["missing"])

	full := map[string]string{"scale": "a", "target": "b", "focus": "c", "duration": "d", "approach": "e"}
	resp, body = doJSON(t, r, http.MethodPost, "/api/v1/compass/score", gin.H{"selections": full, "scheme": "weighted"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "validation_error", body["code"])

	resp, _ = doJSON(t, r, http.MethodPost, "/api/v1/compass/score", gin.H{"selections": map[string]string{"budget": "x"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = doJSON(t, r, http.MethodPost, "/api/v1/compass/score", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
