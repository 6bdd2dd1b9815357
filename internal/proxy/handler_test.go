package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"compass-backend/internal/llm"
	"compass-backend/internal/llm/openai"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/telemetry"
	"compass-backend/internal/shared/util"
)

var validSettings = Settings{APIKey: "sk-test", Endpoint: "http://upstream", Model: "gpt-test"}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func postProxy(t *testing.T, r http.Handler, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/proxy", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var decoded map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &decoded)
	return resp, decoded
}

// upstream starts a fake completion API replying with body and status, and
// counts calls.
func upstream(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func serviceFor(t *testing.T, srvURL string) *Service {
	t.Helper()
	settings := validSettings
	settings.Endpoint = srvURL
	client, err := openai.NewClient(settings.Endpoint, settings.APIKey, settings.Model)
	require.NoError(t, err)
	return NewService(settings, client)
}

func TestProxyMissingKeyFailsWithoutOutboundCall(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	srv, calls := upstream(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	client, err := openai.NewClient(srv.URL, "sk", "m")
	require.NoError(t, err)

	settings := Settings{Endpoint: srv.URL, Model: "m"}
	before := testutil.ToFloat64(metrics.ProxyRequests.WithLabelValues(metrics.OutcomeConfigIncomplete, "text"))

	resp, body := postProxy(t, newTestRouter(NewService(settings, client)), gin.H{"prompt": "hi"})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, MessageConfigIncomplete, body["message"])
	assert.Equal(t, "config_incomplete", body["code"])
	assert.Zero(t, calls.Load())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProxyRequests.WithLabelValues(metrics.OutcomeConfigIncomplete, "text")))
}

func TestProxyJSONModeReturnsParsedObject(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	srv, calls := upstream(t, http.StatusOK, `{"choices":[{"message":{"content":"{\"focus\":\"x\",\"content\":\"y\",\"combination\":\"z\"}"}}]}`)

	resp, body := postProxy(t, newTestRouter(serviceFor(t, srv.URL)), gin.H{"prompt": "recommend", "isJsonMode": true})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, map[string]any{"focus": "x", "content": "y", "combination": "z"}, body)
	assert.EqualValues(t, 1, calls.Load())
}

func TestProxyTextModeReturnsJSONString(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	srv, _ := upstream(t, http.StatusOK, `{"choices":[{"message":{"content":"优化后的需求"}}]}`)

	r := newTestRouter(serviceFor(t, srv.URL))
	raw, _ := json.Marshal(gin.H{"prompt": "rewrite"})
	req := httptest.NewRequest(http.MethodPost, "/api/proxy", bytes.NewReader(raw))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var text string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &text))
	assert.Equal(t, "优化后的需求", text)
}

func TestProxyEmptyChoicesIsInvalidStructure(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	srv, _ := upstream(t, http.StatusOK, `{"choices":[]}`)

	resp, body := postProxy(t, newTestRouter(serviceFor(t, srv.URL)), gin.H{"prompt": "p", "isJsonMode": true})

	assert.GreaterOrEqual(t, resp.Code, 300)
	assert.Equal(t, "invalid_response_structure", body["code"])
	assert.Equal(t, MessageUpstreamError, body["message"])
	assert.Equal(t, MessageInvalidStructure, body["details"])
}

func TestProxyRelaysUpstreamStatus(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	srv, _ := upstream(t, http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`)

	resp, body := postProxy(t, newTestRouter(serviceFor(t, srv.URL)), gin.H{"prompt": "p"})

	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, MessageUpstreamError, body["message"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Rate limit reached", details["error"].(map[string]any)["message"])
}

func TestProxyTransportErrorIs500(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	completer := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "", &llm.UpstreamError{Message: "connection refused"}
	})

	resp, body := postProxy(t, newTestRouter(NewService(validSettings, completer)), gin.H{"prompt": "p"})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, MessageUpstreamError, body["message"])
	assert.Equal(t, "connection refused", body["details"])
}

func TestProxyMalformedJSONFailsExplicitly(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	completer := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		require.True(t, req.JSONMode)
		return "focus: x", nil
	})

	resp, body := postProxy(t, newTestRouter(NewService(validSettings, completer)), gin.H{"prompt": "p", "isJsonMode": true})

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "malformed_json", body["code"])
	assert.Equal(t, map[string]any{"raw": "focus: x"}, body["details"])
}

func TestProxyRejectsInvalidBody(t *testing.T) {
	defer telemetry.SetLogger(zap.NewNop())()
	completer := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		t.Fatal("completer must not be called")
		return "", nil
	})
	r := newTestRouter(NewService(validSettings, completer))

	for name, body := range map[string]any{
		"missing_prompt": gin.H{"isJsonMode": true},
		"blank_prompt":   gin.H{"prompt": "   "},
		"wrong_type":     gin.H{"prompt": 42},
	} {
		t.Run(name, func(t *testing.T) {
			resp, decoded := postProxy(t, r, body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "validation_error", decoded["code"])
		})
	}
}

func TestSettingsMissing(t *testing.T) {
	assert.True(t, validSettings.Complete())
	assert.Equal(t, []string{"API_KEY", "API_ENDPOINT", "API_MODEL"}, Settings{}.Missing())
	assert.False(t, NewService(validSettings, nil).Configured())
}

func TestForwardLogsFingerprintNotPrompt(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer telemetry.SetLogger(zap.New(core))()
	srv, _ := upstream(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	_, err := serviceFor(t, srv.URL).Forward(context.Background(), "secret needs text", false)
	require.NoError(t, err)

	entries := logs.FilterMessage("proxy.forward").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, util.Fingerprint("secret needs text"), fields["prompt_id"])
	for _, v := range fields {
		assert.NotEqual(t, "secret needs text", v)
	}
}
