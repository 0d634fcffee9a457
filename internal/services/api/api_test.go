package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signalkit/internal/core/engine"
	"signalkit/internal/modkit/module"
	"signalkit/internal/platform/config"
	perr "signalkit/internal/platform/errors"
	phttp "signalkit/internal/platform/net/http"
	"signalkit/internal/services/api"
	signalsmod "signalkit/internal/services/api/signals/module"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Kind       string          `json:"kind"`
	Error      string          `json:"error"`
	Field      string          `json:"field"`
	RequestID  string          `json:"request_id"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T, maxBatch int) http.Handler {
	t.Helper()
	module.Reset()
	t.Cleanup(module.Reset)

	r := phttp.AdaptChi(chi.NewRouter())
	api.Mount(r, api.Options{
		Config: config.New(),
		Engine: engine.Default(),
		API: config.API{
			Swagger:        true,
			CORSOrigins:    []string{"*"},
			MaxBodyBytes:   1 << 16,
			RequestTimeout: 5 * time.Second,
		},
		Signals: config.Signals{ExcerptLimit: 200, BatchWorkers: 2, MaxBatch: maxBatch},
	})
	return r.Mux()
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type extractOut struct {
	Signals []string `json:"signals"`
	Details []struct {
		Name   string `json:"name"`
		Source string `json:"source"`
		Lang   string `json:"lang"`
		RuleID string `json:"rule_id"`
	} `json:"details"`
}

func TestSignals_Extract(t *testing.T) {
	h := newServer(t, 10)

	status, env := call(t, h, http.MethodPost, "/api/v1/signals",
		`{"evidence":{"userSnippet":"Please add X","todayLog":"ERROR: disk full"},"detailed":true}`)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.NotEmpty(t, env.RequestID)

	out := decode[extractOut](t, env.Data)
	assert.Equal(t, []string{"user_feature_request: Please add X", "log_error: ERROR: disk full"}, out.Signals)
	require.Len(t, out.Details, 2)
	assert.Equal(t, "userSnippet", out.Details[0].Source)
	assert.Equal(t, "todayLog", out.Details[1].Source)
	assert.NotEmpty(t, out.Details[0].RuleID)
}

func TestSignals_ExtractEmptyAndFiltered(t *testing.T) {
	h := newServer(t, 10)

	status, env := call(t, h, http.MethodPost, "/api/v1/signals", `{"evidence":{}}`)
	require.Equal(t, http.StatusOK, status)
	out := decode[extractOut](t, env.Data)
	assert.NotNil(t, out.Signals)
	assert.Empty(t, out.Signals)
	assert.Empty(t, out.Details)

	status, env = call(t, h, http.MethodPost, "/api/v1/signals",
		`{"evidence":{"userSnippet":"Please add X","todayLog":"ERROR: disk full"},"only":["log_error"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"log_error: ERROR: disk full"}, decode[extractOut](t, env.Data).Signals)
}

func TestSignals_ExtractBadBodies(t *testing.T) {
	h := newServer(t, 10)

	cases := []struct {
		name   string
		body   string
		status int
		code   perr.ErrorCode
		field  string
	}{
		{"empty body", ``, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"not json", `{"evidence":`, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"unknown field", `{"evidence":{},"extra":1}`, http.StatusBadRequest, perr.ErrorCodeJSON, ""},
		{"missing evidence", `{"detailed":true}`, http.StatusBadRequest, perr.ErrorCodeValidation, "evidence"},
		{"unknown signal filter", `{"evidence":{},"only":["made_up"]}`, http.StatusBadRequest, perr.ErrorCodeValidation, "only[0]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := call(t, h, http.MethodPost, "/api/v1/signals", tc.body)
			assert.Equal(t, tc.status, status, env.Error)
			assert.Equal(t, tc.code, env.Code)
			if tc.field != "" {
				assert.Equal(t, tc.field, env.Field)
			}
		})
	}
}

func TestSignals_Batch(t *testing.T) {
	h := newServer(t, 3)

	status, env := call(t, h, http.MethodPost, "/api/v1/signals/batch",
		`{"items":[{"userSnippet":"Please add X"},{"userSnippet":"。。。。"},{"userSnippet":"改进一下登录流程，简化步骤。"}]}`)
	require.Equal(t, http.StatusOK, status, env.Error)

	out := decode[struct {
		Results [][]string `json:"results"`
	}](t, env.Data)
	assert.Equal(t, [][]string{
		{"user_feature_request: Please add X"},
		{},
		{"user_improvement_suggestion: 改进一下登录流程，简化步骤。"},
	}, out.Results)
}

func TestSignals_BatchLimits(t *testing.T) {
	h := newServer(t, 2)

	status, env := call(t, h, http.MethodPost, "/api/v1/signals/batch", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "items", env.Field)

	status, env = call(t, h, http.MethodPost, "/api/v1/signals/batch", `{"items":[{},{},{}]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, perr.ErrorCodeTooLarge, env.Code)
	assert.Equal(t, "items", env.Field)
}

func TestSignals_Vocabulary(t *testing.T) {
	h := newServer(t, 10)

	status, env := call(t, h, http.MethodGet, "/api/v1/signals/vocabulary", "")
	require.Equal(t, http.StatusOK, status)

	v := decode[struct {
		PackVersion  int      `json:"pack_version"`
		ExcerptLimit int      `json:"excerpt_limit"`
		Languages    []string `json:"languages"`
		Signals      []struct {
			Name  string         `json:"name"`
			Rules map[string]int `json:"rules"`
			Total int            `json:"total"`
		} `json:"signals"`
	}](t, env.Data)

	assert.Equal(t, 200, v.ExcerptLimit)
	assert.Contains(t, v.Languages, "en")
	require.Len(t, v.Signals, 6)
	assert.Equal(t, "user_feature_request", v.Signals[0].Name)
	assert.Positive(t, v.Signals[0].Total)
	assert.Positive(t, v.Signals[0].Rules["en"])
}

func TestMeta_Endpoints(t *testing.T) {
	h := newServer(t, 10)

	status, env := call(t, h, http.MethodGet, "/api/v1/meta/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"service":"signalkit-api"`)

	status, env = call(t, h, http.MethodGet, "/api/v1/meta/ready", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"name":"rulepack"`)

	status, env = call(t, h, http.MethodGet, "/api/v1/meta/version", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"service":"signalkit"`)

	status, env = call(t, h, http.MethodGet, "/api/v1/meta/service", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"uptime"`)
}

func TestMount_RegistersPortsAndFallbacks(t *testing.T) {
	h := newServer(t, 10)

	ports, ok := module.PortsAs[signalsmod.Ports]("signals")
	require.True(t, ok)
	assert.Positive(t, ports.Pack.RuleTotal())

	status, env := call(t, h, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", env.Kind)
}

func TestMount_SwaggerCarriesSignalEnum(t *testing.T) {
	h := newServer(t, 10)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var spec struct {
		Components struct {
			Schemas map[string]struct {
				Enum []string `json:"enum"`
			} `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Contains(t, spec.Components.Schemas["SignalName"].Enum, "capability_gap")
}
