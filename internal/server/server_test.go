package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carllingstrom/AI-Delning-sub001/internal/config"
	"github.com/carllingstrom/AI-Delning-sub001/internal/database"
	"github.com/carllingstrom/AI-Delning-sub001/internal/metrics"
	"github.com/carllingstrom/AI-Delning-sub001/internal/project"
	"github.com/carllingstrom/AI-Delning-sub001/internal/service"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/scaling"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	handler http.Handler
	store   *project.Store
	cfg     *Config
}

func setup(t *testing.T, mutate func(*Options)) fixture {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := project.NewStore(db, nil)
	require.NoError(t, store.Migrate())

	cfg := DefaultConfig()
	opts := Options{
		Service: service.New(store, config.ValuationConfig{}, nil, nil),
		Config:  cfg,
		Metrics: metrics.New(),
		Logger:  zap.NewNop(),
		Version: "1.2.3",
	}
	if mutate != nil {
		mutate(&opts)
	}
	return fixture{handler: NewHandler(opts), store: store, cfg: opts.Config}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f fixture) seed(t *testing.T) *project.Project {
	t.Helper()
	costs, err := json.Marshal([]model.CostEntry{testutil.FixedCost(100000)})
	require.NoError(t, err)
	effects, err := json.Marshal(map[string]interface{}{
		"note":          "keep me",
		"effectDetails": []model.EffectEntry{testutil.FinancialCurrencyEffect("Tid", 100000, "per_year", 1)},
	})
	require.NoError(t, err)

	p := &project.Project{Title: "E-tjänst", CostData: string(costs), EffectsData: string(effects)}
	require.NoError(t, f.store.Create(context.Background(), p))
	return p
}

func scalingBody() map[string]interface{} {
	return map[string]interface{}{
		"orgs":                   "5",
		"adoptionRatePct":        100,
		"scalabilityCoefficient": 0.9,
		"replication":            map[string]interface{}{"mode": "cost_per_org", "costPerOrg": 60000},
	}
}

func TestVersionAndHealth(t *testing.T) {
	f := setup(t, nil)

	rr := f.do(t, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	rr = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "impact_http_requests_total")
}

func TestHealthNotReady(t *testing.T) {
	f := setup(t, func(o *Options) {
		o.Health = func(context.Context) error { return errors.New("db down") }
	})

	rr := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "db down")
}

func TestMethodNotAllowed(t *testing.T) {
	f := setup(t, nil)

	rr := f.do(t, http.MethodGet, "/api/valuation/calculate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestScaledImpactEndpoint(t *testing.T) {
	f := setup(t, nil)
	p := f.seed(t)

	rr := f.do(t, http.MethodPost, "/api/projects/"+p.ID+"/scaled-impact", map[string]interface{}{"scaling": scalingBody()})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result scaling.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.InDelta(t, 409510.0, result.KPIs.TotalBenefit, 1e-6)
	assert.InDelta(t, 340000.0, result.KPIs.TotalCost, 1e-6)
	assert.Equal(t, scaling.ModeCostPerOrg, result.Scaling.ReplicationMode)
	assert.NotNil(t, result.Validation.Warnings)
}

func TestScaledImpactEndpointErrors(t *testing.T) {
	f := setup(t, nil)
	p := f.seed(t)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		want   string
	}{
		{"missing scaling", "/api/projects/" + p.ID + "/scaled-impact", map[string]interface{}{}, http.StatusBadRequest, `"scaling"`},
		{"malformed json", "/api/projects/" + p.ID + "/scaled-impact", `{"scaling":`, http.StatusBadRequest, "failed to decode"},
		{"invalid orgs", "/api/projects/" + p.ID + "/scaled-impact", map[string]interface{}{"scaling": map[string]interface{}{"orgs": 0, "adoptionRatePct": 50}}, http.StatusBadRequest, `"orgs"`},
		{"unknown project", "/api/projects/missing/scaled-impact", map[string]interface{}{"scaling": scalingBody()}, http.StatusNotFound, "project not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	f := setup(t, func(o *Options) {
		o.Config = DefaultConfig()
		o.Config.SetUploadSizeBytes(16)
	})
	p := f.seed(t)

	rr := f.do(t, http.MethodPost, "/api/projects/"+p.ID+"/scaled-impact", map[string]interface{}{"scaling": scalingBody()})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestSaveScaledImpactEndpoint(t *testing.T) {
	f := setup(t, nil)
	p := f.seed(t)

	rr := f.do(t, http.MethodPost, "/api/projects/"+p.ID+"/scaled-impact/save", map[string]interface{}{
		"scalingInput": scalingBody(),
		"result":       map[string]interface{}{"kpis": map[string]interface{}{"totalBenefit": 409510}},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp saveScaledImpactResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.SavedAt.IsZero())

	stored, err := f.store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(stored.EffectsData), &fields))
	assert.JSONEq(t, `"keep me"`, string(fields["note"]))
	assert.Contains(t, string(fields[service.ScaledImpactKey]), `"totalBenefit":409510`)

	rr = f.do(t, http.MethodPost, "/api/projects/"+p.ID+"/scaled-impact/save", map[string]interface{}{"result": map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectEndpoints(t *testing.T) {
	f := setup(t, nil)

	rr := f.do(t, http.MethodPost, "/api/projects", map[string]interface{}{
		"title":    "Ny tjänst",
		"budget":   "50 000",
		"costData": []interface{}{},
		"effectsData": []interface{}{map[string]interface{}{
			"valueDimension":  "Tid",
			"hasQuantitative": "true",
			"quantitativeDetails": map[string]interface{}{
				"effectType": "financial",
				"financialDetails": map[string]interface{}{
					"valueUnit":       "currency",
					"currencyDetails": map[string]interface{}{"amount": 100000, "timescale": "per_year"},
				},
			},
		}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created projectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rr = f.do(t, http.MethodGet, "/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"Ny tjänst"`)

	rr = f.do(t, http.MethodGet, "/api/projects/"+created.ID+"/roi", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var m roi.Metrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, 50000.0, m.TotalInvestment)
	assert.Equal(t, 100000.0, m.TotalMonetaryValue)
	assert.InDelta(t, 100.0, m.EconomicROI, 1e-9)

	rr = f.do(t, http.MethodGet, "/api/projects?limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []projectResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr = f.do(t, http.MethodGet, "/api/projects?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/projects", map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title"`)

	rr = f.do(t, http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestScenarioExport(t *testing.T) {
	f := setup(t, nil)
	p := f.seed(t)

	rr := f.do(t, http.MethodGet, "/api/projects/"+p.ID+"/scenario", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "name: E-tjänst\n"))
	assert.Contains(t, rr.Body.String(), "costEntries:")
}

func TestCalculateEndpoint(t *testing.T) {
	f := setup(t, nil)

	rr := f.do(t, http.MethodPost, "/api/valuation/calculate", map[string]interface{}{
		"costEntries": []model.CostEntry{testutil.FixedCost(100000)},
		"effects":     []model.EffectEntry{testutil.FinancialCurrencyEffect("Tid", 100000, "per_year", 1)},
		"scaling":     scalingBody(),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		TotalInvestment float64         `json:"totalInvestment"`
		ROI             roi.Metrics     `json:"roi"`
		Scaled          *scaling.Result `json:"scaled"`
		CSV             string          `json:"csv"`
		Duration        string          `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 100000.0, resp.TotalInvestment)
	require.NotNil(t, resp.Scaled)
	assert.InDelta(t, 409510.0, resp.Scaled.KPIs.TotalBenefit, 1e-6)
	assert.True(t, strings.HasPrefix(resp.CSV, "section,metric,value\n"))
	assert.NotEmpty(t, resp.Duration)
}

func TestRateLimit(t *testing.T) {
	f := setup(t, func(o *Options) {
		o.Config = DefaultConfig()
		o.Config.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, WindowSeconds: 60}
	})

	for i := 0; i < 2; i++ {
		rr := f.do(t, http.MethodGet, "/api/version", nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := f.do(t, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Health checks are outside the limited group.
	rr = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS(t *testing.T) {
	f := setup(t, func(o *Options) {
		o.Config = DefaultConfig()
		o.Config.CORSOrigins = []string{"https://kommun.example"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Origin", "https://kommun.example")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, "https://kommun.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Origin", "https://other.example")
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
