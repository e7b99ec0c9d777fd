package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VRSentinel/internal/batch"
	"VRSentinel/internal/metrics"
	"VRSentinel/internal/model"
)

type stubRunner struct {
	req batch.Request
	err error
}

func (s *stubRunner) Run(_ context.Context, req batch.Request) (*model.BatchResult, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.BatchResult{
		RunID:     "run-1",
		Benchmark: "VNQ",
		Order:     []string{"O"},
		Results: map[string]model.SymbolResult{
			"O": {Symbol: "O", Metrics: &model.RiskMetrics{Symbol: "O", DERI: 0.912345, MEVAR: 0.8, VR: 40.123}},
		},
	}, nil
}

func newTestServer(r Runner) *httptest.Server {
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveCache(metrics.CacheMiss)
	s := New(Config{Log: zerolog.Nop(), Runner: r, Gatherer: reg})
	return httptest.NewServer(s.Handler())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScore(t *testing.T) {
	runner := &stubRunner{}
	srv := newTestServer(runner)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/vr?symbols=o,%20pld&group=reits&years=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body scoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Results, 1)
	require.NotNil(t, body.Results[0].DERI)
	assert.Equal(t, 0.9123, *body.Results[0].DERI)
	assert.Equal(t, 40.12, *body.Results[0].VR)

	assert.Equal(t, batch.Symbols("o", "pld"), runner.req.Symbols)
	assert.Equal(t, "reits", runner.req.Group)
	assert.Equal(t, 3, runner.req.LookbackYears)
}

func TestScore_BadRequests(t *testing.T) {
	srv := newTestServer(&stubRunner{})
	defer srv.Close()

	for _, path := range []string{"/api/vr", "/api/vr?symbols=,,", "/api/vr?symbols=A&years=x", "/api/vr?symbols=A&min_obs=0"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestScore_BenchmarkFailure(t *testing.T) {
	srv := newTestServer(&stubRunner{err: &model.BenchmarkError{Symbol: "SPY", Err: errors.New("down")}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/vr?symbols=AAPL")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
