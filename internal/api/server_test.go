package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollytics/provenance/internal/analyzer"
	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/narrative"
	"github.com/sollytics/provenance/internal/solana"
)

const (
	testWallet = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb"
	testMint   = "So11111111111111111111111111111111111111112"
)

func newTestServer(t *testing.T) (*Server, *solana.StubChainClient) {
	t.Helper()

	stub := solana.NewStubChainClient()
	tables := classifier.DefaultTables()
	cls := classifier.New(classifier.DefaultConfig(), tables)
	ext := flows.NewExtractor(flows.DefaultExtractorConfig(), tables)
	det := flows.NewDetector(flows.DefaultDetectorConfig())
	exp := narrative.NewExplainer(narrative.DefaultConfig(), nil)

	an := analyzer.New(analyzer.DefaultConfig(), stub, cls, ext,
		flows.DefaultAggregatorConfig(), det, exp)
	return NewServer(DefaultConfig(), an, stub), stub
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/score",
		`{"walletAddress":"`+testWallet+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report analyzer.WalletReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 50, report.Score)
	assert.Equal(t, classifier.RiskHigh, report.RiskLevel)
	assert.NotEmpty(t, report.Explanation)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestScoreEndpoint_Validation(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing field", `{}`},
		{"invalid address", `{"walletAddress":"zzz"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/v1/score", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestWalletGraphEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/graph/wallet/"+testWallet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report analyzer.WalletGraphReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotEmpty(t, report.Nodes, "central node always present")
	assert.Equal(t, testWallet, report.Nodes[0].ID)
}

func TestWalletGraphEndpoint_InvalidAddress(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/graph/wallet/tooshort12345678901234567890tooshort1234567890", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenGraphEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/graph/token/"+testMint, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report analyzer.TokenGraphReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Nodes, 1)
	assert.Equal(t, testMint, report.Nodes[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	s, stub := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	stub.SetFailNext()
	rec = doRequest(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
