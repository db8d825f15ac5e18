package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, cfg *Config) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewHandler(zap.NewNop(), cfg, "test-version", reg), reg
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func TestHealthVersionAndCurrencies(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = doRequest(h, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"test-version"}`, rr.Body.String())

	rr = doRequest(h, http.MethodGet, "/api/currencies", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var currencies struct {
		Default    string `json:"default"`
		Currencies []struct {
			Code string `json:"code"`
		} `json:"currencies"`
	}
	decodeBody(t, rr, &currencies)
	assert.Equal(t, "NPR", currencies.Default)
	require.Len(t, currencies.Currencies, 2)
	assert.Equal(t, "INR", currencies.Currencies[0].Code)
	assert.Equal(t, "NPR", currencies.Currencies[1].Code)
}

func TestVersionDefaultsToDev(t *testing.T) {
	h := NewHandler(nil, nil, "  ", nil)
	rr := doRequest(h, http.MethodGet, "/api/version", "")
	assert.JSONEq(t, `{"version":"dev"}`, rr.Body.String())
}

func TestHandleEMI(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/emi", `{"principal":1000000,"annualRatePercent":8.5,"termMonths":120}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result resultDTO
	decodeBody(t, rr, &result)
	assert.Equal(t, "12398.57", result.MonthlyEMI)
	assert.Equal(t, "1000000.00", result.Principal)
	assert.Equal(t, "1487828.27", result.TotalRepayment)
	assert.Equal(t, "487828.27", result.TotalInterest)
}

func TestHandleEMIErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Zero principal", `{"principal":0,"annualRatePercent":8.5,"termMonths":120}`, http.StatusUnprocessableEntity},
		{"Negative rate", `{"principal":1000,"annualRatePercent":-1,"termMonths":12}`, http.StatusUnprocessableEntity},
		{"Zero term", `{"principal":1000,"annualRatePercent":5,"termMonths":0}`, http.StatusUnprocessableEntity},
		{"Term beyond maximum", `{"principal":1000,"annualRatePercent":5,"termMonths":1201}`, http.StatusUnprocessableEntity},
		{"Overflowing rate", `{"principal":1000,"annualRatePercent":1e-13,"termMonths":12}`, http.StatusUnprocessableEntity},
		{"Malformed JSON", `{"principal":`, http.StatusBadRequest},
		{"Unknown field", `{"principal":1000,"rate":5,"termMonths":12}`, http.StatusBadRequest},
		{"Wrong type", `{"principal":"lots","annualRatePercent":5,"termMonths":12}`, http.StatusBadRequest},
		{"Empty body", ``, http.StatusBadRequest},
	}

	h, _ := newTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(h, http.MethodPost, "/api/emi", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body map[string]string
			decodeBody(t, rr, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	rr := doRequest(h, http.MethodGet, "/api/emi", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBodyTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetBodySizeBytes(16)
	h, _ := newTestHandler(t, cfg)

	rr := doRequest(h, http.MethodPost, "/api/emi", `{"principal":1000000,"annualRatePercent":8.5,"termMonths":120}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHandleSchedule(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/schedule", `{"principal":1000000,"annualRatePercent":8.5,"termMonths":12}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp scheduleResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp.Schedule, 12)
	assert.Equal(t, 1, resp.Schedule[0].Month)
	assert.Equal(t, "1", resp.Schedule[0].Label)
	assert.Equal(t, 12, resp.Schedule[11].Month)
	assert.Equal(t, "0.00", resp.Schedule[11].RemainingBalance)
	for _, entry := range resp.Schedule {
		assert.Equal(t, resp.Result.MonthlyEMI, entry.TotalPayment)
	}

	rr = doRequest(h, http.MethodPost, "/api/schedule", `{"principal":1000000,"annualRatePercent":0,"termMonths":12}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleCompare(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/compare",
		`{"principal":1000000,"termMonths":120,"primaryRate":8.5,"extraRates":[9,8,8.5,-1]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp compareResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp.Scenarios, 3)

	labels := []string{resp.Scenarios[0].Label, resp.Scenarios[1].Label, resp.Scenarios[2].Label}
	assert.Equal(t, []string{"8.00%", "Current (8.50%)", "9.00%"}, labels)
	assert.Equal(t, []string{"8.00", "8.50", "9.00"},
		[]string{resp.Scenarios[0].Rate, resp.Scenarios[1].Rate, resp.Scenarios[2].Rate})
	assert.True(t, resp.Scenarios[1].Current)
	assert.False(t, resp.Scenarios[0].Current)
	assert.Equal(t, "12398.57", resp.Scenarios[1].MonthlyEMI)
	assert.Equal(t, []float64{-1}, resp.Dropped)
}

func TestHandleCompareInvalidPrimary(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/compare",
		`{"principal":1000000,"termMonths":120,"primaryRate":0,"extraRates":[9]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp compareResponse
	decodeBody(t, rr, &resp)
	require.Len(t, resp.Scenarios, 1)
	assert.Equal(t, "9.00%", resp.Scenarios[0].Label)
	assert.Equal(t, []float64{0}, resp.Dropped)

	rr = doRequest(h, http.MethodPost, "/api/compare",
		`{"principal":1000000,"termMonths":120,"primaryRate":-1,"extraRates":[]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeBody(t, rr, &resp)
	assert.Empty(t, resp.Scenarios)
	assert.Equal(t, []float64{-1}, resp.Dropped)
}

func TestHandleCompareInvalidLoan(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	for _, body := range []string{
		`{"principal":0,"termMonths":120,"primaryRate":8.5,"extraRates":[9]}`,
		`{"principal":1000000,"termMonths":0,"primaryRate":8.5}`,
		`{"principal":1000000,"termMonths":1201,"primaryRate":8.5}`,
	} {
		rr := doRequest(h, http.MethodPost, "/api/compare", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, body)
	}
}

func TestHandleCalculate(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/calculate", `{
		"loanAmount": "1000000",
		"interestRate": "8.5",
		"tenure": "10",
		"tenureUnit": "years",
		"comparisonRates": "9, abc, 8",
		"currency": "INR",
		"startDate": "2025-01"
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp calculationResponse
	decodeBody(t, rr, &resp)

	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
	assert.Equal(t, 120, resp.Terms.TermMonths)
	assert.Equal(t, "INR", resp.Currency.Code)
	assert.Equal(t, "12398.57", resp.Result.MonthlyEMI)
	require.Len(t, resp.Schedule, 120)
	assert.Equal(t, "2025-01", resp.Schedule[0].Label)
	assert.Equal(t, "2034-12", resp.Schedule[119].Label)
	assert.Len(t, resp.Scenarios, 3)
	assert.Empty(t, resp.Dropped)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "abc")
}

func TestHandleCalculateInvalidInputs(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doRequest(h, http.MethodPost, "/api/calculate",
		`{"loanAmount":"abc","interestRate":"8.5","tenure":"10","tenureUnit":"years"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doRequest(h, http.MethodPost, "/api/calculate", `{"loanAmount":1000000}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleReport(t *testing.T) {
	body := `{"loanAmount":"500000","interestRate":"9","tenure":"24","tenureUnit":"months","providerName":"Himalayan Bank"}`

	tests := []struct {
		name        string
		query       string
		status      int
		contentType string
		contains    string
	}{
		{"Default markdown", "", http.StatusOK, "text/markdown; charset=utf-8", "# Loan Amortization Summary"},
		{"HTML", "?format=html", http.StatusOK, "text/html; charset=utf-8", "<h1>Loan Amortization Summary</h1>"},
		{"CSV", "?format=csv", http.StatusOK, "text/csv; charset=utf-8", "month,principal,interest"},
		{"Pretty", "?format=pretty", http.StatusOK, "text/plain; charset=utf-8", "--- Loan summary ---"},
		{"Unsupported", "?format=pdf", http.StatusBadRequest, "application/json", "error"},
	}

	h, _ := newTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(h, http.MethodPost, "/api/report"+tt.query, body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	doRequest(h, http.MethodPost, "/api/calculate",
		`{"loanAmount":"1000000","interestRate":"8.5","tenure":"10","tenureUnit":"years","comparisonRates":"9"}`)
	doRequest(h, http.MethodPost, "/api/calculate", `{"loanAmount":"0","interestRate":"8.5","tenure":"10"}`)

	rr := doRequest(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	metrics := rr.Body.String()
	assert.Contains(t, metrics, `emi_calculations_total{outcome="ok"} 1`)
	assert.Contains(t, metrics, `emi_calculations_total{outcome="invalid"} 1`)
	assert.Contains(t, metrics, `emi_scenarios_total 2`)
	assert.Contains(t, metrics, `http_requests_total{method="POST",path="/api/calculate",status_code="200"} 1`)
	assert.Contains(t, metrics, `http_requests_total{method="POST",path="/api/calculate",status_code="422"} 1`)
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}
	h, _ := newTestHandler(t, cfg)

	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/health", "").Code)

	rr := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rr.Body.String())

	// A different client has its own allowance.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)

	// Rejected requests are still counted.
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "203.0.113.9:1111"
	metrics := httptest.NewRecorder()
	h.ServeHTTP(metrics, req)
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `http_requests_total{method="GET",path="unmatched",status_code="429"} 1`)
	assert.Contains(t, metrics.Body.String(), `http_requests_total{method="GET",path="/health",status_code="200"} 3`)
}

func TestRateLimitUsesForwardedClient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	h, _ := newTestHandler(t, cfg)

	forwarded := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	// Same proxy address, different forwarded clients.
	assert.Equal(t, http.StatusOK, forwarded("198.51.100.1"))
	assert.Equal(t, http.StatusOK, forwarded("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, forwarded("198.51.100.1"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	assert.Equal(t, "192.0.2.10", clientIP(req))

	req.RemoteAddr = "192.0.2.11"
	assert.Equal(t, "192.0.2.11", clientIP(req))
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1}
	h, _ := newTestHandler(t, cfg)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/health", "").Code)
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, nil)

	rl.limiterFor("192.0.2.1").Allow()
	rl.limiterFor("192.0.2.2")

	rl.Prune(time.Now())
	_, drained := rl.limiters.Load("192.0.2.1")
	_, idle := rl.limiters.Load("192.0.2.2")
	assert.True(t, drained, "client that just spent its token should be kept")
	assert.False(t, idle, "client with a full bucket should be forgotten")

	rl.Prune(time.Now().Add(2 * time.Second))
	_, drained = rl.limiters.Load("192.0.2.1")
	assert.False(t, drained, "client should be forgotten once its bucket refills")
}
