package server

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/property-roi/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "test_config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func readTestConfig(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

const financedJSON = `{
  "name": "flat",
  "input": {
    "purchasePrice": 5000000,
    "monthlyRent": 25000,
    "annualAppreciationRatePercent": 5,
    "hasLoan": true,
    "downPaymentPercent": 20,
    "annualInterestRatePercent": 8.5,
    "loanTenureYears": 20,
    "annualMaintenanceAmount": 60000,
    "annualPropertyTaxAmount": 15000,
    "managementFeePercent": 8,
    "vacancyRatePercent": 5,
    "projectionHorizonYears": 10
  }
}`

func TestHandleROISuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/roi", strings.NewReader(financedJSON))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp roiResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "flat" {
		t.Errorf("expected name flat, got %q", resp.Name)
	}
	if math.Abs(resp.Result.MonthlyEMI-34712.93) > 0.01 {
		t.Errorf("expected EMI 34712.93, got %.4f", resp.Result.MonthlyEMI)
	}
	if resp.CashFlowStatus != "negative" {
		t.Errorf("expected negative cash flow status, got %q", resp.CashFlowStatus)
	}
	if len(resp.Result.YearlyProjection) != 11 {
		t.Errorf("expected 11 projection entries, got %d", len(resp.Result.YearlyProjection))
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleROIRejectsBadInput(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "wrong method", method: http.MethodGet, body: "", status: http.StatusMethodNotAllowed},
		{name: "malformed JSON", method: http.MethodPost, body: "{", status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, body: `{"input":{"purchasePrise":1}}`, status: http.StatusBadRequest},
		{name: "string amount", method: http.MethodPost, body: `{"input":{"purchasePrice":"lots"}}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/roi", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleROIWarnings(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/roi", strings.NewReader(`{"input":{"purchasePrice":1000000,"monthlyRent":-10}}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp roiResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "default" {
		t.Errorf("expected default name, got %q", resp.Name)
	}
	if len(resp.Warnings) != 1 || !strings.Contains(resp.Warnings[0], "monthlyRent") {
		t.Errorf("expected a monthlyRent warning, got %v", resp.Warnings)
	}
	if resp.Result.AnnualGrossRent != 0 {
		t.Errorf("negative rent should be treated as 0, got %.2f", resp.Result.AnnualGrossRent)
	}
}

func TestHandleForecastSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, "/api/forecast?optimize=true", readTestConfig(t)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp forecastResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Scenarios) != 2 {
		t.Fatalf("expected 2 active scenarios, got %d", len(resp.Scenarios))
	}
	if len(resp.Scenarios[0].Optimizations) != 2 {
		t.Errorf("expected optimizer summaries on the financed scenario, got %d", len(resp.Scenarios[0].Optimizations))
	}
	if !strings.HasPrefix(resp.CSV, "scenario,year,") {
		t.Errorf("expected CSV data in response, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
	if resp.ConfigYAML == "" {
		t.Fatal("expected config YAML in response")
	}
}

func TestHandleForecastWithoutOptimize(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, "/api/forecast", readTestConfig(t)))

	var resp forecastResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, scenario := range resp.Scenarios {
		if len(scenario.Optimizations) != 0 {
			t.Errorf("scenario %s should not carry optimizer summaries", scenario.Name)
		}
	}
}

func TestHandleForecastErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		_ = writer.WriteField("other", "value")
		_ = writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		handler := NewHandler(zap.NewNop(), 64, "test")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, uploadRequest(t, "/api/forecast", readTestConfig(t)))

		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("no active scenarios", func(t *testing.T) {
		handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")
		data := []byte("scenarios:\n  - name: idle\n    active: false\n")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, uploadRequest(t, "/api/forecast", data))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !strings.Contains(resp["error"], "no active scenarios") {
			t.Errorf("unexpected error %q", resp["error"])
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/forecast", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rr.Code)
		}
	})
}

func TestHandleReport(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, uploadRequest(t, "/api/report", readTestConfig(t)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
}

func TestHandleOptimize(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	var financed map[string]interface{}
	if err := json.Unmarshal([]byte(financedJSON), &financed); err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	payload := map[string]interface{}{
		"input": financed["input"],
		"optimizers": []map[string]interface{}{
			{"field": "downPaymentPercent"},
			{"field": "purchasePrice", "targetCapRatePercent": 5},
		},
		"currency": map[string]interface{}{"symbol": "$", "style": "international"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp optimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(resp.Summaries))
	}
	if math.Abs(resp.Summaries[0].Value-64.28) > 0.02 {
		t.Errorf("expected break-even down payment near 64.28%%, got %.4f", resp.Summaries[0].Value)
	}
	if math.Abs(resp.Summaries[1].Value-3720000) > 1 {
		t.Errorf("expected maximum price near 3720000, got %.2f", resp.Summaries[1].Value)
	}
	if !strings.HasPrefix(resp.Summaries[1].OriginalDisplay, "$5,000,000") {
		t.Errorf("expected international display, got %q", resp.Summaries[1].OriginalDisplay)
	}
}

func TestHandleOptimizeInvalidDirective(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	body := `{"input":{"purchasePrice":1000000,"monthlyRent":8000},"optimizers":[{"field":"rent"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/optimize", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleConfigExport(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	var payload map[string]interface{}
	if err := yaml.Unmarshal(readTestConfig(t), &payload); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		ConfigYAML string   `json:"configYaml"`
		Warnings   []string `json:"warnings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	loggingIdx := strings.Index(resp.ConfigYAML, "logging:")
	outputIdx := strings.Index(resp.ConfigYAML, "output:")
	currencyIdx := strings.Index(resp.ConfigYAML, "currency:")
	scenariosIdx := strings.Index(resp.ConfigYAML, "scenarios:")
	if loggingIdx != 0 || outputIdx < loggingIdx || currencyIdx < outputIdx || scenariosIdx < currencyIdx {
		t.Errorf("unexpected key order in exported YAML:\n%s", resp.ConfigYAML)
	}
	if !strings.Contains(resp.ConfigYAML, "purchasePrice: 5000000") {
		t.Errorf("expected whole numbers to stay integers:\n%s", resp.ConfigYAML)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", resp.Warnings)
	}
}

func TestHandleVersionAndHealth(t *testing.T) {
	handler := NewHandler(nil, 0, "  ")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	var version map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &version); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if version["version"] != "dev" {
		t.Errorf("expected dev version, got %q", version["version"])
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestMarshalOrderedConfigYAML(t *testing.T) {
	payload := map[string]interface{}{
		"zeta":      1,
		"scenarios": []interface{}{},
		"alpha":     2,
		"output":    map[string]interface{}{"format": "csv"},
	}
	data, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		t.Fatalf("marshalOrderedConfigYAML() error = %v", err)
	}
	text := string(data)
	order := []string{"output:", "scenarios:", "alpha:", "zeta:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		if idx <= last {
			t.Fatalf("key %s out of order in:\n%s", key, text)
		}
		last = idx
	}
}

func TestCoerceBool(t *testing.T) {
	tests := map[interface{}]bool{
		"true":  true,
		"1":     true,
		"false": false,
		"":      false,
		"maybe": false,
		true:    true,
		1.0:     true,
		0:       false,
	}
	for input, expected := range tests {
		if got := coerceBool(input); got != expected {
			t.Errorf("coerceBool(%v) = %v, expected %v", input, got, expected)
		}
	}
}
