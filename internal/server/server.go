package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/property-roi/internal/config"
	"github.com/iwvelando/property-roi/internal/forecast"
	"github.com/iwvelando/property-roi/internal/optimizer"
	"github.com/iwvelando/property-roi/pkg/constants"
	formatutil "github.com/iwvelando/property-roi/pkg/format"
	"github.com/iwvelando/property-roi/pkg/optimization"
	"github.com/iwvelando/property-roi/pkg/output"
	"github.com/iwvelando/property-roi/pkg/report"
	"github.com/iwvelando/property-roi/pkg/roi"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type forecastOptions struct {
	Optimize bool
}

// NewHandler constructs the HTTP handler that serves the ROI API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Single evaluation from a JSON input
	mux.HandleFunc("/api/roi", h.handleROI)

	// Scenario file evaluation (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// PDF report for a scenario file (file upload)
	mux.HandleFunc("/api/report", h.handleReport)

	// Optimizer directives against a JSON input
	mux.HandleFunc("/api/optimize", h.handleOptimize)

	// Config serialization endpoint for downloads
	mux.HandleFunc("/api/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", h.handleHealth)

	return mux
}

// WithMiddleware wraps next with request IDs and, unless disabled, per-client
// rate limiting. The returned stop function releases the limiter.
func WithMiddleware(logger *zap.Logger, cfg *Config, next http.Handler) (http.Handler, func()) {
	wrapped := next
	stop := func() {}
	if cfg != nil && !cfg.RateLimit.Disabled {
		limiter := NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimitWindow())
		wrapped = RateLimitMiddleware(limiter, logger, wrapped)
		stop = limiter.Stop
	}
	return RequestIDMiddleware(wrapped), stop
}

type roiRequest struct {
	Name  string    `json:"name"`
	Input roi.Input `json:"input"`
}

type roiResponse struct {
	Name           string             `json:"name"`
	Result         roi.Result         `json:"result"`
	CashFlowStatus roi.CashFlowStatus `json:"cashFlowStatus"`
	Warnings       []string           `json:"warnings,omitempty"`
	Duration       string             `json:"duration"`
}

type forecastResponse struct {
	Scenarios  []forecast.Forecast `json:"scenarios"`
	CSV        string              `json:"csv"`
	Warnings   []string            `json:"warnings,omitempty"`
	Duration   string              `json:"duration"`
	ConfigYAML string              `json:"configYaml,omitempty"`
}

type optimizeRequest struct {
	Input      roi.Input                `json:"input"`
	Optimizers []config.OptimizerConfig `json:"optimizers"`
	Currency   config.CurrencyConfig    `json:"currency"`
}

type optimizeResponse struct {
	Summaries []optimization.Summary `json:"summaries"`
	Warnings  []string               `json:"warnings,omitempty"`
}

func (h *handler) handleROI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	var req roiRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "server.handleROI")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "default"
	}

	fc := forecast.Evaluate(req.Name, req.Input)
	elapsed := time.Since(start)

	h.logger.Info("roi computed",
		zap.String("op", "server.handleROI"),
		zap.String("requestID", RequestIDFromContext(r.Context())),
		zap.String("scenario", fc.Name),
		zap.Int("warnings", len(fc.Warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, roiResponse{
		Name:           fc.Name,
		Result:         fc.Result,
		CashFlowStatus: fc.Result.CashFlowStatus(),
		Warnings:       fc.Warnings,
		Duration:       elapsed.String(),
	})
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	configBytes, ok := h.readUpload(w, r, "server.handleForecast")
	if !ok {
		return
	}

	opts := forecastOptions{Optimize: coerceBool(r.URL.Query().Get("optimize"))}
	h.runForecast(w, r, configBytes, start, "server.handleForecast", opts)
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleReport"
	configBytes, ok := h.readUpload(w, r, op)
	if !ok {
		return
	}

	cfg, results, _, err := h.evaluate(configBytes, forecastOptions{Optimize: coerceBool(r.URL.Query().Get("optimize"))})
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	pdf, err := report.GeneratePDF(results, currencyFormatter(cfg.Currency))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render report: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.DefaultPDFFile))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("failed to write PDF response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleOptimize"
	var req optimizeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if len(req.Optimizers) == 0 {
		req.Optimizers = []config.OptimizerConfig{{Field: config.OptimizerFieldDownPayment}}
	}

	formatter := currencyFormatter(req.Currency)
	summaries := make([]optimization.Summary, 0, len(req.Optimizers))
	for _, directive := range req.Optimizers {
		summary, err := optimizer.Optimize(req.Input, directive, formatter)
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
			return
		}
		summaries = append(summaries, summary)
	}

	h.writeJSON(w, http.StatusOK, optimizeResponse{
		Summaries: summaries,
		Warnings:  forecast.Evaluate("request", req.Input).Warnings,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleConfigExport"
	var payload map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(normalizeNumbers(payload).(map[string]interface{}))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(yamlBytes))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"configYaml": string(yamlBytes),
		"warnings":   cfg.ValidateConfiguration(),
	})
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "currency", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

// normalizeNumbers turns whole JSON numbers back into integers so the
// exported YAML reads 5000000 rather than 5e+06.
func normalizeNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, inner := range v {
			v[key] = normalizeNumbers(inner)
		}
		return v
	case []interface{}:
		for i, inner := range v {
			v[i] = normalizeNumbers(inner)
		}
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return int64(v)
		}
		return v
	default:
		return v
	}
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

// readUpload extracts the "file" form field, enforcing the upload limit.
func (h *handler) readUpload(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return nil, false
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return nil, false
	}
	return buf.Bytes(), true
}

// evaluate loads a scenario file, runs the optimizer when asked and computes
// every active scenario.
func (h *handler) evaluate(configBytes []byte, opts forecastOptions) (*config.Configuration, []forecast.Forecast, []string, error) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return nil, nil, nil, err
	}

	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if opts.Optimize {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize optimizer: %w", err)
		}
		optimizationResult, err = runner.Run()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("optimizer execution failed: %w", err)
		}
	}

	results, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to compute forecast: %w", err)
	}

	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)
	}
	return cfg, results, warnings, nil
}

func (h *handler) runForecast(w http.ResponseWriter, r *http.Request, configBytes []byte, start time.Time, op string, opts forecastOptions) {
	cfg, results, warnings, err := h.evaluate(configBytes, opts)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results, currencyFormatter(cfg.Currency)); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := forecastResponse{
		Scenarios:  results,
		CSV:        csvBuf.String(),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("requestID", RequestIDFromContext(r.Context())),
		zap.Int("scenarios", len(results)),
		zap.Bool("optimize", opts.Optimize),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func currencyFormatter(c config.CurrencyConfig) formatutil.Formatter {
	return formatutil.NewFormatter(c.Symbol, c.Style, c.ExchangeRate, c.Abbreviate)
}

// decodeJSON decodes a size-limited request body, rejecting unknown fields so
// misspelled inputs are not silently treated as zero.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestID", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}
