package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avrentals/backend/internal/metrics"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiAPIURL       = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultTimeout     = 20 * time.Second
)

// Gemini translates batches through the Google generative language API using
// a plain HTTP client. The API key is supplied per call by the credential
// rotation above this layer.
type Gemini struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	Model   string        // default: gemini-2.5-flash
	BaseURL string        // override for tests
	Timeout time.Duration // per-call HTTP timeout
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGemini creates a new Gemini provider.
func NewGemini(cfg GeminiConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIURL
	}

	return &Gemini{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model identifies which model produced a translation, for the audit column.
func (g *Gemini) Model() string {
	return g.model
}

// TranslateBatch sends one numbered prompt and parses the numbered reply.
// The returned slice has one slot per input; unparseable lines leave their
// slot empty.
func (g *Gemini) TranslateBatch(ctx context.Context, apiKey string, texts []string, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	prompt := BuildNumberedPrompt(texts, targetLang)

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.3,
			MaxOutputTokens: 2000,
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Message: "failed to marshal request", Cause: err}
	}

	startTime := time.Now()

	url := fmt.Sprintf(g.baseURL, g.model) + "?key=" + apiKey
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, &Error{Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues("network").Inc()
		return nil, &Error{Message: "request failed", Cause: err, Retryable: true}
	}
	defer resp.Body.Close()

	metrics.ProviderLatency.Observe(time.Since(startTime).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues("network").Inc()
		return nil, &Error{Message: "failed to read response", Cause: err, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, g.classifyHTTPError(resp, body)
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues("parse").Inc()
		return nil, &Error{Message: "failed to parse API response", Cause: err}
	}

	if apiResp.Error != nil {
		metrics.ProviderErrorsTotal.WithLabelValues("api").Inc()
		return nil, &Error{
			Message:   fmt.Sprintf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message),
			Throttled: apiResp.Error.Code == http.StatusTooManyRequests,
		}
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		metrics.ProviderErrorsTotal.WithLabelValues("empty").Inc()
		return nil, &Error{Message: "empty response from Gemini"}
	}

	metrics.ProviderRequestsTotal.WithLabelValues(g.model).Inc()

	reply := apiResp.Candidates[0].Content.Parts[0].Text
	return ParseNumberedReply(reply, len(texts)), nil
}

// classifyHTTPError maps HTTP failures onto the dispatch taxonomy: 429/503
// throttle the credential, other 5xx are retryable, the rest are terminal.
func (g *Gemini) classifyHTTPError(resp *http.Response, body []byte) error {
	status := resp.StatusCode

	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		metrics.ProviderErrorsTotal.WithLabelValues("throttled").Inc()
		return &Error{
			Message:    fmt.Sprintf("API returned status %d", status),
			Throttled:  true,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	metrics.ProviderErrorsTotal.WithLabelValues("api").Inc()
	return &Error{
		Message:   fmt.Sprintf("API returned status %d: %s", status, string(body)),
		Retryable: status >= 500,
	}
}

// parseRetryAfter handles the delay-seconds form of the Retry-After header.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

var _ Provider = (*Gemini)(nil)
