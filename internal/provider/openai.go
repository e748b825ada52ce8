package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avrentals/backend/internal/metrics"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI translates batches through any OpenAI-compatible chat completion
// endpoint. It uses the same numbered-list wire format as the Gemini
// provider, so the dispatch layer cannot tell them apart.
type OpenAI struct {
	model       string
	baseURL     string
	temperature float32
	timeout     time.Duration
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	Model       string        // default: gpt-4o-mini
	BaseURL     string        // custom endpoint (optional)
	Temperature float32       // default: 0.3
	Timeout     time.Duration // per-call HTTP timeout
}

// NewOpenAI creates a new OpenAI-compatible provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAI{
		model:       model,
		baseURL:     cfg.BaseURL,
		temperature: temperature,
		timeout:     timeout,
	}
}

func (p *OpenAI) Model() string {
	return p.model
}

// TranslateBatch sends one numbered prompt and parses the numbered reply.
func (p *OpenAI) TranslateBatch(ctx context.Context, apiKey string, texts []string, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	// The client is rebuilt per call because the key rotates above this
	// layer; construction is a struct copy, not a connection.
	config := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	config.HTTPClient = &http.Client{Timeout: p.timeout}
	client := openai.NewClientWithConfig(config)

	startTime := time.Now()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildNumberedPrompt(texts, targetLang)},
		},
		Temperature: p.temperature,
	})

	metrics.ProviderLatency.Observe(time.Since(startTime).Seconds())

	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderErrorsTotal.WithLabelValues("empty").Inc()
		return nil, &Error{Message: "empty response from provider", Retryable: true}
	}

	metrics.ProviderRequestsTotal.WithLabelValues(p.model).Inc()

	return ParseNumberedReply(resp.Choices[0].Message.Content, len(texts)), nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			apiErr.HTTPStatusCode == http.StatusServiceUnavailable:
			metrics.ProviderErrorsTotal.WithLabelValues("throttled").Inc()
			return &Error{Message: "provider throttled", Cause: err, Throttled: true}
		case apiErr.HTTPStatusCode >= 500:
			metrics.ProviderErrorsTotal.WithLabelValues("api").Inc()
			return &Error{Message: "provider unavailable", Cause: err, Retryable: true}
		default:
			metrics.ProviderErrorsTotal.WithLabelValues("api").Inc()
			return &Error{Message: "API call failed", Cause: err}
		}
	}

	metrics.ProviderErrorsTotal.WithLabelValues("network").Inc()
	return &Error{Message: "API call failed", Cause: err, Retryable: true}
}

var _ Provider = (*OpenAI)(nil)
