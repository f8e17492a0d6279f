package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/domain"
	"github.com/treadline/tiredex/internal/domain/catalog"
	"github.com/treadline/tiredex/internal/metrics"
)

// defaults for the ranking call. One request, no retries: the search
// pipeline already degrades to deterministic order on failure, so a retry
// would only add latency to the unhappy path.
const (
	defaultTimeout     = 15 * time.Second
	defaultTemperature = 0.2
)

// Ranker reorders catalog items by relevance using an OpenAI-compatible
// chat completion API.
type Ranker struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	provider    string
	logger      *zap.Logger
}

// Config holds the ranking provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Provider    string
	Logger      *zap.Logger
}

// NewRanker creates an OpenAI-compatible ranking provider.
func NewRanker(cfg *Config) *Ranker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	r := &Ranker{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
	if r.temperature <= 0 {
		r.temperature = defaultTemperature
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	return r
}

// Rank sends the query and serialized candidates to the model and parses the
// relevance-ordered array it returns. Every failure mode (transport error,
// timeout, non-array reply, parse error) is wrapped with
// domain.ErrRankingFailed; the caller decides how to degrade.
func (r *Ranker) Rank(
	ctx context.Context, query string, candidates []catalog.Item, limit int,
) ([]catalog.Item, error) {
	prompt, err := buildPrompt(query, candidates, limit)
	if err != nil {
		return nil, fmt.Errorf("serialize candidates: %w: %w", err, domain.ErrRankingFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.RankingRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		metrics.RankingErrorsTotal.WithLabelValues(r.provider, r.model, "api_error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.RankingRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		metrics.RankingErrorsTotal.WithLabelValues(r.provider, r.model, "empty_response").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrRankingFailed)
	}

	metrics.RankingRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.RankingRequestDuration.WithLabelValues(r.provider, r.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.RankingTokensTotal.WithLabelValues(r.provider, r.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.RankingTokensTotal.WithLabelValues(r.provider, r.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	ranked, err := parseRanked(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.RankingErrorsTotal.WithLabelValues(r.provider, r.model, "parse_error").Inc()
		return nil, err
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Ranker) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildPrompt asks for a relevance-ordered JSON array of at most limit
// items, with no explanation text, over the serialized candidate set.
func buildPrompt(query string, candidates []catalog.Item, limit int) (string, error) {
	data, err := json.Marshal(candidates)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User request: %s\n\n", query)
	fmt.Fprintf(&b, "From the tires below, return the top %d ordered by how well they match the request.\n", limit)
	b.WriteString("Reply with a JSON array only, no explanation text.\n\n")
	b.WriteString("Tires:\n")
	b.Write(data)
	return b.String(), nil
}

// parseRanked parses the model reply as an ordered item array. Markdown code
// fences around the array are tolerated; anything that is not an array is a
// ranking failure.
func parseRanked(content string) ([]catalog.Item, error) {
	content = stripFences(strings.TrimSpace(content))

	var items []catalog.Item
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("response is not an item array: %w: %w", err, domain.ErrRankingFailed)
	}
	return items, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrRankingFailed so the pipeline can
// match the whole class at once.
func parseAPIError(err error) error {
	wrap := domain.ErrRankingFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("ranking API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("ranking API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("ranking request failed: %w: %w", err, wrap)
}
