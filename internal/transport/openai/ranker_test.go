package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/domain"
	"github.com/treadline/tiredex/internal/domain/catalog"
	"github.com/treadline/tiredex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterRankingMetrics()
	os.Exit(m.Run())
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		resp := chatResponse{ID: "cmpl-1", Object: "chat.completion"}
		resp.Choices = append(resp.Choices, struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}{
			Message: struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			}{Role: "assistant", Content: content},
			FinishReason: "stop",
		})
		resp.Usage.PromptTokens = 120
		resp.Usage.TotalTokens = 150

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testRanker(t *testing.T, baseURL string) *Ranker {
	t.Helper()
	return NewRanker(&Config{
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Model:    "test-model",
		Timeout:  5 * time.Second,
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func testCandidates() []catalog.Item {
	return []catalog.Item{
		catalog.New("米其林", "Michelin", "205/55R16", []string{"comfort"}),
		catalog.New("普利司通", "Bridgestone", "225/45R17", []string{"sport"}),
	}
}

func TestRanker_Rank(t *testing.T) {
	reply := `[
		{"brand_common_name":"Bridgestone","size":"225/45R17","categories":["sport"]},
		{"brand_common_name":"Michelin","size":"205/55R16","categories":["comfort"]}
	]`
	server := completionServer(t, reply)
	defer server.Close()

	ranked, err := testRanker(t, server.URL).Rank(
		context.Background(), "sport r17", testCandidates(), 20,
	)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ranked))
	}
	if ranked[0].BrandCommon() != "Bridgestone" {
		t.Errorf("order not preserved from reply: %q first", ranked[0].BrandCommon())
	}
}

func TestRanker_RankTruncatesToLimit(t *testing.T) {
	reply := `[
		{"brand_common_name":"A","size":"R16"},
		{"brand_common_name":"B","size":"R16"},
		{"brand_common_name":"C","size":"R16"}
	]`
	server := completionServer(t, reply)
	defer server.Close()

	ranked, err := testRanker(t, server.URL).Rank(context.Background(), "q", testCandidates(), 2)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(ranked))
	}
}

func TestRanker_RankAcceptsFencedReply(t *testing.T) {
	reply := "```json\n[{\"brand_common_name\":\"A\",\"size\":\"R16\"}]\n```"
	server := completionServer(t, reply)
	defer server.Close()

	ranked, err := testRanker(t, server.URL).Rank(context.Background(), "q", testCandidates(), 20)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(ranked) != 1 || ranked[0].BrandCommon() != "A" {
		t.Errorf("fenced reply not parsed: %v", ranked)
	}
}

func TestRanker_NonArrayReplyFails(t *testing.T) {
	server := completionServer(t, `{"note":"I cannot rank these"}`)
	defer server.Close()

	_, err := testRanker(t, server.URL).Rank(context.Background(), "q", testCandidates(), 20)
	if !errors.Is(err, domain.ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}
}

func TestRanker_APIErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := testRanker(t, server.URL).Rank(context.Background(), "q", testCandidates(), 20)
	if !errors.Is(err, domain.ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}
}

func TestRanker_TimeoutWrapped(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ranker := NewRanker(&Config{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "test-model",
		Timeout:  50 * time.Millisecond,
		Provider: "test",
		Logger:   zap.NewNop(),
	})

	_, err := ranker.Rank(context.Background(), "q", testCandidates(), 20)
	if !errors.Is(err, domain.ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed on timeout, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt("quiet r16", testCandidates(), 20)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}

	for _, want := range []string{"quiet r16", "top 20", "JSON array only", "205/55R16"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[1]`, `[1]`},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
