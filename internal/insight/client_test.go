package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"iqboard-service/internal/domain"
)

func TestAnalyzeRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Username != "gradient_fan" || req.Percentage != 83 {
			t.Errorf("unexpected request %+v", req)
		}
		hash := "0xabc"
		_ = json.NewEncoder(w).Encode(domain.Analysis{
			AnalysisText:    "## Quiz Analysis\nSolid run.",
			TransactionHash: &hash,
			Verified:        true,
			Model:           "og-llm",
		})
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	analysis, err := client.Analyze(context.Background(), domain.AnalyzeRequest{
		Username:   "gradient_fan",
		Score:      10,
		Total:      12,
		Percentage: 83,
		Rank:       string(domain.RankProtocolScholar),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !analysis.Verified || analysis.Model != "og-llm" {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
	if analysis.TransactionHash == nil || *analysis.TransactionHash != "0xabc" {
		t.Fatalf("expected transaction hash")
	}
}

func TestAnalyzeFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL)
	if _, err := client.Analyze(context.Background(), domain.AnalyzeRequest{}); !errors.Is(err, domain.ErrAnalysisUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	unconfigured := NewClient(nil, "")
	if _, err := unconfigured.Analyze(context.Background(), domain.AnalyzeRequest{}); !errors.Is(err, domain.ErrAnalysisUnavailable) {
		t.Fatalf("expected unavailable without endpoint, got %v", err)
	}
}
