package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Suggest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var apiReq ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if apiReq.Model != "llama3.1:8b" {
			t.Errorf("Expected model llama3.1:8b, got %s", apiReq.Model)
		}
		if apiReq.Stream {
			t.Error("Expected streaming disabled")
		}
		if apiReq.System == "" {
			t.Error("Expected system prompt in request")
		}

		resp := ollamaResponse{
			Model:           apiReq.Model,
			Response:        "TAGLINE: Warehouse robots on demand\nKEYWORDS: robotics, logistics",
			Done:            true,
			PromptEvalCount: 50,
			EvalCount:       25,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL: server.URL,
		Model:   "llama3.1:8b",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Suggest(context.Background(), Request{CompanyName: "Acme Robotics"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if resp.Tagline != "Warehouse robots on demand" {
		t.Errorf("Unexpected tagline: %s", resp.Tagline)
	}
	if len(resp.Keywords) != 2 {
		t.Errorf("Unexpected keywords: %v", resp.Keywords)
	}
	if resp.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", resp.Provider)
	}
	if resp.TokensUsed != 75 {
		t.Errorf("Expected 75 tokens used, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Suggest_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err == nil {
		t.Fatal("Expected error without a model name")
	}
	if !strings.Contains(err.Error(), "model must be specified") {
		t.Errorf("Expected model-required error, got %v", err)
	}
}

func TestOllamaProvider_Suggest_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Zero token counts, as some models report
		_, _ = w.Write([]byte(`{"model": "mistral", "response": "TAGLINE: x", "done": true}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if resp.TokensUsed == 0 {
		t.Error("Expected estimated token count when the model reports none")
	}
}

func TestOllamaProvider_Suggest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'mistral' not found, try pulling it first"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "try pulling it first") {
		t.Errorf("Expected API error message surfaced, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Expected path /api/tags, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}
}

func TestOllamaProvider_IsAvailable_Down(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Immediately close to simulate Ollama not running

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 1})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable when the server is down")
	}
}
