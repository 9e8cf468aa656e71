package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func openAIHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var chatReq openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(chatReq.Messages) != 2 || chatReq.Messages[0].Role != "system" {
			t.Errorf("Expected system+user messages, got %+v", chatReq.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   chatReq.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{
				TotalTokens: 100,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestOpenAIProvider_Suggest_Success(t *testing.T) {
	server := httptest.NewServer(openAIHandler(t,
		"TAGLINE: Robots that pick anything\nKEYWORDS: robotics, warehouse automation, logistics"))
	defer server.Close()

	config := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	}
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Suggest(context.Background(), Request{
		CompanyName: "Acme Robotics",
		Description: "Autonomous picking arms.",
	})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if resp.Tagline != "Robots that pick anything" {
		t.Errorf("Unexpected tagline: %s", resp.Tagline)
	}
	if len(resp.Keywords) != 3 || resp.Keywords[1] != "warehouse-automation" {
		t.Errorf("Unexpected keywords: %v", resp.Keywords)
	}
	if resp.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", resp.Provider)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", resp.Model)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens used, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Suggest_DefaultModel(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var chatReq openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&chatReq)
		gotModel = chatReq.Model

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "TAGLINE: x"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Suggest(context.Background(), Request{CompanyName: "Acme"}); err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if gotModel != openai.GPT4oMini {
		t.Errorf("Expected default model %s, got %s", openai.GPT4oMini, gotModel)
	}
}

func TestOpenAIProvider_Suggest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Suggest_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Suggest_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Suggest(context.Background(), Request{CompanyName: "Acme"})
	if err == nil {
		t.Fatal("Expected error for empty choices, got nil")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider(Config{})
	if err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	healthy = false
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after server error")
	}
}
