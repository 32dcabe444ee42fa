package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseJSONResponsePlain(t *testing.T) {
	result := ParseJSONResponse(`{"key": "value", "num": 42}`)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got %v", result["key"])
	}
	if result["num"] != float64(42) {
		t.Errorf("expected num=42, got %v", result["num"])
	}
}

func TestParseJSONResponseWithCodeFence(t *testing.T) {
	text := "```json\n{\"key\": \"value\"}\n```"
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got %v", result["key"])
	}
}

func TestParseJSONResponseWithSurroundingProse(t *testing.T) {
	text := "Here are the scores you asked for:\n{\"2501.01234\": {\"score\": 85}}\nLet me know if you need more."
	result := ParseJSONResponse(text)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if _, ok := result["2501.01234"]; !ok {
		t.Errorf("expected paper entry, got %v", result)
	}
}

func TestParseJSONResponseInvalid(t *testing.T) {
	if ParseJSONResponse("not json at all") != nil {
		t.Error("expected nil for invalid JSON")
	}
	if ParseJSONResponse("") != nil {
		t.Error("expected nil for empty string")
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}

		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "claude-3-5-haiku-latest" {
			t.Errorf("unexpected model %v", req["model"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": `{"ok": true}`},
			},
		})
	}))
	defer srv.Close()

	p := &AnthropicProvider{
		Model:   "claude-3-5-haiku-latest",
		APIKey:  "test-key",
		BaseURL: srv.URL,
		client:  srv.Client(),
	}

	got, err := p.Generate(context.Background(), "rate these papers", 1024)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"ok": true}` {
		t.Errorf("unexpected response %q", got)
	}
}

func TestAnthropicGenerateUnconfigured(t *testing.T) {
	p := &AnthropicProvider{Model: "m"}
	if p.IsConfigured() {
		t.Error("expected unconfigured provider")
	}
	if _, err := p.Generate(context.Background(), "x", 10); err == nil {
		t.Error("expected error without API key")
	}
}

func TestAnthropicGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &AnthropicProvider{Model: "m", APIKey: "k", BaseURL: srv.URL, client: srv.Client()}
	if _, err := p.Generate(context.Background(), "x", 10); err == nil {
		t.Error("expected error on non-200 response")
	}
}
