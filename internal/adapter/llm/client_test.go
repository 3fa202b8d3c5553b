package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatyadav31/Lumora-Ai/internal/logger"
)

func TestClientCreateChatCompletion(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-default", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:8080", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Lumora", r.Header.Get("X-Title"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/v1/", "sk-default", time.Second,
		WithReferer("http://localhost:8080"), WithTitle("Lumora"))
	temp := 0.1
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:       "gpt",
		Temperature: &temp,
		Messages: []ChatMessage{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt", resp.Model)
	assert.Equal(t, "hi", resp.Content())

	assert.Equal(t, "gpt", gotBody["model"])
	assert.Equal(t, 0.1, gotBody["temperature"])
	assert.Len(t, gotBody["messages"], 2)
	assert.NotContains(t, gotBody, "APIKey")
}

func TestClientPerCallKeyOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-call", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-default", 0)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt",
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
		APIKey:   "sk-call",
	})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Content())
}

func TestClientCreateChatCompletionError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "provider envelope",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"No auth credentials found","code":401}}`,
			wantMessage: "No auth credentials found",
		},
		{
			name:        "plain body",
			status:      http.StatusBadGateway,
			body:        "upstream down",
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewClient(server.URL, "", time.Second)
			_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
				Model:    "gpt",
				Messages: []ChatMessage{{Role: "user", Content: "hello"}},
			})
			require.Error(t, err)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantMessage, httpErr.ProviderMessage())
		})
	}
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"google/gemini-2.0-flash-lite-preview-02-05:free","name":"Gemini Flash Lite","created":1}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "Gemini Flash Lite", models[0].Name)
}

func TestClientListModelsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "bad")
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.ListModels(context.Background())
	assert.Error(t, err)
}

func TestMockClientBuildsQueryFromPrompt(t *testing.T) {
	client := NewMockClient()
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model: "mock",
		Messages: []ChatMessage{
			{Role: "system", Content: "You are an analyst.\nThe table 'uploaded_data' has the following columns: day (date), region (string), sales (number).\nReturn JSON."},
			{Role: "user", Content: "top regions"},
		},
	})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Content()), &out))
	assert.Equal(t, `SELECT "day", SUM("sales") AS "total_sales" FROM uploaded_data GROUP BY "day" ORDER BY "total_sales" DESC LIMIT 100`, out["sql"])
	viz := out["visualization"].(map[string]any)
	assert.Equal(t, "bar", viz["type"])
	assert.Equal(t, "total_sales", viz["dataKey"])
}

func TestMockClientPreviewWithoutSchema(t *testing.T) {
	resp, err := NewMockClient().CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Content(), "SELECT * FROM uploaded_data LIMIT 100")
	assert.NotContains(t, resp.Content(), "visualization")
}

func TestNewLLMClient(t *testing.T) {
	log := logger.Discard()
	assert.IsType(t, &MockClient{}, NewLLMClient("mock", "", "", 0, log))
	assert.IsType(t, &Client{}, NewLLMClient("", "https://openrouter.ai/api/v1", "k", 0, log))
}
