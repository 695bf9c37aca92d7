package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-dashboard/src/pkg/llm"
	"erp-dashboard/src/pkg/util"
)

func TestNewClientRequiresKey(t *testing.T) {
	client, e := NewClient(context.Background(), DefaultValueConfig(), "")
	assert.Nil(t, client)
	assert.NotNil(t, e)
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Cash is healthy."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 4, "totalTokenCount": 16},
			"modelVersion": "gemini-2.0-flash-001",
			"responseId": "abc"
		}`))
	}))
	defer server.Close()

	cfg := DefaultValueConfig()
	cfg.BaseURL = server.URL
	client, e := NewClient(context.Background(), cfg, "test-key")
	require.Nil(t, e)
	assert.Equal(t, "gemini", client.Name())
	assert.Equal(t, "gemini-2.0-flash", client.Model())

	response, e := client.Generate(context.Background(), llm.Request{
		System:          "You are a financial analyst.",
		Prompt:          "How is cash?",
		Temperature:     util.Ptr(0.6),
		MaxOutputTokens: 300,
	})
	require.Nil(t, e)

	assert.Equal(t, "Cash is healthy.", response.Text)
	assert.Equal(t, "gemini-2.0-flash-001", response.Meta.Model)
	assert.Equal(t, "abc", response.Meta.ResponseID)
	assert.Equal(t, "STOP", response.Meta.Status)
	assert.Equal(t, 16, response.Meta.TokensTotal)
	assert.Equal(t, 0.6, response.Meta.Temperature)

	assert.True(t, strings.HasSuffix(path, "models/gemini-2.0-flash:generateContent"), path)
	generationConfig, _ := body["generationConfig"].(map[string]any)
	require.NotNil(t, generationConfig)
	assert.EqualValues(t, 300, generationConfig["maxOutputTokens"])
	assert.NotNil(t, body["systemInstruction"])
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	cfg := DefaultValueConfig()
	cfg.BaseURL = server.URL
	client, e := NewClient(context.Background(), cfg, "test-key")
	require.Nil(t, e)

	_, e = client.Generate(context.Background(), llm.Request{Prompt: "hi"})
	assert.NotNil(t, e)
}
