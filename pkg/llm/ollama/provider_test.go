package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "system", req.Messages[0].Role)

		fmt.Fprint(w, `{"model":"llama3","message":{"role":"assistant","content":"Hi there"},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hello"}}, llm.WithSystem("short answers"))
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out)
}

func TestOllamaStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	s, err := p.Stream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hello"}})
	require.NoError(t, err)

	text, _, err := llm.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestOllamaStream_ErrorFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model not found"}`)
	}))
	defer srv.Close()

	s, err := NewOllamaProvider(srv.URL, "missing").Stream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	require.NoError(t, err)

	_, _, err = llm.Collect(s)
	assert.ErrorContains(t, err, "model not found")
}
