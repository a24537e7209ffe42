// Package openai talks to OpenAI-compatible chat completion APIs (Groq and gateways in front of it).
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chatbot-be/pkg/llm"
)

type OpenAIProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	return &OpenAIProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			// No overall timeout: streams are bounded by the request context.
			Transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second},
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamResponse struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			Reasoning string `json:"reasoning"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) buildRequest(history []llm.Message, options *llm.Options) chatRequest {
	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]chatMessage, 0, len(history)+1)
	if options.System != "" {
		messages = append(messages, chatMessage{Role: llm.RoleSystem, Content: options.System})
	}
	for _, msg := range history {
		content := msg.Content
		// This API takes text only; attachments are passed as links.
		for _, a := range msg.Attachments {
			content += fmt.Sprintf("\n[attachment: %s]", a.URL)
		}
		messages = append(messages, chatMessage{Role: msg.Role, Content: content})
	}

	return chatRequest{
		Model:       model,
		Messages:    messages,
		Stream:      true,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
}

func (p *OpenAIProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	payload, err := json.Marshal(p.buildRequest(history, llm.ApplyOptions(opts...)))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chat completion error: status %d, body: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: resp.Body, scanner: scanner}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s, err := p.Stream(ctx, history, opts...)
	if err != nil {
		return "", err
	}
	text, _, err := llm.Collect(s)
	return text, err
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// sseStream reads `data: {...}` lines until the `[DONE]` sentinel.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	pending []llm.Chunk
	done    bool
}

func (s *sseStream) Recv() (llm.Chunk, error) {
	for len(s.pending) == 0 {
		if s.done || !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil && !s.done {
				return llm.Chunk{}, fmt.Errorf("read stream: %w", err)
			}
			return llm.Chunk{}, io.EOF
		}

		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			s.done = true
			continue
		}

		var event streamResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			continue
		}
		if event.Error != nil {
			return llm.Chunk{}, fmt.Errorf("chat completion stream error: %s", event.Error.Message)
		}
		for _, choice := range event.Choices {
			if choice.Delta.Reasoning != "" {
				s.pending = append(s.pending, llm.Chunk{Type: llm.ChunkReasoning, Text: choice.Delta.Reasoning})
			}
			if choice.Delta.Content != "" {
				s.pending = append(s.pending, llm.Chunk{Type: llm.ChunkText, Text: choice.Delta.Content})
			}
		}
	}

	c := s.pending[0]
	s.pending = s.pending[1:]
	return c, nil
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
