package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-chatbot-be/pkg/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const maxAttachmentBytes = 10 << 20

var ErrAttachmentHost = errors.New("attachment host is not allowed")

type GeminiProvider struct {
	client       *genai.Client
	ModelName    string
	httpClient   *http.Client
	allowedHosts map[string]bool
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

// NewGeminiProvider creates a provider. Attachments are only downloaded over https from
// attachmentHosts; with none configured every attachment is refused.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, attachmentHosts []string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{
		client:    client,
		ModelName: modelName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		allowedHosts: hostSet(attachmentHosts),
	}, nil
}

func hostSet(hosts []string) map[string]bool {
	set := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if h != "" {
			set[strings.ToLower(h)] = true
		}
	}
	return set
}

func (g *GeminiProvider) checkAttachmentURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse attachment url: %w", err)
	}
	if u.Scheme != "https" || !g.allowedHosts[strings.ToLower(u.Host)] {
		return fmt.Errorf("%w: %s", ErrAttachmentHost, u.Host)
	}
	return nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) model(options *llm.Options) *genai.GenerativeModel {
	name := g.ModelName
	if options.Model != "" {
		name = options.Model
	}
	m := g.client.GenerativeModel(name)
	m.SetTemperature(float32(options.Temperature))
	if options.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(options.MaxTokens))
	}
	if options.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(options.System)},
		}
	}
	return m
}

// toContents maps history to Gemini contents. System messages are folded into the
// system instruction, assistant turns become the "model" role.
func (g *GeminiProvider) toContents(ctx context.Context, history []llm.Message, options *llm.Options) ([]*genai.Content, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			system = append(system, msg.Content)
			continue
		}

		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}

		var parts []genai.Part
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, a := range msg.Attachments {
			blob, err := g.fetchAttachment(ctx, a)
			if err != nil {
				return nil, err
			}
			parts = append(parts, blob)
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	if len(system) > 0 {
		if options.System != "" {
			system = append([]string{options.System}, system...)
		}
		options.System = strings.Join(system, "\n\n")
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: empty conversation")
	}
	return contents, nil
}

func (g *GeminiProvider) fetchAttachment(ctx context.Context, a llm.Attachment) (genai.Blob, error) {
	if err := g.checkAttachmentURL(a.URL); err != nil {
		return genai.Blob{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("create attachment request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return genai.Blob{}, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return genai.Blob{}, fmt.Errorf("fetch attachment: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
	if err != nil {
		return genai.Blob{}, fmt.Errorf("read attachment: %w", err)
	}

	mimeType := a.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return genai.Blob{MIMEType: mimeType, Data: data}, nil
}

func (g *GeminiProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	options := llm.ApplyOptions(opts...)
	contents, err := g.toContents(ctx, history, options)
	if err != nil {
		return nil, err
	}

	cs := g.model(options).StartChat()
	last := contents[len(contents)-1]
	cs.History = contents[:len(contents)-1]

	return &geminiStream{iter: cs.SendMessageStream(ctx, last.Parts...)}, nil
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s, err := g.Stream(ctx, history, opts...)
	if err != nil {
		return "", err
	}
	text, _, err := llm.Collect(s)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

type geminiStream struct {
	iter    *genai.GenerateContentResponseIterator
	pending []llm.Chunk
}

func (s *geminiStream) Recv() (llm.Chunk, error) {
	for len(s.pending) == 0 {
		resp, err := s.iter.Next()
		if errors.Is(err, iterator.Done) {
			return llm.Chunk{}, io.EOF
		}
		if err != nil {
			return llm.Chunk{}, fmt.Errorf("gemini stream: %w", err)
		}
		s.pending = append(s.pending, chunksOf(resp)...)
	}
	c := s.pending[0]
	s.pending = s.pending[1:]
	return c, nil
}

func (s *geminiStream) Close() error {
	return nil
}

func chunksOf(resp *genai.GenerateContentResponse) []llm.Chunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var chunks []llm.Chunk
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok && txt != "" {
			chunks = append(chunks, llm.Chunk{Type: llm.ChunkText, Text: string(txt)})
		}
	}
	return chunks
}
