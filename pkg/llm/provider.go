package llm

import (
	"context"
	"errors"
	"io"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role        string
	Content     string
	Attachments []Attachment
}

// Attachment references a file the user uploaded alongside a message.
type Attachment struct {
	URL      string
	MimeType string
}

type ChunkType string

const (
	ChunkText      ChunkType = "text"
	ChunkReasoning ChunkType = "reasoning"
)

// Chunk is one delta of a streamed completion.
type Chunk struct {
	Type ChunkType
	Text string
}

// Stream yields chunks until Recv returns io.EOF. Close must always be called.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	System      string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithSystem sets the system instruction. An empty prompt means none.
func WithSystem(prompt string) Option {
	return func(o *Options) {
		o.System = prompt
	}
}

func ApplyOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Stream sends a chat history and yields the response incrementally
	Stream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}

// Collect drains a stream into its text and reasoning content and closes it.
func Collect(s Stream) (text string, reasoning string, err error) {
	defer s.Close()

	var textBuf, reasoningBuf strings.Builder
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return textBuf.String(), reasoningBuf.String(), nil
		}
		if err != nil {
			return textBuf.String(), reasoningBuf.String(), err
		}
		switch chunk.Type {
		case ChunkReasoning:
			reasoningBuf.WriteString(chunk.Text)
		default:
			textBuf.WriteString(chunk.Text)
		}
	}
}

// SliceStream replays fixed chunks. Used by tests and fakes.
type SliceStream struct {
	Chunks []Chunk
	Err    error // returned instead of io.EOF once the chunks run out
	pos    int
	Closed bool
}

func (s *SliceStream) Recv() (Chunk, error) {
	if s.pos >= len(s.Chunks) {
		if s.Err != nil {
			return Chunk{}, s.Err
		}
		return Chunk{}, io.EOF
	}
	c := s.Chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *SliceStream) Close() error {
	s.Closed = true
	return nil
}
