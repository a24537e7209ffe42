// Package reasoning splits inline <think>...</think> output of reasoning models into
// separate reasoning and text chunks.
package reasoning

import (
	"context"
	"errors"
	"io"
	"strings"

	"ai-chatbot-be/pkg/llm"
)

const DefaultTag = "think"

type Extractor struct {
	inner    llm.Stream
	openTag  string
	closeTag string

	inside  bool
	buf     string
	pending []llm.Chunk
	done    bool
}

var _ llm.Stream = &Extractor{}

func NewExtractor(inner llm.Stream, tagName string) *Extractor {
	if tagName == "" {
		tagName = DefaultTag
	}
	return &Extractor{
		inner:    inner,
		openTag:  "<" + tagName + ">",
		closeTag: "</" + tagName + ">",
	}
}

func (e *Extractor) Recv() (llm.Chunk, error) {
	for len(e.pending) == 0 {
		if e.done {
			return llm.Chunk{}, io.EOF
		}

		chunk, err := e.inner.Recv()
		if errors.Is(err, io.EOF) {
			e.done = true
			e.emit(e.buf)
			e.buf = ""
			continue
		}
		if err != nil {
			return llm.Chunk{}, err
		}

		if chunk.Type == llm.ChunkReasoning {
			e.pending = append(e.pending, chunk)
			continue
		}
		e.feed(chunk.Text)
	}

	next := e.pending[0]
	e.pending = e.pending[1:]
	return next, nil
}

func (e *Extractor) Close() error {
	return e.inner.Close()
}

func (e *Extractor) feed(text string) {
	e.buf += text
	for {
		tag := e.openTag
		if e.inside {
			tag = e.closeTag
		}

		if idx := strings.Index(e.buf, tag); idx >= 0 {
			e.emit(e.buf[:idx])
			e.buf = e.buf[idx+len(tag):]
			e.inside = !e.inside
			continue
		}

		// Hold back a suffix that could still turn into the tag with the next chunk.
		keep := partialSuffix(e.buf, tag)
		e.emit(e.buf[:len(e.buf)-keep])
		e.buf = e.buf[len(e.buf)-keep:]
		return
	}
}

func (e *Extractor) emit(text string) {
	if text == "" {
		return
	}
	t := llm.ChunkText
	if e.inside {
		t = llm.ChunkReasoning
	}
	e.pending = append(e.pending, llm.Chunk{Type: t, Text: text})
}

// partialSuffix returns the length of the longest suffix of s that is a proper prefix of tag.
func partialSuffix(s, tag string) int {
	max := len(tag) - 1
	if len(s) < max {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}

// Provider wraps another provider so every response is run through an Extractor.
type Provider struct {
	llm.LLMProvider
	TagName string
}

func Wrap(p llm.LLMProvider, tagName string) *Provider {
	return &Provider{LLMProvider: p, TagName: tagName}
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	inner, err := p.LLMProvider.Stream(ctx, history, opts...)
	if err != nil {
		return nil, err
	}
	return NewExtractor(inner, p.TagName), nil
}

// Chat returns only the answer text; the reasoning is dropped.
func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s, err := p.Stream(ctx, history, opts...)
	if err != nil {
		return "", err
	}
	text, _, err := llm.Collect(s)
	return strings.TrimSpace(text), err
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
