// Package datastream encodes assistant output in the line-based data stream protocol the
// chat UI consumes: one `<code>:<json>` frame per line.
package datastream

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	HeaderName  = "X-Vercel-AI-Data-Stream"
	HeaderValue = "v1"
	ContentType = "text/plain; charset=utf-8"
)

const (
	codeText       = "0"
	codeError      = "3"
	codeReasoning  = "g"
	codeStartStep  = "f"
	codeFinishStep = "e"
	codeFinish     = "d"
)

type FinishReason string

const (
	FinishStop  FinishReason = "stop"
	FinishError FinishReason = "error"
)

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

type flusher interface {
	Flush() error
}

// Writer is not safe for concurrent use. After the first write error every later call
// returns that error without writing, so a disconnected client is detected once.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) frame(code string, payload interface{}) error {
	if w.err != nil {
		return w.err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", code, err)
	}
	if _, err := fmt.Fprintf(w.w, "%s:%s\n", code, data); err != nil {
		w.err = err
		return err
	}
	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

func (w *Writer) StartStep(messageId string) error {
	return w.frame(codeStartStep, map[string]string{"messageId": messageId})
}

func (w *Writer) Text(delta string) error {
	return w.frame(codeText, delta)
}

func (w *Writer) Reasoning(delta string) error {
	return w.frame(codeReasoning, delta)
}

func (w *Writer) Error(message string) error {
	return w.frame(codeError, message)
}

func (w *Writer) FinishStep(reason FinishReason, usage Usage) error {
	return w.frame(codeFinishStep, map[string]interface{}{
		"finishReason": reason,
		"usage":        usage,
		"isContinued":  false,
	})
}

func (w *Writer) Finish(reason FinishReason, usage Usage) error {
	return w.frame(codeFinish, map[string]interface{}{
		"finishReason": reason,
		"usage":        usage,
	})
}
