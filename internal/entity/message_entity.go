package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type PartType string

const (
	PartText           PartType = "text"
	PartReasoning      PartType = "reasoning"
	PartFile           PartType = "file"
	PartToolInvocation PartType = "tool-invocation"
	PartStepStart      PartType = "step-start"
)

// MessagePart mirrors the UI message part shape the browser client sends and renders.
type MessagePart struct {
	Type           PartType        `json:"type"`
	Text           string          `json:"text,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	MimeType       string          `json:"mimeType,omitempty"`
	Data           string          `json:"data,omitempty"`
	ToolInvocation json.RawMessage `json:"toolInvocation,omitempty"`
}

type Attachment struct {
	Url         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

type Message struct {
	Id          uuid.UUID
	ChatId      uuid.UUID
	Role        MessageRole
	Parts       []MessagePart
	Attachments []Attachment
	CreatedAt   time.Time
}

// Text joins the text parts of the message.
func (m *Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
