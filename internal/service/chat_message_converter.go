package service

import (
	"strings"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

func uiText(m dto.UIMessage) string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == entity.PartText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	if len(texts) == 0 {
		return m.Content
	}
	return strings.Join(texts, "\n")
}

func toEntityMessage(m dto.UIMessage, chatId, id uuid.UUID) entity.Message {
	parts := m.Parts
	if len(parts) == 0 && m.Content != "" {
		parts = []entity.MessagePart{{Type: entity.PartText, Text: m.Content}}
	}
	attachments := m.Attachments
	if attachments == nil {
		attachments = []entity.Attachment{}
	}
	return entity.Message{
		Id:          id,
		ChatId:      chatId,
		Role:        entity.MessageRole(m.Role),
		Parts:       parts,
		Attachments: attachments,
	}
}

// toLLMHistory keeps the conversation order and drops messages with nothing to send.
func toLLMHistory(messages []dto.UIMessage) []llm.Message {
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		msg := llm.Message{
			Role:    m.Role,
			Content: uiText(m),
		}
		for _, a := range m.Attachments {
			msg.Attachments = append(msg.Attachments, llm.Attachment{URL: a.Url, MimeType: a.ContentType})
		}
		if msg.Content == "" && len(msg.Attachments) == 0 {
			continue
		}
		history = append(history, msg)
	}
	return history
}

// withSystemPrompt adds the model's system prompt unless the conversation carries attachments.
func withSystemPrompt(opts []llm.Option, messages []dto.UIMessage, prompt string) []llm.Option {
	for _, m := range messages {
		if len(m.Attachments) > 0 {
			return opts
		}
	}
	return append(opts, llm.WithSystem(prompt))
}

func assistantParts(text, reasoning string) []entity.MessagePart {
	parts := make([]entity.MessagePart, 0, 2)
	if reasoning != "" {
		parts = append(parts, entity.MessagePart{Type: entity.PartReasoning, Reasoning: reasoning})
	}
	return append(parts, entity.MessagePart{Type: entity.PartText, Text: text})
}
