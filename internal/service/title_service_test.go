package service

import (
	"context"
	"strings"
	"testing"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm/factory"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Trip planning: Japan"`, "Trip planning Japan"},
		{"  Weekend   recipes \nsecond line", "Weekend recipes"},
		{"'What's for dinner'", "What's for dinner"},
		{strings.Repeat("a", 120), strings.Repeat("a", constant.MaxTitleLength)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in))
	}
}

func TestTitleService_Generate(t *testing.T) {
	titleLLM := &fakeProvider{reply: `"Learning Go"`}
	svc := NewTitleService(newRegistry(&fakeProvider{}, titleLLM), logger.NewNopLogger())

	assert.Equal(t, "Learning Go", svc.Generate(context.Background(), "how do I learn go?"))
	opts := titleLLM.options()
	assert.Equal(t, "title-backend", opts.Model)
	assert.Equal(t, constant.TitleSystemPrompt, opts.System)

	assert.Equal(t, constant.DefaultChatTitle, svc.Generate(context.Background(), "   "))

	titleLLM.reply = ""
	assert.Equal(t, constant.DefaultChatTitle, svc.Generate(context.Background(), "hi"))
}

func TestTitleService_NoTitleModel(t *testing.T) {
	svc := NewTitleService(factory.NewRegistry(constant.DefaultChatModel), logger.NewNopLogger())
	assert.Equal(t, constant.DefaultChatTitle, svc.Generate(context.Background(), "hi"))
}
