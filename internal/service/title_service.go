package service

import (
	"context"
	"strings"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"
)

type ITitleService interface {
	// Generate never fails: any provider problem yields the default title.
	Generate(ctx context.Context, firstMessage string) string
}

type titleService struct {
	registry *factory.Registry
	logger   logger.ILogger
	timeout  time.Duration
}

func NewTitleService(registry *factory.Registry, logger logger.ILogger) ITitleService {
	return &titleService{
		registry: registry,
		logger:   logger,
		timeout:  15 * time.Second,
	}
}

func (s *titleService) Generate(ctx context.Context, firstMessage string) string {
	if strings.TrimSpace(firstMessage) == "" {
		return constant.DefaultChatTitle
	}

	provider, opts, err := s.registry.Resolve(constant.TitleModel)
	if err != nil {
		s.logger.Warn("TITLE", "Title model unavailable", map[string]interface{}{"error": err.Error()})
		return constant.DefaultChatTitle
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts = append(opts, llm.WithSystem(constant.TitleSystemPrompt), llm.WithTemperature(0.3))
	title, err := provider.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: firstMessage}}, opts...)
	if err != nil {
		s.logger.Warn("TITLE", "Title generation failed", map[string]interface{}{"error": err.Error()})
		return constant.DefaultChatTitle
	}

	if title = CleanTitle(title); title == "" {
		return constant.DefaultChatTitle
	}
	return title
}

// CleanTitle strips quotes and colons, keeps the first line and caps the length.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.NewReplacer(`"`, "", "`", "", ":", "").Replace(title)
	title = strings.Trim(strings.Join(strings.Fields(title), " "), "'")

	runes := []rune(title)
	if len(runes) > constant.MaxTitleLength {
		title = strings.TrimSpace(string(runes[:constant.MaxTitleLength]))
	}
	return title
}
