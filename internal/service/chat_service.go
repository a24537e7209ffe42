package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/store"
	"ai-chatbot-be/pkg/datastream"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"
	"ai-chatbot-be/pkg/quota"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type IChatService interface {
	// PrepareTurn validates the submission and persists the user message. Nothing is
	// streamed yet, so every failure here can still be answered with a status code.
	PrepareTurn(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest, cookieModel string) (*Turn, error)
	// PrepareCustomTurn sets up a private chat that is never persisted.
	PrepareCustomTurn(ctx context.Context, userId uuid.UUID, req *dto.CustomChatRequest, cookieModel string) (*Turn, error)
	// RunTurn streams the reply as data stream frames and persists it when the model finishes.
	RunTurn(ctx context.Context, turn *Turn, w io.Writer) error

	DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error
	GetHistory(ctx context.Context, userId uuid.UUID) ([]dto.ChatResponse, error)
	ClearHistory(ctx context.Context, userId uuid.UUID) error
	GetChat(ctx context.Context, userId, chatId uuid.UUID) (*dto.ChatViewResponse, error)
	DeleteTrailingMessages(ctx context.Context, userId, messageId uuid.UUID) error
	UpdateVisibility(ctx context.Context, userId, chatId uuid.UUID, req *dto.UpdateVisibilityRequest) error
	GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error)
}

// Turn is one prepared request/response exchange.
type Turn struct {
	ChatId  uuid.UUID
	UserId  uuid.UUID
	ModelId string
	persist bool

	provider llm.LLMProvider
	options  []llm.Option
	history  []llm.Message
}

type ChatServiceConfig struct {
	MaxStreamDuration time.Duration
	MessagesPerDay    int
}

type chatService struct {
	queries   *store.Queries
	registry  *factory.Registry
	titles    ITitleService
	limiter   quota.Limiter
	publisher IPublisherService
	logger    logger.ILogger
	llmLogger logger.ILogger
	cfg       ChatServiceConfig
}

func NewChatService(
	queries *store.Queries,
	registry *factory.Registry,
	titles ITitleService,
	limiter quota.Limiter,
	publisher IPublisherService,
	logger logger.ILogger,
	llmLogger logger.ILogger,
	cfg ChatServiceConfig,
) IChatService {
	if cfg.MaxStreamDuration <= 0 {
		cfg.MaxStreamDuration = 60 * time.Second
	}
	return &chatService{
		queries:   queries,
		registry:  registry,
		titles:    titles,
		limiter:   limiter,
		publisher: publisher,
		logger:    logger,
		llmLogger: llmLogger,
		cfg:       cfg,
	}
}

func mostRecentUserMessage(messages []dto.UIMessage) *dto.UIMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == string(entity.RoleUser) {
			return &messages[i]
		}
	}
	return nil
}

func (s *chatService) resolveModel(selected, cookieModel string) (string, llm.LLMProvider, []llm.Option, error) {
	modelId := selected
	if modelId == "" {
		modelId = cookieModel
	}
	if modelId == "" {
		modelId = s.registry.Default()
	}

	provider, opts, err := s.registry.Resolve(modelId)
	if errors.Is(err, factory.ErrUnknownModel) {
		return "", nil, nil, apperror.Validation("Unknown chat model")
	}
	if err != nil {
		return "", nil, nil, err
	}
	return modelId, provider, opts, nil
}

func (s *chatService) PrepareTurn(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest, cookieModel string) (*Turn, error) {
	chatId, err := uuid.Parse(req.Id)
	if err != nil {
		return nil, apperror.Validation("Invalid chat id")
	}

	userMessage := mostRecentUserMessage(req.Messages)
	if userMessage == nil {
		return nil, apperror.Validation("No user message found")
	}
	messageId, err := uuid.Parse(userMessage.Id)
	if err != nil {
		return nil, apperror.Validation("Invalid message id")
	}

	modelId, provider, opts, err := s.resolveModel(req.SelectedChatModel, cookieModel)
	if err != nil {
		return nil, err
	}

	chat, err := s.queries.GetChatById(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if chat != nil && !chat.OwnedBy(userId) {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	if err := s.consumeQuota(ctx, userId); err != nil {
		return nil, err
	}

	stored := toEntityMessage(*userMessage, chatId, messageId)
	persist := true
	if chat == nil {
		persist = s.createChat(ctx, chatId, userId, stored.Text())
	}

	// Without a chat row the turn is streamed but nothing is stored under its id.
	if persist {
		stored.CreatedAt = store.Now()
		if err := s.queries.SaveMessages(ctx, []entity.Message{stored}); err != nil {
			s.refundQuota(ctx, userId)
			return nil, err
		}
	}

	return &Turn{
		ChatId:   chatId,
		UserId:   userId,
		ModelId:  modelId,
		persist:  persist,
		provider: provider,
		options:  withSystemPrompt(opts, req.Messages, constant.SystemPromptFor(modelId)),
		history:  toLLMHistory(req.Messages),
	}, nil
}

// createChat is best-effort: a failed title or insert must not block the reply.
// It reports whether the chat row now exists.
func (s *chatService) createChat(ctx context.Context, chatId, userId uuid.UUID, firstMessage string) bool {
	title := s.titles.Generate(ctx, firstMessage)

	if _, err := s.queries.SaveChat(ctx, chatId, userId, title); err != nil {
		s.logger.Warn("CHAT", "Error saving chat, continuing without it", map[string]interface{}{
			"chat_id": chatId.String(),
			"error":   err.Error(),
		})
		return false
	}

	s.publisher.Publish(ctx, constant.EventChatCreated, map[string]interface{}{
		"chat_id": chatId.String(),
		"user_id": userId.String(),
	})
	return true
}

func (s *chatService) consumeQuota(ctx context.Context, userId uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Consume(ctx, userId.String())
	if err != nil {
		s.logger.Warn("CHAT", "Quota backend unavailable, allowing message", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if !allowed {
		return apperror.RateLimited("You have exceeded your maximum number of messages for the day! Please try again later.")
	}
	return nil
}

func (s *chatService) refundQuota(ctx context.Context, userId uuid.UUID) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Refund(ctx, userId.String()); err != nil {
		s.logger.Warn("CHAT", "Failed to refund message quota", map[string]interface{}{"error": err.Error()})
	}
}

func (s *chatService) PrepareCustomTurn(ctx context.Context, userId uuid.UUID, req *dto.CustomChatRequest, cookieModel string) (*Turn, error) {
	if mostRecentUserMessage(req.Messages) == nil {
		return nil, apperror.Validation("No user message found")
	}

	modelId, provider, opts, err := s.resolveModel(req.SelectedChatModel, cookieModel)
	if err != nil {
		return nil, err
	}

	// The preset's leading system message is folded into the system instruction by the provider.
	return &Turn{
		UserId:   userId,
		ModelId:  modelId,
		provider: provider,
		options:  opts,
		history:  toLLMHistory(req.Messages),
	}, nil
}

func (s *chatService) RunTurn(ctx context.Context, turn *Turn, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.MaxStreamDuration)
	defer cancel()

	out := datastream.NewWriter(w)
	assistantId := uuid.New()
	_ = out.StartStep(assistantId.String())

	details := map[string]interface{}{
		"chat_id":      turn.ChatId.String(),
		"model":        turn.ModelId,
		"assistant_id": assistantId.String(),
	}

	text, reasoning, err := s.pump(ctx, turn, out)
	if err != nil {
		s.logger.Error("CHAT", "Chat API Error", withError(details, err))
		_ = out.Error(constant.StreamErrorMessage)
		_ = out.FinishStep(datastream.FinishError, datastream.Usage{})
		_ = out.Finish(datastream.FinishError, datastream.Usage{})
		return err
	}

	_ = out.FinishStep(datastream.FinishStop, datastream.Usage{})
	_ = out.Finish(datastream.FinishStop, datastream.Usage{})
	if out.Err() != nil {
		s.llmLogger.Debug("CHAT", "Client went away before the stream ended", withError(details, out.Err()))
	}

	if !turn.persist {
		return nil
	}

	assistant := entity.Message{
		Id:          assistantId,
		ChatId:      turn.ChatId,
		Role:        entity.RoleAssistant,
		Parts:       assistantParts(text, reasoning),
		Attachments: []entity.Attachment{},
		CreatedAt:   store.Now(),
	}
	if err := s.queries.SaveMessages(context.WithoutCancel(ctx), []entity.Message{assistant}); err != nil {
		s.logger.Error("CHAT", "Failed to save chat", withError(details, err))
		return nil
	}

	s.publisher.Publish(ctx, constant.EventMessageStreamed, map[string]interface{}{
		"chat_id":    turn.ChatId.String(),
		"message_id": assistantId.String(),
		"model":      turn.ModelId,
	})
	return nil
}

// pump drains the provider stream into out. Write failures are ignored so the reply is
// still collected and stored when the client disconnects.
func (s *chatService) pump(ctx context.Context, turn *Turn, out *datastream.Writer) (string, string, error) {
	stream, err := turn.provider.Stream(ctx, turn.history, turn.options...)
	if err != nil {
		return "", "", err
	}
	defer stream.Close()

	var text, reasoning strings.Builder
	var smoother datastream.Smoother
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return text.String(), reasoning.String(), err
		}

		switch chunk.Type {
		case llm.ChunkReasoning:
			reasoning.WriteString(chunk.Text)
			_ = out.Reasoning(chunk.Text)
		default:
			text.WriteString(chunk.Text)
			for _, word := range smoother.Push(chunk.Text) {
				_ = out.Text(word)
			}
		}
	}

	if rest := smoother.Flush(); rest != "" {
		_ = out.Text(rest)
	}

	s.llmLogger.Debug("CHAT", "Stream finished", map[string]interface{}{
		"model":          turn.ModelId,
		"text_len":       text.Len(),
		"reasoning_len":  reasoning.Len(),
		"history_length": len(turn.history),
	})
	return text.String(), reasoning.String(), nil
}

func (s *chatService) DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error {
	if _, err := loadOwnedChat(ctx, s.queries, userId, chatId); err != nil {
		return err
	}

	if err := s.queries.DeleteChatById(ctx, chatId); err != nil {
		return err
	}

	s.publisher.Publish(ctx, constant.EventChatDeleted, map[string]interface{}{
		"chat_id": chatId.String(),
		"user_id": userId.String(),
	})
	return nil
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID) ([]dto.ChatResponse, error) {
	chats, err := s.queries.GetChatsByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		res = append(res, dto.NewChatResponse(chat))
	}
	return res, nil
}

func (s *chatService) ClearHistory(ctx context.Context, userId uuid.UUID) error {
	if err := s.queries.DeleteAllChatsByUserId(ctx, userId); err != nil {
		return err
	}

	s.publisher.Publish(ctx, constant.EventHistoryCleared, map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}

func (s *chatService) GetChat(ctx context.Context, userId, chatId uuid.UUID) (*dto.ChatViewResponse, error) {
	chat, err := s.queries.GetChatById(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	owner := chat.OwnedBy(userId)
	if chat.Visibility == entity.VisibilityPrivate && !owner {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	var messages []entity.Message
	var votes []entity.Vote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		messages, err = s.queries.GetMessagesByChatId(gctx, chatId)
		return err
	})
	g.Go(func() error {
		var err error
		votes, err = s.queries.GetVotesByChatId(gctx, chatId)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &dto.ChatViewResponse{
		Chat:     dto.NewChatResponse(*chat),
		Messages: make([]dto.MessageResponse, 0, len(messages)),
		Votes:    dto.NewVoteResponses(votes),
		ReadOnly: !owner,
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, dto.NewMessageResponse(m))
	}
	return res, nil
}

func (s *chatService) DeleteTrailingMessages(ctx context.Context, userId, messageId uuid.UUID) error {
	messages, err := s.queries.GetMessageById(ctx, messageId)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return apperror.NotFound("Message not found")
	}
	message := messages[0]

	if _, err := loadOwnedChat(ctx, s.queries, userId, message.ChatId); err != nil {
		return err
	}

	if err := s.queries.DeleteMessagesByChatIdAfterTimestamp(ctx, message.ChatId, message.CreatedAt); err != nil {
		return err
	}

	s.publisher.Publish(ctx, constant.EventMessagesTruncated, map[string]interface{}{
		"chat_id":    message.ChatId.String(),
		"message_id": messageId.String(),
	})
	return nil
}

func (s *chatService) UpdateVisibility(ctx context.Context, userId, chatId uuid.UUID, req *dto.UpdateVisibilityRequest) error {
	visibility := entity.ChatVisibility(req.Visibility)
	if !visibility.Valid() {
		return apperror.Validation("Invalid visibility")
	}

	if _, err := loadOwnedChat(ctx, s.queries, userId, chatId); err != nil {
		return err
	}

	if err := s.queries.UpdateChatVisibilityById(ctx, chatId, visibility); err != nil {
		return err
	}

	s.publisher.Publish(ctx, constant.EventChatVisibilityChanged, map[string]interface{}{
		"chat_id":    chatId.String(),
		"visibility": req.Visibility,
	})
	return nil
}

func (s *chatService) GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error) {
	used, err := s.queries.CountUserMessagesSince(ctx, userId, store.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	return &dto.UsageResponse{Used: used, Limit: s.cfg.MessagesPerDay}, nil
}

func withError(details map[string]interface{}, err error) map[string]interface{} {
	merged := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		merged[k] = v
	}
	merged["error"] = err.Error()
	return merged
}
