package service

import (
	"context"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/store"

	"github.com/google/uuid"
)

type IVoteService interface {
	GetVotes(ctx context.Context, userId, chatId uuid.UUID) ([]dto.VoteResponse, error)
	Vote(ctx context.Context, userId uuid.UUID, req *dto.VoteRequest) error
}

type voteService struct {
	queries   *store.Queries
	publisher IPublisherService
}

func NewVoteService(queries *store.Queries, publisher IPublisherService) IVoteService {
	return &voteService{
		queries:   queries,
		publisher: publisher,
	}
}

func (s *voteService) GetVotes(ctx context.Context, userId, chatId uuid.UUID) ([]dto.VoteResponse, error) {
	if _, err := loadOwnedChat(ctx, s.queries, userId, chatId); err != nil {
		return nil, err
	}

	votes, err := s.queries.GetVotesByChatId(ctx, chatId)
	if err != nil {
		return nil, err
	}
	return dto.NewVoteResponses(votes), nil
}

func (s *voteService) Vote(ctx context.Context, userId uuid.UUID, req *dto.VoteRequest) error {
	voteType := entity.VoteType(req.Type)
	if !voteType.Valid() {
		return apperror.Validation("Invalid vote type")
	}

	if _, err := loadOwnedChat(ctx, s.queries, userId, req.ChatId); err != nil {
		return err
	}

	messages, err := s.queries.GetMessageById(ctx, req.MessageId)
	if err != nil {
		return err
	}
	if len(messages) == 0 || messages[0].ChatId != req.ChatId {
		return apperror.NotFound("Message not found")
	}

	if err := s.queries.VoteMessage(ctx, req.ChatId, req.MessageId, voteType); err != nil {
		return err
	}

	s.publisher.Publish(ctx, constant.EventMessageVoted, map[string]interface{}{
		"chat_id":    req.ChatId.String(),
		"message_id": req.MessageId.String(),
		"type":       req.Type,
	})
	return nil
}

// loadOwnedChat fails with NotFound for a missing chat and Unauthorized for a foreign one.
func loadOwnedChat(ctx context.Context, queries *store.Queries, userId, chatId uuid.UUID) (*entity.Chat, error) {
	chat, err := queries.GetChatById(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	if !chat.OwnedBy(userId) {
		return nil, apperror.Unauthorized("Unauthorized")
	}
	return chat, nil
}
