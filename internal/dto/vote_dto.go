package dto

import (
	"ai-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

type VoteRequest struct {
	ChatId    uuid.UUID `json:"chatId" validate:"required"`
	MessageId uuid.UUID `json:"messageId" validate:"required"`
	Type      string    `json:"type" validate:"required,oneof=up down"`
}

type VoteResponse struct {
	ChatId    uuid.UUID `json:"chatId"`
	MessageId uuid.UUID `json:"messageId"`
	IsUpvoted bool      `json:"isUpvoted"`
}

func NewVoteResponses(votes []entity.Vote) []VoteResponse {
	res := make([]VoteResponse, 0, len(votes))
	for _, v := range votes {
		res = append(res, VoteResponse{
			ChatId:    v.ChatId,
			MessageId: v.MessageId,
			IsUpvoted: v.IsUpvoted,
		})
	}
	return res
}
