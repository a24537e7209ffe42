package dto

import (
	"time"

	"ai-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

// UIMessage is a message as the chat client sends it.
type UIMessage struct {
	Id          string               `json:"id"`
	Role        string               `json:"role" validate:"required,oneof=user assistant system"`
	Content     string               `json:"content"`
	Parts       []entity.MessagePart `json:"parts"`
	Attachments []entity.Attachment  `json:"experimental_attachments,omitempty"`
	CreatedAt   *time.Time           `json:"createdAt,omitempty"`
}

type ChatRequest struct {
	Id                string      `json:"id" validate:"required,uuid"`
	Messages          []UIMessage `json:"messages" validate:"dive"`
	SelectedChatModel string      `json:"selectedChatModel"`
}

// CustomChatRequest drives a private chat. Its id names a preset, not a stored chat.
type CustomChatRequest struct {
	Id                string      `json:"id" validate:"required"`
	Messages          []UIMessage `json:"messages" validate:"dive"`
	SelectedChatModel string      `json:"selectedChatModel"`
}

type ChatResponse struct {
	Id         uuid.UUID `json:"id"`
	UserId     uuid.UUID `json:"userId"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MessageResponse struct {
	Id          uuid.UUID            `json:"id"`
	ChatId      uuid.UUID            `json:"chatId"`
	Role        string               `json:"role"`
	Parts       []entity.MessagePart `json:"parts"`
	Attachments []entity.Attachment  `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type ChatViewResponse struct {
	Chat     ChatResponse      `json:"chat"`
	Messages []MessageResponse `json:"messages"`
	Votes    []VoteResponse    `json:"votes"`
	ReadOnly bool              `json:"readOnly"`
}

type UpdateVisibilityRequest struct {
	Visibility string `json:"visibility" validate:"required,oneof=private public"`
}

type UsageResponse struct {
	Used  int64 `json:"used"`
	Limit int   `json:"limit"`
}

func NewChatResponse(chat entity.Chat) ChatResponse {
	return ChatResponse{
		Id:         chat.Id,
		UserId:     chat.UserId,
		Title:      chat.Title,
		Visibility: string(chat.Visibility),
		CreatedAt:  chat.CreatedAt,
	}
}

func NewMessageResponse(message entity.Message) MessageResponse {
	return MessageResponse{
		Id:          message.Id,
		ChatId:      message.ChatId,
		Role:        string(message.Role),
		Parts:       message.Parts,
		Attachments: message.Attachments,
		CreatedAt:   message.CreatedAt,
	}
}
