package mapper

import (
	"encoding/json"
	"fmt"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}
	return &entity.Chat{
		Id:         c.Id,
		UserId:     c.UserId,
		Title:      c.Title,
		Visibility: entity.ChatVisibility(c.Visibility),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}
	visibility := c.Visibility
	if visibility == "" {
		visibility = entity.VisibilityPrivate
	}
	return &model.Chat{
		Id:         c.Id,
		UserId:     c.UserId,
		Title:      c.Title,
		Visibility: string(visibility),
		CreatedAt:  c.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) (*entity.Message, error) {
	if msg == nil {
		return nil, nil
	}

	parts := []entity.MessagePart{}
	if len(msg.Parts) > 0 {
		if err := json.Unmarshal(msg.Parts, &parts); err != nil {
			return nil, fmt.Errorf("decode parts of message %s: %w", msg.Id, err)
		}
	}

	attachments := []entity.Attachment{}
	if len(msg.Attachments) > 0 {
		if err := json.Unmarshal(msg.Attachments, &attachments); err != nil {
			return nil, fmt.Errorf("decode attachments of message %s: %w", msg.Id, err)
		}
	}

	return &entity.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		Role:        entity.MessageRole(msg.Role),
		Parts:       parts,
		Attachments: attachments,
		CreatedAt:   msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) (*model.Message, error) {
	if msg == nil {
		return nil, nil
	}

	parts := msg.Parts
	if parts == nil {
		parts = []entity.MessagePart{}
	}
	partsJSON, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("encode parts of message %s: %w", msg.Id, err)
	}

	attachments := msg.Attachments
	if attachments == nil {
		attachments = []entity.Attachment{}
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments of message %s: %w", msg.Id, err)
	}

	return &model.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		Role:        string(msg.Role),
		Parts:       datatypes.JSON(partsJSON),
		Attachments: datatypes.JSON(attachmentsJSON),
		CreatedAt:   msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.Message) ([]entity.Message, error) {
	entities := make([]entity.Message, 0, len(msgs))
	for _, msg := range msgs {
		e, err := m.MessageToEntity(msg)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	return entities, nil
}

// Vote Mappers

func (m *ChatMapper) VoteToEntity(v *model.Vote) *entity.Vote {
	if v == nil {
		return nil
	}
	return &entity.Vote{
		ChatId:    v.ChatId,
		MessageId: v.MessageId,
		IsUpvoted: v.IsUpvoted,
	}
}

func (m *ChatMapper) VoteToModel(v *entity.Vote) *model.Vote {
	if v == nil {
		return nil
	}
	return &model.Vote{
		ChatId:    v.ChatId,
		MessageId: v.MessageId,
		IsUpvoted: v.IsUpvoted,
	}
}
