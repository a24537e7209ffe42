package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility entity.ChatVisibility) error
	Delete(ctx context.Context, specs ...specification.Specification) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Chat, error)
	FindIds(ctx context.Context, specs ...specification.Specification) ([]uuid.UUID, error)
}
