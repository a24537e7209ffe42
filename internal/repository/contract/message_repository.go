package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	CreateBatch(ctx context.Context, messages []entity.Message) error
	Delete(ctx context.Context, specs ...specification.Specification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Message, error)
	FindIds(ctx context.Context, specs ...specification.Specification) ([]uuid.UUID, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
