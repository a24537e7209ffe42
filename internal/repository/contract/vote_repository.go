package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
)

type VoteRepository interface {
	// Upsert inserts the vote or flips IsUpvoted on the existing (chat, message) row.
	Upsert(ctx context.Context, vote *entity.Vote) error
	Delete(ctx context.Context, specs ...specification.Specification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Vote, error)
}
