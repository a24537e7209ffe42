package implementation

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewVoteRepository(db *gorm.DB) contract.VoteRepository {
	return &VoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *VoteRepositoryImpl) Upsert(ctx context.Context, vote *entity.Vote) error {
	m := r.mapper.VoteToModel(vote)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_upvoted"}),
	}).Create(m).Error
}

func (r *VoteRepositoryImpl) Delete(ctx context.Context, specs ...specification.Specification) error {
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	return query.Delete(&model.Vote{}).Error
}

func (r *VoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Vote, error) {
	var models []*model.Vote
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	votes := make([]entity.Vote, 0, len(models))
	for _, m := range models {
		votes = append(votes, *r.mapper.VoteToEntity(m))
	}
	return votes, nil
}
