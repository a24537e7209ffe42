// Package store is the persistence facade used by the services. Every operation logs
// its failure with context and hands the caller a *StorageError; nothing is swallowed.
package store

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const module = "STORE"

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Now returns the current UTC time at the precision the database keeps, so a
// timestamp read back compares equal to the one written.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type Queries struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewQueries(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) *Queries {
	return &Queries{
		uowFactory: uowFactory,
		logger:     logger,
		now:        Now,
	}
}

func (q *Queries) fail(op, message string, details map[string]interface{}, err error) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["op"] = op
	details["error"] = err.Error()
	q.logger.Error(module, message, details)
	return &StorageError{Op: op, Err: err}
}

func withErrorHandling[T any](q *Queries, op, message string, details map[string]interface{}, fn func() (T, error)) (T, error) {
	result, err := fn()
	if err != nil {
		var zero T
		return zero, q.fail(op, message, details, err)
	}
	return result, nil
}

// inTransaction runs fn inside one unit of work and commits only if fn succeeds.
func (q *Queries) inTransaction(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	uow := q.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// Users

func (q *Queries) GetUser(ctx context.Context, email string) ([]entity.User, error) {
	return withErrorHandling(q, "GetUser", "Failed to get user from database", nil, func() ([]entity.User, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.UserRepository().FindAll(ctx, specification.ByEmail{Email: email})
	})
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

func (q *Queries) CreateUser(ctx context.Context, email, password string) (*entity.User, error) {
	if len(password) > maxPasswordBytes {
		return nil, apperror.Validation("Password is too long")
	}
	return withErrorHandling(q, "CreateUser", "Failed to create user in database", nil, func() (*entity.User, error) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		return q.insertUser(ctx, email, &hash)
	})
}

// CreateOAuthUser provisions an account without a credential hash.
func (q *Queries) CreateOAuthUser(ctx context.Context, email string) (*entity.User, error) {
	return withErrorHandling(q, "CreateOAuthUser", "Failed to create external user in database", nil, func() (*entity.User, error) {
		return q.insertUser(ctx, email, nil)
	})
}

func (q *Queries) insertUser(ctx context.Context, email string, hash *string) (*entity.User, error) {
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    q.now(),
	}
	uow := q.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Chats

func (q *Queries) SaveChat(ctx context.Context, id, userId uuid.UUID, title string) (*entity.Chat, error) {
	details := map[string]interface{}{"chat_id": id.String(), "user_id": userId.String()}
	return withErrorHandling(q, "SaveChat", "Failed to save chat in database", details, func() (*entity.Chat, error) {
		chat := &entity.Chat{
			Id:         id,
			UserId:     userId,
			Title:      title,
			Visibility: entity.VisibilityPrivate,
			CreatedAt:  q.now(),
		}
		uow := q.uowFactory.NewUnitOfWork(ctx)
		if err := uow.ChatRepository().Create(ctx, chat); err != nil {
			return nil, err
		}
		return chat, nil
	})
}

// DeleteChatById removes the chat's votes, then its messages, then the chat, atomically.
func (q *Queries) DeleteChatById(ctx context.Context, id uuid.UUID) error {
	details := map[string]interface{}{"chat_id": id.String()}
	_, err := withErrorHandling(q, "DeleteChatById", "Failed to delete chat by id from database", details, func() (struct{}, error) {
		return struct{}{}, q.inTransaction(ctx, func(uow unitofwork.UnitOfWork) error {
			if err := uow.VoteRepository().Delete(ctx, specification.ByChatID{ChatID: id}); err != nil {
				return err
			}
			if err := uow.MessageRepository().Delete(ctx, specification.ByChatID{ChatID: id}); err != nil {
				return err
			}
			return uow.ChatRepository().Delete(ctx, specification.ByID{ID: id})
		})
	})
	return err
}

func (q *Queries) GetChatsByUserId(ctx context.Context, userId uuid.UUID) ([]entity.Chat, error) {
	details := map[string]interface{}{"user_id": userId.String()}
	return withErrorHandling(q, "GetChatsByUserId", "Failed to get chats by user from database", details, func() ([]entity.Chat, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.ChatRepository().FindAll(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.NewestFirst(),
		)
	})
}

// GetChatById returns nil when the chat does not exist.
func (q *Queries) GetChatById(ctx context.Context, id uuid.UUID) (*entity.Chat, error) {
	details := map[string]interface{}{"chat_id": id.String()}
	return withErrorHandling(q, "GetChatById", "Failed to get chat by id from database", details, func() (*entity.Chat, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.ChatRepository().FindOne(ctx, specification.ByID{ID: id})
	})
}

func (q *Queries) UpdateChatVisibilityById(ctx context.Context, chatId uuid.UUID, visibility entity.ChatVisibility) error {
	details := map[string]interface{}{"chat_id": chatId.String(), "visibility": string(visibility)}
	if !visibility.Valid() {
		return apperror.Validation(fmt.Sprintf("Invalid visibility %q", visibility))
	}
	_, err := withErrorHandling(q, "UpdateChatVisibilityById", "Failed to update chat visibility in database", details, func() (struct{}, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return struct{}{}, uow.ChatRepository().UpdateVisibility(ctx, chatId, visibility)
	})
	return err
}

// DeleteAllChatsByUserId removes every chat of the user with their messages and votes.
// A user without chats is a no-op.
func (q *Queries) DeleteAllChatsByUserId(ctx context.Context, userId uuid.UUID) error {
	details := map[string]interface{}{"user_id": userId.String()}
	_, err := withErrorHandling(q, "DeleteAllChatsByUserId", "Failed to delete all chats by user id from database", details, func() (struct{}, error) {
		return struct{}{}, q.inTransaction(ctx, func(uow unitofwork.UnitOfWork) error {
			chatIds, err := uow.ChatRepository().FindIds(ctx, specification.UserOwnedBy{UserID: userId})
			if err != nil {
				return err
			}
			if len(chatIds) == 0 {
				return nil
			}

			if err := uow.VoteRepository().Delete(ctx, specification.ByChatIDs{ChatIDs: chatIds}); err != nil {
				return err
			}
			if err := uow.MessageRepository().Delete(ctx, specification.ByChatIDs{ChatIDs: chatIds}); err != nil {
				return err
			}
			return uow.ChatRepository().Delete(ctx, specification.ByIDs{IDs: chatIds})
		})
	})
	return err
}

// Messages

func (q *Queries) SaveMessages(ctx context.Context, messages []entity.Message) error {
	if len(messages) == 0 {
		return nil
	}
	details := map[string]interface{}{"count": len(messages), "chat_id": messages[0].ChatId.String()}
	_, err := withErrorHandling(q, "SaveMessages", "Failed to save messages in database", details, func() (struct{}, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return struct{}{}, uow.MessageRepository().CreateBatch(ctx, messages)
	})
	return err
}

func (q *Queries) GetMessagesByChatId(ctx context.Context, chatId uuid.UUID) ([]entity.Message, error) {
	details := map[string]interface{}{"chat_id": chatId.String()}
	return withErrorHandling(q, "GetMessagesByChatId", "Failed to get messages by chat id from database", details, func() ([]entity.Message, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.MessageRepository().FindAll(ctx,
			specification.ByChatID{ChatID: chatId},
			specification.Chronological(),
		)
	})
}

func (q *Queries) GetMessageById(ctx context.Context, id uuid.UUID) ([]entity.Message, error) {
	details := map[string]interface{}{"message_id": id.String()}
	return withErrorHandling(q, "GetMessageById", "Failed to get message by id from database", details, func() ([]entity.Message, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.MessageRepository().FindAll(ctx, specification.ByID{ID: id})
	})
}

// DeleteMessagesByChatIdAfterTimestamp removes messages created at or after ts, and their
// votes, in one transaction.
func (q *Queries) DeleteMessagesByChatIdAfterTimestamp(ctx context.Context, chatId uuid.UUID, ts time.Time) error {
	details := map[string]interface{}{"chat_id": chatId.String(), "timestamp": ts}
	_, err := withErrorHandling(q, "DeleteMessagesByChatIdAfterTimestamp", "Failed to delete messages by chat id after timestamp from database", details, func() (struct{}, error) {
		return struct{}{}, q.inTransaction(ctx, func(uow unitofwork.UnitOfWork) error {
			messageIds, err := uow.MessageRepository().FindIds(ctx,
				specification.ByChatID{ChatID: chatId},
				specification.CreatedAtOrAfter{Time: ts},
			)
			if err != nil {
				return err
			}
			if len(messageIds) == 0 {
				return nil
			}

			if err := uow.VoteRepository().Delete(ctx,
				specification.ByChatID{ChatID: chatId},
				specification.ByMessageIDs{MessageIDs: messageIds},
			); err != nil {
				return err
			}
			return uow.MessageRepository().Delete(ctx,
				specification.ByChatID{ChatID: chatId},
				specification.ByIDs{IDs: messageIds},
			)
		})
	})
	return err
}

// CountUserMessagesSince counts messages with role user across the user's chats.
func (q *Queries) CountUserMessagesSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	details := map[string]interface{}{"user_id": userId.String()}
	return withErrorHandling(q, "CountUserMessagesSince", "Failed to count user messages from database", details, func() (int64, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		chatIds, err := uow.ChatRepository().FindIds(ctx, specification.UserOwnedBy{UserID: userId})
		if err != nil || len(chatIds) == 0 {
			return 0, err
		}
		return uow.MessageRepository().Count(ctx,
			specification.ByChatIDs{ChatIDs: chatIds},
			specification.Filter("role", string(entity.RoleUser)),
			specification.CreatedAtOrAfter{Time: since},
		)
	})
}

// Votes

func (q *Queries) VoteMessage(ctx context.Context, chatId, messageId uuid.UUID, voteType entity.VoteType) error {
	details := map[string]interface{}{"chat_id": chatId.String(), "message_id": messageId.String(), "type": string(voteType)}
	if !voteType.Valid() {
		return apperror.Validation(fmt.Sprintf("Invalid vote type %q", voteType))
	}
	_, err := withErrorHandling(q, "VoteMessage", "Failed to upvote message in database", details, func() (struct{}, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return struct{}{}, uow.VoteRepository().Upsert(ctx, &entity.Vote{
			ChatId:    chatId,
			MessageId: messageId,
			IsUpvoted: voteType == entity.VoteUp,
		})
	})
	return err
}

func (q *Queries) GetVotesByChatId(ctx context.Context, chatId uuid.UUID) ([]entity.Vote, error) {
	details := map[string]interface{}{"chat_id": chatId.String()}
	return withErrorHandling(q, "GetVotesByChatId", "Failed to get votes by chat id from database", details, func() ([]entity.Vote, error) {
		uow := q.uowFactory.NewUnitOfWork(ctx)
		return uow.VoteRepository().FindAll(ctx, specification.ByChatID{ChatID: chatId})
	})
}
