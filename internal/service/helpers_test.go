package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/testdb"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/store"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"
	"ai-chatbot-be/pkg/quota"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	mu        sync.Mutex
	chunks    []llm.Chunk
	streamErr error
	recvErr   error
	reply     string
	chatErr   error

	calls       int
	lastHistory []llm.Message
	lastOptions *llm.Options
}

func (f *fakeProvider) record(history []llm.Message, opts []llm.Option) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastHistory = history
	f.lastOptions = llm.ApplyOptions(opts...)
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.record(history, opts)
	return f.reply, f.chatErr
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *fakeProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	f.record(history, opts)
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &llm.SliceStream{Chunks: f.chunks, Err: f.recvErr}, nil
}

func (f *fakeProvider) options() *llm.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

type chatFixture struct {
	svc      IChatService
	db       *gorm.DB
	queries  *store.Queries
	chatLLM  *fakeProvider
	titleLLM *fakeProvider
	registry *factory.Registry
}

func newQueries(t *testing.T) *store.Queries {
	t.Helper()
	return store.NewQueries(unitofwork.NewRepositoryFactory(testdb.New(t)), logger.NewNopLogger())
}

func newRegistry(chatLLM, titleLLM llm.LLMProvider) *factory.Registry {
	reg := factory.NewRegistry(constant.DefaultChatModel)
	reg.Register(factory.ModelSpec{Id: constant.DefaultChatModel, Name: "Default", ProviderModel: "chat-backend"}, chatLLM)
	reg.Register(factory.ModelSpec{Id: constant.ReasoningModel, Name: "Reasoning", ProviderModel: "reasoning-backend"}, chatLLM)
	reg.Register(factory.ModelSpec{Id: constant.TitleModel, ProviderModel: "title-backend", Internal: true}, titleLLM)
	return reg
}

func newChatFixture(t *testing.T, messagesPerDay int) *chatFixture {
	t.Helper()
	db := testdb.New(t)
	f := &chatFixture{
		db:      db,
		queries: store.NewQueries(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger()),
		chatLLM: &fakeProvider{chunks: []llm.Chunk{
			{Type: llm.ChunkText, Text: "Hello wor"},
			{Type: llm.ChunkText, Text: "ld!"},
		}},
		titleLLM: &fakeProvider{reply: "Greeting the assistant"},
	}
	f.registry = newRegistry(f.chatLLM, f.titleLLM)

	var limiter quota.Limiter
	if messagesPerDay > 0 {
		limiter = quota.NewMemoryLimiter(messagesPerDay)
	}

	f.svc = NewChatService(
		f.queries,
		f.registry,
		NewTitleService(f.registry, logger.NewNopLogger()),
		limiter,
		NopPublisher{},
		logger.NewNopLogger(),
		logger.NewNopLogger(),
		ChatServiceConfig{MaxStreamDuration: 5 * time.Second, MessagesPerDay: messagesPerDay},
	)
	return f
}

func userText(text string) dto.UIMessage {
	return dto.UIMessage{
		Id:    uuid.NewString(),
		Role:  string(entity.RoleUser),
		Parts: []entity.MessagePart{{Type: entity.PartText, Text: text}},
	}
}

func chatRequest(chatId uuid.UUID, messages ...dto.UIMessage) *dto.ChatRequest {
	return &dto.ChatRequest{Id: chatId.String(), Messages: messages}
}

func seedUser(t *testing.T, q *store.Queries, email string) *entity.User {
	t.Helper()
	user, err := q.CreateUser(context.Background(), email, "secret1")
	require.NoError(t, err)
	return user
}

var errBoom = errors.New("boom")

// failInserts makes every insert into table fail while fail reports true.
func failInserts(t *testing.T, db *gorm.DB, table string, fail func() bool) {
	t.Helper()
	name := "test:fail_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table && fail() {
			_ = tx.AddError(errBoom)
		}
	})
	require.NoError(t, err)
}
