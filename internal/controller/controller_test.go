package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/pkg/testdb"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/internal/store"
	"ai-chatbot-be/pkg/captcha"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type scriptedProvider struct {
	reply string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *scriptedProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	return &llm.SliceStream{Chunks: []llm.Chunk{{Type: llm.ChunkText, Text: p.reply}}}, nil
}

type uploads struct{}

func (uploads) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "https://bucket.example.com/" + key, nil
}

type testServer struct {
	app     *fiber.App
	queries *store.Queries
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNopLogger()
	queries := store.NewQueries(unitofwork.NewRepositoryFactory(testdb.New(t)), log)

	registry := factory.NewRegistry(constant.DefaultChatModel)
	registry.Register(factory.ModelSpec{Id: constant.DefaultChatModel, Name: "Default"}, &scriptedProvider{reply: "Hi there"})
	registry.Register(factory.ModelSpec{Id: constant.ReasoningModel, Name: "Reasoning"}, &scriptedProvider{reply: "Hmm"})
	registry.Register(factory.ModelSpec{Id: constant.TitleModel, Internal: true}, &scriptedProvider{reply: "A title"})

	publisher := service.NopPublisher{}
	chatService := service.NewChatService(
		queries,
		registry,
		service.NewTitleService(registry, log),
		nil,
		publisher,
		log,
		log,
		service.ChatServiceConfig{MaxStreamDuration: 5 * time.Second, MessagesPerDay: 10},
	)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api")
	auth := serverutils.NewAuth(testSecret)

	NewAuthController(service.NewAuthService(queries, captcha.NoopVerifier{}, publisher, log, testSecret, time.Hour), false).RegisterRoutes(api)
	NewChatController(chatService, log).RegisterRoutes(api, auth)
	NewVoteController(service.NewVoteService(queries, publisher)).RegisterRoutes(api, auth)
	NewModelController(service.NewModelService(registry), false).RegisterRoutes(api, auth)
	NewFileController(service.NewFileService(uploads{}, 1024, log), 1024).RegisterRoutes(api, auth)

	return &testServer{app: app, queries: queries}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *testServer) login(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	user, err := s.queries.CreateUser(context.Background(), email, "secret1")
	require.NoError(t, err)
	token, _, err := serverutils.IssueToken(testSecret, user.Id, time.Hour)
	require.NoError(t, err)
	return user.Id, token
}

func jsonRequest(method, path, token string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func chatBody(chatId string, text string) map[string]interface{} {
	return map[string]interface{}{
		"id": chatId,
		"messages": []map[string]interface{}{
			{"id": uuid.NewString(), "role": "user", "content": text, "parts": []map[string]string{{"type": "text", "text": text}}},
		},
	}
}

func TestChatSubmit_Streams(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "a@example.com")
	chatId := uuid.NewString()

	resp, body := s.do(t, jsonRequest(http.MethodPost, "/api/chat", token, chatBody(chatId, "Hello")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "v1", resp.Header.Get("X-Vercel-AI-Data-Stream"))
	assert.Contains(t, body, `0:"Hi "`)
	assert.Contains(t, body, `0:"there"`)
	assert.Contains(t, body, `d:{"finishReason":"stop"`)

	resp, body = s.do(t, jsonRequest(http.MethodGet, "/api/chat/"+chatId, token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"title":"A title"`)
	assert.Contains(t, body, `"role":"assistant"`)
}

func TestChatSubmit_Errors(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "a@example.com")

	resp, body := s.do(t, jsonRequest(http.MethodPost, "/api/chat", "", chatBody(uuid.NewString(), "Hello")))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body)

	noUser := map[string]interface{}{"id": uuid.NewString(), "messages": []map[string]interface{}{}}
	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/chat", token, noUser))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No user message found", body)

	unknownModel := chatBody(uuid.NewString(), "Hello")
	unknownModel["selectedChatModel"] = "gpt-42"
	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/chat", token, unknownModel))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatDelete(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "owner@example.com")
	_, otherToken := s.login(t, "other@example.com")
	chatId := uuid.NewString()
	s.do(t, jsonRequest(http.MethodPost, "/api/chat", token, chatBody(chatId, "Hello")))

	resp, body := s.do(t, jsonRequest(http.MethodDelete, "/api/chat", token, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", body)

	resp, body = s.do(t, jsonRequest(http.MethodDelete, "/api/chat?id="+chatId, otherToken, nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body)

	resp, body = s.do(t, jsonRequest(http.MethodDelete, "/api/chat?id="+chatId, token, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Chat successfully deleted", body)

	resp, _ = s.do(t, jsonRequest(http.MethodGet, "/api/chat/"+chatId, token, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryAndVotes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "a@example.com")
	chatId := uuid.NewString()
	s.do(t, jsonRequest(http.MethodPost, "/api/chat", token, chatBody(chatId, "Hello")))

	resp, body := s.do(t, jsonRequest(http.MethodGet, "/api/history", token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, chatId)

	messages, err := s.queries.GetMessagesByChatId(context.Background(), uuid.MustParse(chatId))
	require.NoError(t, err)
	require.Len(t, messages, 2)

	vote := map[string]string{"chatId": chatId, "messageId": messages[1].Id.String(), "type": "up"}
	resp, _ = s.do(t, jsonRequest(http.MethodPatch, "/api/vote", token, vote))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, jsonRequest(http.MethodGet, "/api/vote?chatId="+chatId, token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"isUpvoted":true`)

	vote["type"] = "sideways"
	resp, _ = s.do(t, jsonRequest(http.MethodPatch, "/api/vote", token, vote))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, jsonRequest(http.MethodDelete, "/api/history", token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = s.do(t, jsonRequest(http.MethodGet, "/api/history", token, nil))
	assert.Contains(t, body, `"data":[]`)
}

func TestModelSelection(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "a@example.com")

	resp, body := s.do(t, jsonRequest(http.MethodGet, "/api/models", token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"selected":"`+constant.DefaultChatModel+`"`)
	assert.NotContains(t, body, constant.TitleModel)

	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/models/selection", token, map[string]string{"model": constant.ReasoningModel}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), constant.ChatModelCookie+"="+constant.ReasoningModel)

	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/models/selection", token, map[string]string{"model": "gpt-42"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "new@example.com", "password": "secret1"}

	resp, body := s.do(t, jsonRequest(http.MethodPost, "/api/auth/register", "", creds))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"access_token"`)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "token=")

	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/auth/register", "", creds))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "user_exists")

	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/auth/login", "", creds))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "bad", "password": "1"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "invalid_data")

	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "new@example.com", "password": "wrong-pass"}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	longPassword := map[string]string{"email": "long@example.com", "password": strings.Repeat("p", 73)}
	resp, body = s.do(t, jsonRequest(http.MethodPost, "/api/auth/register", "", longPassword))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "invalid_data")

	longEmail := map[string]string{"email": strings.Repeat("a", 60) + "@example.com", "password": "secret1"}
	resp, _ = s.do(t, jsonRequest(http.MethodPost, "/api/auth/register", "", longEmail))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFileUpload(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "a@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="cat.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"type":"image/png"`)
	assert.True(t, strings.Contains(body, `"url":"https://bucket.example.com/uploads/`))
}
