package serverutils

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newProtectedApp(plainText bool) *fiber.App {
	app := fiber.New()
	app.Get("/me", JwtMiddleware(testSecret, plainText), func(ctx *fiber.Ctx) error {
		userId, err := UserID(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(userId.String())
	})
	return app
}

func TestJwtMiddleware(t *testing.T) {
	userId := uuid.New()
	valid, _, err := IssueToken(testSecret, userId, time.Hour)
	require.NoError(t, err)
	expired, _, err := IssueToken(testSecret, userId, -time.Hour)
	require.NoError(t, err)
	foreign, _, err := IssueToken("other-secret", userId, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{name: "bearer token", header: "Bearer " + valid, status: http.StatusOK},
		{name: "cookie token", cookie: valid, status: http.StatusOK},
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
	}

	app := newProtectedApp(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, userId.String(), string(body))
			}
		})
	}
}

func TestJwtMiddleware_PlainText(t *testing.T) {
	app := newProtectedApp(true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Unauthorized", string(body))
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/validation", func(ctx *fiber.Ctx) error { return apperror.Validation("bad input") })
	app.Get("/internal", func(ctx *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/fiber", func(ctx *fiber.Ctx) error { return fiber.ErrUnprocessableEntity })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", http.StatusBadRequest, `"message":"bad input"`},
		{"/internal", http.StatusInternalServerError, `"message":"An error occurred while processing your request!"`},
		{"/fiber", http.StatusUnprocessableEntity, `"success":false`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.message)
			assert.NotContains(t, string(body), "db exploded")
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6,max=72"`
		Kind     string `validate:"omitempty,oneof=up down"`
	}

	assert.NoError(t, ValidateRequest(&request{Email: "a@example.com", Password: "secret1"}))

	err := ValidateRequest(&request{Email: "nope", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "email must be a valid email", apperror.Message(err))

	err = ValidateRequest(&request{Email: "a@example.com", Password: "123"})
	assert.Equal(t, "password must be at least 6", apperror.Message(err))

	err = ValidateRequest(&request{Email: "a@example.com", Password: strings.Repeat("x", 73)})
	assert.Equal(t, "password must be at most 72", apperror.Message(err))

	err = ValidateRequest(&request{Email: "a@example.com", Password: "secret1", Kind: "sideways"})
	assert.Equal(t, "kind must be one of: up down", apperror.Message(err))
}
