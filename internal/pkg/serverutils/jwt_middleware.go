package serverutils

import (
	"errors"
	"fmt"
	"time"

	"ai-chatbot-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

var errMissingUser = apperror.Unauthorized("Unauthorized")

// IssueToken signs an HS256 token carrying the user id.
func IssueToken(secret string, userId uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func parseToken(secret, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}

// JwtMiddleware accepts a bearer token, or the "token" cookie set after OAuth login.
// Chat endpoints answer in plain text, so plainText switches the rejection body.
func JwtMiddleware(secret string, plainText bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Cookies("token")
		authHeader := ctx.Get("Authorization")
		if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}

		if tokenStr == "" {
			return reject(ctx, plainText, "Missing token")
		}

		userId, err := parseToken(secret, tokenStr)
		if err != nil {
			return reject(ctx, plainText, "Invalid token")
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

func reject(ctx *fiber.Ctx, plainText bool, message string) error {
	if plainText {
		return ctx.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}
	return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, message))
}

// UserID returns the authenticated user set by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals(userIdLocal).(uuid.UUID)
	if !ok || userId == uuid.Nil {
		return uuid.Nil, errMissingUser
	}
	return userId, nil
}

// Auth bundles the two rejection styles of JwtMiddleware.
type Auth struct {
	JSON      fiber.Handler
	PlainText fiber.Handler
}

func NewAuth(secret string) Auth {
	return Auth{
		JSON:      JwtMiddleware(secret, false),
		PlainText: JwtMiddleware(secret, true),
	}
}
