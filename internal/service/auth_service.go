package service

import (
	"context"
	"errors"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/store"
	"ai-chatbot-be/pkg/captcha"

	"golang.org/x/crypto/bcrypt"
)

// Auth failure messages are status codes the sign-in form switches on.
const (
	AuthStatusFailed         = "failed"
	AuthStatusInvalidData    = "invalid_data"
	AuthStatusInvalidCaptcha = "invalid_captcha"
	AuthStatusUserExists     = "user_exists"
	AuthStatusInvalidLogin   = "invalid_credentials"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, remoteIP string) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, remoteIP string) (*dto.LoginResponse, error)
}

type authService struct {
	queries   *store.Queries
	verifier  captcha.Verifier
	publisher IPublisherService
	logger    logger.ILogger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(
	queries *store.Queries,
	verifier captcha.Verifier,
	publisher IPublisherService,
	logger logger.ILogger,
	jwtSecret string,
	tokenTTL time.Duration,
) IAuthService {
	return &authService{
		queries:   queries,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) verifyCaptcha(ctx context.Context, token, remoteIP string) error {
	err := s.verifier.Verify(ctx, token, remoteIP)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, captcha.ErrMissingToken), errors.Is(err, captcha.ErrRejected):
		return apperror.Validation(AuthStatusInvalidCaptcha)
	default:
		s.logger.Error("AUTH", "Captcha verification failed", map[string]interface{}{"error": err.Error()})
		return apperror.Internal(AuthStatusFailed, err)
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, remoteIP string) (*dto.LoginResponse, error) {
	if err := s.verifyCaptcha(ctx, req.CaptchaToken, remoteIP); err != nil {
		return nil, err
	}

	existing, err := s.queries.GetUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperror.Conflict(AuthStatusUserExists)
	}

	user, err := s.queries.CreateUser(ctx, req.Email, req.Password)
	if apperror.Is(err, apperror.KindValidation) {
		return nil, apperror.Validation(AuthStatusInvalidData)
	}
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, constant.EventUserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
	})

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, remoteIP string) (*dto.LoginResponse, error) {
	if err := s.verifyCaptcha(ctx, req.CaptchaToken, remoteIP); err != nil {
		return nil, err
	}

	users, err := s.queries.GetUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperror.Unauthorized(AuthStatusInvalidLogin)
	}
	if len(users) > 1 {
		s.logger.Warn("AUTH", "Duplicate users for email", map[string]interface{}{"count": len(users)})
	}

	// Accounts created through OAuth carry no hash and cannot log in with a password.
	user := users[0]
	if !user.HasPassword() {
		return nil, apperror.Unauthorized(AuthStatusInvalidLogin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized(AuthStatusInvalidLogin)
	}

	return s.issue(&user)
}

func (s *authService) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, expiresAt, err := serverutils.IssueToken(s.jwtSecret, user.Id, s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal(AuthStatusFailed, err)
	}
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: dto.UserDTO{
			Id:    user.Id,
			Email: user.Email,
		},
	}, nil
}
