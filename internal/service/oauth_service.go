package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/store"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type IOAuthService interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JwtSecret    string
	TokenTTL     time.Duration
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

type oauthService struct {
	queries     *store.Queries
	publisher   IPublisherService
	logger      logger.ILogger
	conf        *oauth2.Config
	userInfoURL string
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewOAuthService(queries *store.Queries, publisher IPublisherService, logger logger.ILogger, cfg OAuthConfig) IOAuthService {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}

	return &oauthService{
		queries:   queries,
		publisher: publisher,
		logger:    logger,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: endpoint,
		},
		userInfoURL: userInfoURL,
		jwtSecret:   cfg.JwtSecret,
		tokenTTL:    cfg.TokenTTL,
	}
}

func (s *oauthService) GetLoginURL(state string) string {
	return s.conf.AuthCodeURL(state)
}

type googleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

func (s *oauthService) HandleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("OAUTH", "Code exchange failed", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Unauthorized("OAuth code exchange failed")
	}

	profile, err := s.fetchUser(ctx, token)
	if err != nil {
		s.logger.Error("OAUTH", "Failed getting user info", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Internal("Failed getting user info", err)
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		return nil, apperror.Unauthorized("Email is not verified")
	}

	users, err := s.queries.GetUser(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	var user dto.UserDTO
	if len(users) > 0 {
		user = dto.UserDTO{Id: users[0].Id, Email: users[0].Email}
	} else {
		created, err := s.queries.CreateOAuthUser(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(ctx, constant.EventUserRegistered, map[string]interface{}{
			"user_id":  created.Id.String(),
			"provider": "google",
		})
		user = dto.UserDTO{Id: created.Id, Email: created.Email}
	}

	signed, expiresAt, err := serverutils.IssueToken(s.jwtSecret, user.Id, s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal(AuthStatusFailed, err)
	}

	return &dto.LoginResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *oauthService) fetchUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	client := s.conf.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var profile googleUser
	if err := json.Unmarshal(content, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
