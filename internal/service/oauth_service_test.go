package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleStub(t *testing.T, email string, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		verifiedJSON := "false"
		if verified {
			verifiedJSON = "true"
		}
		_, _ = w.Write([]byte(`{"email":"` + email + `","verified_email":` + verifiedJSON + `}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestOAuthService(t *testing.T, server *httptest.Server) IOAuthService {
	t.Helper()
	return NewOAuthService(newQueries(t), NopPublisher{}, logger.NewNopLogger(), OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/google/callback",
		JwtSecret:    "jwt-secret",
		TokenTTL:     time.Hour,
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/auth",
			TokenURL: server.URL + "/token",
		},
		UserInfoURL: server.URL + "/userinfo",
	})
}

func TestOAuth_LoginURLCarriesState(t *testing.T) {
	svc := newTestOAuthService(t, newGoogleStub(t, "g@example.com", true))

	url := svc.GetLoginURL("state-xyz")
	assert.True(t, strings.Contains(url, "state=state-xyz"))
	assert.True(t, strings.Contains(url, "client_id=client"))
}

func TestOAuth_CallbackCreatesUserOnce(t *testing.T) {
	svc := newTestOAuthService(t, newGoogleStub(t, "g@example.com", true))
	ctx := context.Background()

	first, err := svc.HandleCallback(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", first.User.Email)
	assert.NotEmpty(t, first.AccessToken)

	second, err := svc.HandleCallback(ctx, "code-2")
	require.NoError(t, err)
	assert.Equal(t, first.User.Id, second.User.Id)
}

func TestOAuth_UnverifiedEmailRejected(t *testing.T) {
	svc := newTestOAuthService(t, newGoogleStub(t, "g@example.com", false))

	_, err := svc.HandleCallback(context.Background(), "code")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}
