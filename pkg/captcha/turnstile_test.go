package captcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestVerifier(t *testing.T, success bool) *TurnstileVerifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.NotEmpty(t, r.PostForm.Get("idempotency_key"))

		w.Header().Set("Content-Type", "application/json")
		if success {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	t.Cleanup(srv.Close)

	v := NewTurnstileVerifier("secret")
	v.VerifyURL = srv.URL
	v.Client = srv.Client()
	return v
}

func TestTurnstileVerifier(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, newTestVerifier(t, true).Verify(ctx, "token", "1.2.3.4"))

	err := newTestVerifier(t, false).Verify(ctx, "token", "")
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "invalid-input-response")
}

func TestTurnstileVerifier_Preconditions(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, NewTurnstileVerifier("").Verify(ctx, "token", ""), ErrMissingSecret)
	assert.ErrorIs(t, NewTurnstileVerifier("secret").Verify(ctx, "", ""), ErrMissingToken)
	assert.NoError(t, NoopVerifier{}.Verify(ctx, "", ""))
}
