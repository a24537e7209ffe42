package controller

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service      service.IOAuthService
	logger       logger.ILogger
	clientURL    string
	secureCookie bool
}

func NewOAuthController(service service.IOAuthService, logger logger.ILogger, clientURL string, secureCookie bool) IOAuthController {
	return &oauthController{
		service:      service,
		logger:       logger,
		clientURL:    clientURL,
		secureCookie: secureCookie,
	}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/google")
	h.Get("/login", c.Login)
	h.Get("/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.Redirect(c.service.GetLoginURL(state), fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies(oauthStateCookie) {
		c.logger.Warn("OAUTH", "State mismatch on callback", nil)
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid state"))
	}
	ctx.ClearCookie(oauthStateCookie)

	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing code"))
	}

	res, err := c.service.HandleCallback(ctx.UserContext(), code)
	if err != nil {
		return err
	}

	c.logger.Info("OAUTH", "User authenticated", map[string]interface{}{"user_id": res.User.Id.String()})

	setTokenCookie(ctx, res, c.secureCookie)
	redirectURL := fmt.Sprintf("%s/?token=%s", c.clientURL, url.QueryEscape(res.AccessToken))
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
