package controller

import (
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service      service.IAuthService
	secureCookie bool
}

func NewAuthController(service service.IAuthService, secureCookie bool) IAuthController {
	return &authController{
		service:      service,
		secureCookie: secureCookie,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(service.AuthStatusInvalidData)
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return apperror.Validation(service.AuthStatusInvalidData)
	}

	res, err := c.service.Register(ctx.UserContext(), &req, ctx.IP())
	if err != nil {
		return err
	}

	setTokenCookie(ctx, res, c.secureCookie)
	return ctx.JSON(serverutils.SuccessResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(service.AuthStatusInvalidData)
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return apperror.Validation(service.AuthStatusInvalidData)
	}

	res, err := c.service.Login(ctx.UserContext(), &req, ctx.IP())
	if err != nil {
		return err
	}

	setTokenCookie(ctx, res, c.secureCookie)
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	ctx.ClearCookie("token")
	return ctx.JSON(serverutils.SuccessResponse("Logout successful", nil))
}

func setTokenCookie(ctx *fiber.Ctx, res *dto.LoginResponse, secure bool) {
	ctx.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
