package controller

import (
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router, auth serverutils.Auth)
	Index(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
}

type modelController struct {
	modelService service.IModelService
	secureCookie bool
}

func NewModelController(modelService service.IModelService, secureCookie bool) IModelController {
	return &modelController{
		modelService: modelService,
		secureCookie: secureCookie,
	}
}

func (c *modelController) RegisterRoutes(r fiber.Router, auth serverutils.Auth) {
	h := r.Group("/models", auth.JSON)
	h.Get("", c.Index)
	h.Post("/selection", c.Select)
}

func (c *modelController) Index(ctx *fiber.Ctx) error {
	res := c.modelService.List(ctx.Cookies(constant.ChatModelCookie))
	return ctx.JSON(serverutils.SuccessResponse("Success get models", res))
}

func (c *modelController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectModelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}
	if err := c.modelService.Select(req.Model); err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     constant.ChatModelCookie,
		Value:    req.Model,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse("Model selected", fiber.Map{"model": req.Model}))
}
