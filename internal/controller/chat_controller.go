package controller

import (
	"bufio"
	"context"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/datastream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth serverutils.Auth)
	Submit(ctx *fiber.Ctx) error
	SubmitCustom(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateVisibility(ctx *fiber.Ctx) error
	DeleteTrailing(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	Usage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, logger logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      logger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth serverutils.Auth) {
	// The chat client reads plain-text bodies from these three.
	r.Post("/chat", auth.PlainText, c.Submit)
	r.Post("/chat/custom", auth.PlainText, c.SubmitCustom)
	r.Delete("/chat", auth.PlainText, c.Delete)

	r.Get("/chat/:id", auth.JSON, c.Show)
	r.Patch("/chat/:id/visibility", auth.JSON, c.UpdateVisibility)
	r.Delete("/messages/:id/trailing", auth.JSON, c.DeleteTrailing)

	h := r.Group("/history", auth.JSON)
	h.Get("", c.History)
	h.Delete("", c.ClearHistory)

	r.Get("/usage", auth.JSON, c.Usage)
}

func (c *chatController) fail(ctx *fiber.Ctx, err error) error {
	if apperror.StatusCode(err) >= fiber.StatusInternalServerError {
		c.logger.Error("CHAT", "Chat request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
	}
	return serverutils.PlainTextError(ctx, err)
}

func (c *chatController) Submit(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.fail(ctx, apperror.Validation("Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return c.fail(ctx, err)
	}

	turn, err := c.chatService.PrepareTurn(ctx.UserContext(), userId, &req, ctx.Cookies(constant.ChatModelCookie))
	if err != nil {
		return c.fail(ctx, err)
	}
	return c.stream(ctx, turn)
}

func (c *chatController) SubmitCustom(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	var req dto.CustomChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.fail(ctx, apperror.Validation("Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return c.fail(ctx, err)
	}

	turn, err := c.chatService.PrepareCustomTurn(ctx.UserContext(), userId, &req, ctx.Cookies(constant.ChatModelCookie))
	if err != nil {
		return c.fail(ctx, err)
	}
	return c.stream(ctx, turn)
}

// stream hands the turn to the body writer. The handler returns before the body is
// written, so the turn runs on its own context bounded by the stream timeout.
func (c *chatController) stream(ctx *fiber.Ctx, turn *service.Turn) error {
	ctx.Set(fiber.HeaderContentType, datastream.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(datastream.HeaderName, datastream.HeaderValue)

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_ = c.chatService.RunTurn(context.Background(), turn, w)
		_ = w.Flush()
	})
	return nil
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	chatId, err := uuid.Parse(ctx.Query("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).SendString("Not Found")
	}

	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	if err := c.chatService.DeleteChat(ctx.UserContext(), userId, chatId); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).SendString("Chat successfully deleted")
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NotFound("Chat not found")
	}

	res, err := c.chatService.GetChat(ctx.UserContext(), userId, chatId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat", res))
}

func (c *chatController) UpdateVisibility(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NotFound("Chat not found")
	}

	var req dto.UpdateVisibilityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if err := c.chatService.UpdateVisibility(ctx.UserContext(), userId, chatId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update visibility", nil))
}

func (c *chatController) DeleteTrailing(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	messageId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NotFound("Message not found")
	}

	if err := c.chatService.DeleteTrailingMessages(ctx.UserContext(), userId, messageId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete trailing messages", nil))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetHistory(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.ClearHistory(ctx.UserContext(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history cleared", nil))
}

func (c *chatController) Usage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetUsage(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get usage", res))
}
