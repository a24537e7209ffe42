package controller

import (
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVoteController interface {
	RegisterRoutes(r fiber.Router, auth serverutils.Auth)
	Index(ctx *fiber.Ctx) error
	Vote(ctx *fiber.Ctx) error
}

type voteController struct {
	voteService service.IVoteService
}

func NewVoteController(voteService service.IVoteService) IVoteController {
	return &voteController{voteService: voteService}
}

func (c *voteController) RegisterRoutes(r fiber.Router, auth serverutils.Auth) {
	h := r.Group("/vote", auth.JSON)
	h.Get("", c.Index)
	h.Patch("", c.Vote)
}

func (c *voteController) Index(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	chatId, err := uuid.Parse(ctx.Query("chatId"))
	if err != nil {
		return apperror.Validation("chatId is required")
	}

	res, err := c.voteService.GetVotes(ctx.UserContext(), userId, chatId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get votes", res))
}

func (c *voteController) Vote(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.VoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("messageId and type are required")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if err := c.voteService.Vote(ctx.UserContext(), userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message voted", nil))
}
