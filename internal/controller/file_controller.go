package controller

import (
	"io"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFileController interface {
	RegisterRoutes(r fiber.Router, auth serverutils.Auth)
	Upload(ctx *fiber.Ctx) error
}

type fileController struct {
	fileService service.IFileService
	maxSize     int64
}

func NewFileController(fileService service.IFileService, maxSize int) IFileController {
	return &fileController{
		fileService: fileService,
		maxSize:     int64(maxSize),
	}
}

func (c *fileController) RegisterRoutes(r fiber.Router, auth serverutils.Auth) {
	h := r.Group("/files", auth.JSON)
	h.Post("/upload", c.Upload)
}

func (c *fileController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return apperror.Validation("No file uploaded")
	}

	f, err := header.Open()
	if err != nil {
		return apperror.Internal("Failed to read file", err)
	}
	defer f.Close()

	// One extra byte lets the service see an oversized file without reading all of it.
	data, err := io.ReadAll(io.LimitReader(f, c.maxSize+1))
	if err != nil {
		return apperror.Internal("Failed to read file", err)
	}

	res, err := c.fileService.Upload(ctx.UserContext(), userId, &dto.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
