package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/objectstore"

	"github.com/google/uuid"
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

type IFileService interface {
	Upload(ctx context.Context, userId uuid.UUID, file *dto.UploadFile) (*dto.UploadFileResponse, error)
}

type fileService struct {
	uploader objectstore.Uploader
	maxSize  int
	logger   logger.ILogger
}

// NewFileService accepts a nil uploader when object storage is not configured.
func NewFileService(uploader objectstore.Uploader, maxSize int, logger logger.ILogger) IFileService {
	return &fileService{
		uploader: uploader,
		maxSize:  maxSize,
		logger:   logger,
	}
}

func (s *fileService) Upload(ctx context.Context, userId uuid.UUID, file *dto.UploadFile) (*dto.UploadFileResponse, error) {
	if len(file.Data) == 0 {
		return nil, apperror.Validation("No file uploaded")
	}
	if len(file.Data) > s.maxSize {
		return nil, apperror.Validation("File size should be less than " + formatSize(s.maxSize))
	}

	// The declared type is not trusted; sniff the content as well.
	contentType := http.DetectContentType(file.Data)
	if !allowedUploadTypes[contentType] || !allowedUploadTypes[file.ContentType] {
		return nil, apperror.Validation("File type should be JPEG or PNG")
	}

	if s.uploader == nil {
		return nil, apperror.Internal("File storage is not configured", nil)
	}

	name := sanitizeFileName(file.Name)
	key := fmt.Sprintf("uploads/%s/%s-%s", userId, uuid.NewString(), name)
	url, err := s.uploader.Upload(ctx, key, file.Data, contentType)
	if err != nil {
		s.logger.Error("FILES", "Upload failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, apperror.Internal("Upload failed", err)
	}

	return &dto.UploadFileResponse{
		Url:  url,
		Name: name,
		Type: contentType,
	}, nil
}

func formatSize(n int) string {
	if n >= 1024*1024 && n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%dKB", n/1024)
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "_" {
		return "file"
	}
	return name
}
