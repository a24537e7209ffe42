package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	keys []string
	err  error
}

func (u *memoryUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.keys = append(u.keys, key)
	return "https://bucket.example.com/" + key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestFileService_Upload(t *testing.T) {
	uploader := &memoryUploader{}
	svc := NewFileService(uploader, 1024, logger.NewNopLogger())
	userId := uuid.New()

	res, err := svc.Upload(context.Background(), userId, &dto.UploadFile{
		Name:        "../../my photo.png",
		ContentType: "image/png",
		Data:        pngHeader,
	})
	require.NoError(t, err)
	assert.Equal(t, "my_photo.png", res.Name)
	assert.Equal(t, "image/png", res.Type)
	require.Len(t, uploader.keys, 1)
	assert.Contains(t, uploader.keys[0], "uploads/"+userId.String()+"/")
	assert.Equal(t, "https://bucket.example.com/"+uploader.keys[0], res.Url)
}

func TestFileService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		file    dto.UploadFile
		message string
	}{
		{"empty", dto.UploadFile{Name: "a.png", ContentType: "image/png"}, "No file uploaded"},
		{"too large", dto.UploadFile{Name: "a.png", ContentType: "image/png", Data: bytes.Repeat([]byte("a"), 2048)}, "File size should be less than 1KB"},
		{"wrong type", dto.UploadFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}, "File type should be JPEG or PNG"},
		{"spoofed type", dto.UploadFile{Name: "a.png", ContentType: "image/png", Data: []byte("plain text")}, "File type should be JPEG or PNG"},
	}
	svc := NewFileService(&memoryUploader{}, 1024, logger.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), uuid.New(), &tt.file)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.Equal(t, tt.message, apperror.Message(err))
		})
	}
}

func TestFileService_StorageFailures(t *testing.T) {
	file := &dto.UploadFile{Name: "a.png", ContentType: "image/png", Data: pngHeader}

	_, err := NewFileService(nil, 1024, logger.NewNopLogger()).Upload(context.Background(), uuid.New(), file)
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	_, err = NewFileService(&memoryUploader{err: errors.New("s3 down")}, 1024, logger.NewNopLogger()).Upload(context.Background(), uuid.New(), file)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Equal(t, "Upload failed", apperror.Message(err))
}
