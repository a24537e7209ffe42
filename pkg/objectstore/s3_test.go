package objectstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://chat-files.s3.eu-west-1.amazonaws.com/uploads/u1/cat.png",
		PublicURL("chat-files", "eu-west-1", "uploads/u1/cat.png"),
	)
}

func TestPublicHost_MatchesPublicURL(t *testing.T) {
	host := PublicHost("chat-files", "eu-west-1")
	assert.Equal(t, "chat-files.s3.eu-west-1.amazonaws.com", host)
	assert.True(t, strings.HasPrefix(PublicURL("chat-files", "eu-west-1", "k"), "https://"+host+"/"))
}

func TestNewS3Client_RequiresConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Client(ctx, S3Config{Region: "eu-west-1", Bucket: "b"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewS3Client(ctx, S3Config{AccessKey: "a", SecretKey: "s", Bucket: "b"})
	assert.ErrorContains(t, err, "AWS_REGION")

	_, err = NewS3Client(ctx, S3Config{AccessKey: "a", SecretKey: "s", Region: "eu-west-1"})
	assert.ErrorContains(t, err, "bucket")

	c, err := NewS3Client(ctx, S3Config{AccessKey: "a", SecretKey: "s", Region: "eu-west-1", Bucket: "b"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
