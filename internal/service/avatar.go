package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/contactbook/api/config"
	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/repository"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// objectPutter is the single S3 call the avatar flow needs, kept as an
// interface so tests can stub the upload.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// avatarStore persists the avatar URL on the account.
type avatarStore interface {
	UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error
}

// AvatarService uploads profile pictures to S3-compatible storage and
// records the public URL on the account.
type AvatarService struct {
	client   objectPutter
	users    avatarStore
	endpoint string
	bucket   string
}

func NewAvatarService(cfg *config.Config, users *repository.UserRepository) (*AvatarService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKey,
			cfg.S3.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		o.UsePathStyle = true
	})

	return &AvatarService{
		client:   client,
		users:    users,
		endpoint: strings.TrimRight(cfg.S3.Endpoint, "/"),
		bucket:   cfg.S3.Bucket,
	}, nil
}

// Upload stores the image under a fresh key and returns the public URL
// after persisting it on the user row. A cached session may keep the old
// URL until its TTL runs out.
func (s *AvatarService) Upload(ctx context.Context, userID uint, username, filename, contentType string, body io.Reader) (string, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Upload")

	key := avatarKey(username, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to upload avatar").
			Int("user_id", int(userID)).
			String("key", key).
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}

	avatarURL := fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)

	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Avatar uploaded").
		Int("user_id", int(userID)).
		String("avatar_url", avatarURL).
		Log()

	return avatarURL, nil
}

func avatarKey(username, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("avatars/%s/%s%s", username, uuid.New(), ext)
}
