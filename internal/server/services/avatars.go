package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/smarthealth/internal/common"
	sc "github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AvatarUpload is a presigned upload target. The client PUTs the image to
// URL and then stores Key as its avatar through the profile update.
type AvatarUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AvatarLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AvatarService hands out presigned S3 URLs for profile pictures.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	now         func() time.Time
}

func NewAvatarService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *AvatarService {
	return &AvatarService{db: db, repomanager: m, config: cfg, now: time.Now}
}

func avatarPrefix(userID string) string {
	return "avatars/" + userID + "/"
}

// AvatarKey returns a fresh object key under the user's avatar prefix.
func AvatarKey(userID string, now time.Time) string {
	return fmt.Sprintf("%s%d/%02d/%02d/%v", avatarPrefix(userID), now.Year(), now.Month(), now.Day(), uuid.New())
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for a new avatar object of userID.
func (s *AvatarService) UploadURL(ctx context.Context, userID string) (*AvatarUpload, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	bucket := s.config.S3Bucket
	key := AvatarKey(userID, now)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.AvatarURLTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &AvatarUpload{Key: key, URL: req.URL, ExpiresAt: now.Add(s.config.AvatarURLTTL)}, nil
}

// DownloadURL presigns a GET for the avatar stored on userID's profile.
// Avatars that are not objects under the user's own prefix have no link.
func (s *AvatarService) DownloadURL(ctx context.Context, userID string) (*AvatarLink, error) {
	account, err := s.repomanager.Accounts(s.db).FindByID(ctx, userID, accounts.SelectPublic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	key := account.Avatar
	if !strings.HasPrefix(key, avatarPrefix(userID)) {
		return nil, common.NewNotFoundError("No avatar uploaded")
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.AvatarURLTTL))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &AvatarLink{URL: req.URL, ExpiresAt: s.now().UTC().Add(s.config.AvatarURLTTL)}, nil
}
