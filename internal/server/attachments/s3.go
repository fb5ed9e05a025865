// Package attachments stores chat images and profile pictures in an
// S3-compatible bucket and hands out short-lived download links.
package attachments

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/server/config"
	"github.com/google/uuid"
)

const (
	keyPrefix     = "attachments"
	presignExpiry = 15 * time.Minute
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	headBucket = func(c *s3.Client, ctx context.Context, bucket string) error {
		_, err := c.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		return err
	}

	createBucket = func(c *s3.Client, ctx context.Context, bucket string) error {
		_, err := c.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		return err
	}

	now = time.Now
)

// S3Store uploads decoded images and presigns downloads.
// References handed to clients have the form <baseURL>/<key>.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
	maxSize int64
}

// NewS3Store builds a path-style client for the configured endpoint
// (MinIO in development).
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(cfg.AttachmentBaseURL, "/"),
		maxSize: cfg.MaxAttachmentSize,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	if err := headBucket(s.client, ctx, s.bucket); err == nil {
		return nil
	}
	if err := createBucket(s.client, ctx, s.bucket); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Store validates payload as an image and uploads it. Bad payloads wrap
// common.ErrInvalidAttachment, storage failures common.ErrAttachmentUpload.
func (s *S3Store) Store(ctx context.Context, ownerID string, payload string) (string, error) {
	img, err := DecodeImage(payload, s.maxSize)
	if err != nil {
		return "", err
	}

	key := newKey(img.MIME.Extension())
	err = putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(img.MIME.String()),
		Metadata:      map[string]string{"owner": ownerID},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAttachmentUpload, err)
	}

	return s.baseURL + "/" + key, nil
}

// PresignGet returns a temporary download URL for key. Keys outside the
// attachment namespace are reported as common.ErrorNotFound.
func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if !validKey(key) {
		return "", common.ErrorNotFound
	}

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func newKey(ext string) string {
	d := now()
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", keyPrefix, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func validKey(key string) bool {
	if !strings.HasPrefix(key, keyPrefix+"/") {
		return false
	}
	return !strings.Contains(key, "..") && !strings.Contains(key, "//")
}
