package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// ObjectPutter is the part of *s3.Client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Archiver stores each payment, image included, as a JSON object so the
// check image survives outside the primary database.
type S3Archiver struct {
	client ObjectPutter
	bucket string
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Archiver(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3ArchiverWithClient(client, cfg.Bucket), nil
}

// NewS3ArchiverWithClient allows injecting a test client.
func NewS3ArchiverWithClient(c ObjectPutter, bucket string) *S3Archiver {
	return &S3Archiver{client: c, bucket: bucket}
}

func (a *S3Archiver) Name() string { return "s3" }

type archivedPayment struct {
	EventPayment
	CheckImageBase64 string `json:"checkImageBase64"`
}

// ObjectKey returns payments/<owner>/<yyyy>/<mm>/<dd>/<id>.json.
func ObjectKey(p *models.Payment) string {
	t := p.CreatedAt.UTC()
	return fmt.Sprintf("payments/%s/%04d/%02d/%02d/%s.json", p.OwnerUsername, t.Year(), t.Month(), t.Day(), p.ID)
}

func (a *S3Archiver) Notify(ctx context.Context, p *models.Payment, actingUser string) error {
	body, err := json.Marshal(archivedPayment{
		EventPayment:     newEventPayment(p, actingUser),
		CheckImageBase64: p.CheckImageBase64,
	})
	if err != nil {
		return fmt.Errorf("s3 marshal: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ObjectKey(p)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"payment-id": p.ID,
			"owner":      p.OwnerUsername,
			"created-at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", ObjectKey(p), err)
	}
	return nil
}
