package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/models"
)

// ArchiveConfig locates the bucket reports are uploaded to. Endpoint and
// PathStyle target S3-compatible stores such as MinIO. Static keys are
// optional; the default credential chain is used without them.
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Archiver uploads rendered workbooks to S3.
type Archiver struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewArchiver builds the S3 client. optFns adjust the client options.
func NewArchiver(ctx context.Context, cfg ArchiveConfig, optFns ...func(*s3.Options)) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &Archiver{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// ArchiveKey is the object key of a report generated at t.
func ArchiveKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("reports/%04d/%02d/dashboard-%s.xlsx", t.Year(), int(t.Month()), t.Format("20060102T150405Z"))
}

// Archive renders d and uploads it, returning the object key.
func (a *Archiver) Archive(ctx context.Context, d models.Dashboard) (string, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, d); err != nil {
		return "", fmt.Errorf("render workbook: %w", err)
	}

	key := ArchiveKey(a.now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	log.WithFields(log.Fields{"bucket": a.bucket, "key": key, "bytes": buf.Len()}).Info("Report archived")
	return key, nil
}
