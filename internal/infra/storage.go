package infra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SheetStore keeps a copy of every production sheet that is mailed out.
type SheetStore interface {
	// Put stores data under key and returns where it ended up.
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// NewSheetStore picks the backend from SHEET_STORAGE.
func NewSheetStore(ctx context.Context, cfg *config.Config) (SheetStore, error) {
	switch cfg.SheetStorage {
	case "", "local":
		return NewLocalSheetStore(cfg.PDFStoragePath), nil
	case "s3":
		return NewS3SheetStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown SHEET_STORAGE %q", cfg.SheetStorage)
	}
}

// ── Local disk ───────────────────────────────────────────────────────────────

type LocalSheetStore struct {
	dir string
}

func NewLocalSheetStore(dir string) *LocalSheetStore {
	return &LocalSheetStore{dir: dir}
}

func (s *LocalSheetStore) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return path, nil
}

// ── S3 / S3-compatible ───────────────────────────────────────────────────────

type S3SheetStore struct {
	client *s3.Client
	bucket string
}

func NewS3SheetStore(ctx context.Context, cfg *config.Config) (*S3SheetStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("storage: S3_BUCKET is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3SheetStore{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3SheetStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
