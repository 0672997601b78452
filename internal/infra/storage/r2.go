package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// R2Images stores item photos in Cloudflare R2 (or any S3-compatible
// store) and resolves public URLs for them.
type R2Images struct {
	client  *minio.Client
	bucket  string
	cdnBase string
	presign time.Duration
	logger  *slog.Logger
}

// NewR2Images constructs the storage adapter.
func NewR2Images(endpoint, accessKey, secretKey, bucket, cdnBase string, logger *slog.Logger) (*R2Images, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &R2Images{
		client:  client,
		bucket:  bucket,
		cdnBase: strings.TrimSuffix(cdnBase, "/"),
		presign: 15 * time.Minute,
		logger:  logger.With("component", "storage.r2"),
	}, nil
}

func (s *R2Images) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Put uploads an item photo; implements closet.ImageStorage.
func (s *R2Images) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	return err
}

// URL resolves a public URL for the key, preferring the CDN base and
// falling back to a presigned GET.
func (s *R2Images) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if s.cdnBase != "" {
		return s.cdnBase + "/" + key, nil
	}
	signed, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presign, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

// Delete removes an object.
func (s *R2Images) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New
// expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}
