package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	s3ConfigTimeout = 3 * time.Second
	s3CacheSize     = 128
)

// S3Source serves assets from a bucket, keyed by asset name. Downloaded
// assets are kept in memory.
type S3Source struct {
	bucket     string
	downloader *manager.Downloader
	cache      *lru.Cache[string, *Asset]
}

// NewS3Source loads the shared AWS configuration for profile and serves
// assets from bucket.
func NewS3Source(ctx context.Context, bucket, profile string) (*S3Source, error) {
	if bucket == "" {
		return nil, errors.New("no s3 bucket provided for assets")
	}

	opts := []func(*config.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	ctxCfg, cancelCfg := context.WithTimeout(ctx, s3ConfigTimeout)
	cfg, err := config.LoadDefaultConfig(ctxCfg, opts...)
	cancelCfg()
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}

	return newS3Source(s3.NewFromConfig(cfg), bucket)
}

func newS3Source(client manager.DownloadAPIClient, bucket string) (*S3Source, error) {
	cache, err := lru.New[string, *Asset](s3CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset cache: %w", err)
	}
	return &S3Source{
		bucket:     bucket,
		downloader: manager.NewDownloader(client),
		cache:      cache,
	}, nil
}

func (s *S3Source) Open(ctx context.Context, name string) (*Asset, error) {
	if a, ok := s.cache.Get(name); ok {
		return a, nil
	}

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, name)
		}
		return nil, fmt.Errorf("unable to download object from s3, %s, %w", name, err)
	}

	a := &Asset{Name: name, Data: buf.Bytes(), ModTime: time.Now()}
	s.cache.Add(name, a)
	slog.Debug("asset downloaded from s3", "bucket", s.bucket, "name", name, "bytes", len(a.Data))
	return a, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
