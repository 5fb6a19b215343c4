package storage

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const s3Scheme = "s3://"

// OutputStorage is where a finished device is written.
type OutputStorage interface {
	Write(ctx context.Context, data []byte) error
	Location() string
}

type OutputStorageOpts struct {
	Path string
	S3   S3StorageOpts
}

// S3StorageOpts configures uploads to s3://bucket/key outputs. Empty fields fall
// back to the default AWS configuration chain.
type S3StorageOpts struct {
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	HTTPClient     *http.Client
}

// IsS3Path reports whether path names an S3 object.
func IsS3Path(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// ParseS3Path splits s3://bucket/key into its bucket and key.
func ParseS3Path(path string) (bucket string, key string, err error) {
	if !IsS3Path(path) {
		return "", "", errors.New("not an s3 path: " + path)
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(path, s3Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", errors.New("s3 path must be s3://bucket/key: " + path)
	}
	return bucket, key, nil
}

func NewOutputStorage(ctx context.Context, opts OutputStorageOpts) (OutputStorage, error) {
	if opts.Path == "" {
		return nil, errors.New("output path not provided")
	}

	if IsS3Path(opts.Path) {
		bucket, key, err := ParseS3Path(opts.Path)
		if err != nil {
			return nil, err
		}
		return NewS3Storage(ctx, bucket, key, opts.S3)
	}

	return NewLocalStorage(opts.Path), nil
}
