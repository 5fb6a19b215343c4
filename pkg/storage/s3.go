package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const uploadConcurrency = 8

type S3Storage struct {
	svc    *s3.Client
	bucket string
	key    string
}

func NewS3Storage(ctx context.Context, bucket string, key string, opts S3StorageOpts) (*S3Storage, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if opts.AccessKey != "" && opts.SecretKey != "" {
		accessKey = opts.AccessKey
		secretKey = opts.SecretKey
	}

	cfg, err := getAWSConfig(ctx, accessKey, secretKey, opts.Region, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		svc:    svc,
		bucket: bucket,
		key:    key,
	}, nil
}

func getAWSConfig(ctx context.Context, accessKey string, secretKey string, region string, httpClient *http.Client) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error

	// The default client must stay in place for AWS_CA_BUNDLE to apply.
	if httpClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(httpClient))
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func (s *S3Storage) Location() string {
	return fmt.Sprintf("%s%s/%s", s3Scheme, s.bucket, s.key)
}

// Write uploads data as a single object. The object only becomes visible once
// the upload completes.
func (s *S3Storage) Write(ctx context.Context, data []byte) error {
	length := int64(len(data))

	uploader := manager.NewUploader(s.svc, func(u *manager.Uploader) {
		u.Concurrency = uploadConcurrency
	})

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: &length,
	})
	if err != nil {
		return fmt.Errorf("failed to upload <%s>: %w", s.Location(), err)
	}

	log.Info().Msgf("uploaded %d bytes to <%s>", length, s.Location())
	return nil
}
