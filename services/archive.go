package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/techagentng/healthtrack/config"
)

// Archiver keeps a copy of scanned documents.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte) (string, error)
}

// objectPutter is the part of *s3.Client the archiver uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads scans to a bucket.
type S3Archiver struct {
	client objectPutter
	bucket string
	region string
}

// NewS3Archiver returns an archiver for conf.S3Bucket, or nil when
// archival is disabled.
func NewS3Archiver(ctx context.Context, conf *config.Config) (Archiver, error) {
	if !conf.ArchiveEnabled() {
		return nil, nil
	}
	client, err := createS3Client(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &S3Archiver{client: client, bucket: conf.S3Bucket, region: conf.AWSRegion}, nil
}

func createS3Client(ctx context.Context, conf *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.AWSRegion),
	}
	if conf.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AWSAccessKeyID,
			conf.AWSSecretAccessKey,
			"",
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	return s3.NewFromConfig(cfg), nil
}

// Archive uploads data under key and returns the object URL.
func (a *S3Archiver) Archive(ctx context.Context, key string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key)
	log.Printf("Scan archived, URL: %s", fileURL)
	return fileURL, nil
}
