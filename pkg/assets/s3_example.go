//go:build s3assets
// +build s3assets

// This file provides an example S3-backed Publisher implementation.
// It is excluded from regular builds because it requires the AWS SDK.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Publisher publishes assets to an AWS S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	client := s3.NewFromConfig(cfg)
//	pub := assets.NewS3Publisher(client, "my-bucket", "assets/")
//
//	app.OnReady(func(ctx context.Context, a *strato.App) error {
//	    _, err := assets.SyncDir(ctx, pub, a.Settings().Static.Dir)
//	    return err
//	})
type S3Publisher struct {
	client    *s3.Client
	bucket    string
	prefix    string
	urlExpiry time.Duration
}

// NewS3Publisher creates a publisher writing under prefix in bucket.
func NewS3Publisher(client *s3.Client, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		urlExpiry: 24 * time.Hour,
	}
}

// WithURLExpiry sets how long returned presigned URLs are valid.
func (p *S3Publisher) WithURLExpiry(d time.Duration) *S3Publisher {
	p.urlExpiry = d
	return p
}

// Publish uploads the asset and returns a presigned URL for it.
func (p *S3Publisher) Publish(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	fullKey := p.prefix + key

	// Buffered upload; for very large assets consider the SDK's
	// multipart upload manager instead.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"published-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 publish failed: %w", err)
	}

	presignClient := s3.NewPresignClient(p.client)
	presigned, err := presignClient.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(fullKey),
		},
		s3.WithPresignExpires(p.urlExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("s3 presign failed: %w", err)
	}

	return presigned.URL, nil
}

// Remove deletes the asset stored under key.
func (p *S3Publisher) Remove(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.prefix + key),
	})
	return err
}

// RemoveOlderThan deletes published assets last modified before the
// cutoff. Useful as a deploy-time cleanup step.
func (p *S3Publisher) RemoveOlderThan(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) && obj.Key != nil {
				toDelete = append(toDelete, *obj.Key)
			}
		}
	}

	for _, key := range toDelete {
		if _, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return err
		}
	}
	return nil
}
