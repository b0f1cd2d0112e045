package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/dreitier/treefactor/config"
	"github.com/dreitier/treefactor/storage"
	log "github.com/sirupsen/logrus"
)

const jsonContentType = "application/json"

// S3Store keeps every document as an object below Prefix in Bucket.
type S3Store struct {
	Bucket string
	Prefix string
	client *s3.Client
}

func NewS3Store(ctx context.Context, cfg *config.StorageConfiguration) (*S3Store, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.Token),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to build S3 client: %w", err)
	}

	if cfg.RoleArn != "" {
		log.Debugf("Assuming role %s for bucket %s", cfg.RoleArn, cfg.Bucket)
		awsCfg.Credentials = aws.NewCredentialsCache(
			stscreds.NewAssumeRoleProvider(sts.NewFromConfig(awsCfg), cfg.RoleArn),
		)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Store{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
		client: client,
	}, nil
}

func (c *S3Store) objectKey(key string) string {
	return c.Prefix + key
}

func (c *S3Store) Save(ctx context.Context, key string, data []byte) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.Bucket),
		Key:           aws.String(c.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(jsonContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, c.Bucket, err)
	}

	return nil
}

func (c *S3Store) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s from bucket %s: %w", key, c.Bucket, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (c *S3Store) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, c.Bucket, err)
	}

	return nil
}

func (c *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.Bucket),
		Prefix: aws.String(c.objectKey(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get objects in bucket %s: %w", c.Bucket, err)
		}
		log.Debugf("Retrieved %d items from bucket %s", len(page.Contents), c.Bucket)

		for _, object := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(object.Key), c.Prefix))
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (c *S3Store) Close() error {
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	return false
}
