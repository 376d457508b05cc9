package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// StorageConfig describes an S3-compatible bucket.
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Base for object links. Defaults to https://<bucket>.<endpoint host>.
	PublicURL string
}

// ObjectStorage uploads files to an S3-compatible bucket.
type ObjectStorage struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewObjectStorage returns nil without an error when no bucket is configured.
func NewObjectStorage(cfg StorageConfig) (*ObjectStorage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, nil
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage: access_key and secret_key are required for bucket %s", cfg.Bucket)
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: new session: %w", err)
	}
	return NewObjectStorageWithClient(s3.New(sess), cfg), nil
}

func NewObjectStorageWithClient(client s3iface.S3API, cfg StorageConfig) *ObjectStorage {
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
		if host == "" {
			host = "s3.amazonaws.com"
		}
		public = fmt.Sprintf("https://%s.%s", cfg.Bucket, strings.TrimRight(host, "/"))
	}
	return &ObjectStorage{client: client, bucket: cfg.Bucket, publicURL: public}
}

// Upload stores body under key and returns the public URL of the object.
func (s *ObjectStorage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("private"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload %s to S3: %v", key, err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
