package aws

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectUploader stores an object and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// S3Uploader uploads product media into a single bucket.
type S3Uploader struct {
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

// NewS3Uploader builds an uploader for bucket. publicBaseURL is prefixed to object keys
// to form public URLs; when empty the virtual-hosted S3 URL for the region is used.
func NewS3Uploader(cfg sdkaws.Config, bucket, publicBaseURL string) *S3Uploader {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &S3Uploader{
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Upload streams the object to the bucket and returns its public URL. body need not be
// seekable; large bodies go up as a multipart upload.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(u.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, u.bucket, err)
	}
	return PublicObjectURL(u.publicBaseURL, key), nil
}

// PublicObjectURL joins a base URL and an object key, escaping each path segment.
func PublicObjectURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.Join(segments, "/")
}
