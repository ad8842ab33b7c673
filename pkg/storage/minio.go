package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures an S3-compatible bucket. PublicURL, when set, is the
// base that object keys are appended to; otherwise the endpoint URL is used.
// A known Region lets URLs be presigned without a bucket location lookup.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// DocumentSigner hands out short-lived URLs that clients PUT files to directly.
type DocumentSigner interface {
	PresignUpload(ctx context.Context, folder, fileName string, expiry time.Duration) (*PresignedUpload, error)
	// Owns reports whether fileURL points into this store.
	Owns(fileURL string) bool
}

type PresignedUpload struct {
	UploadURL string
	Key       string
	PublicURL string
}

type minioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStorage(ctx context.Context, opts MinioOptions) (ImageStorage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	base := strings.TrimRight(opts.PublicURL, "/")
	if base == "" {
		base = client.EndpointURL().String() + "/" + opts.Bucket
	}

	return &minioStorage{client: client, bucket: opts.Bucket, baseURL: base}, nil
}

// objectKey builds folder/<unix-nano>-<name>, keeping keys unique per upload.
func objectKey(folder, fileName string) string {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), path.Base(filepath.ToSlash(fileName)))
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

func (s *minioStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	key := objectKey(folder, fileName)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Size -1 streams the body as a multipart upload.
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload image to minio: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *minioStorage) DeleteImage(ctx context.Context, fileURL string) error {
	key := s.keyFromURL(fileURL)
	if key == "" {
		return fmt.Errorf("could not extract object key from URL: %s", fileURL)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image from minio: %w", err)
	}
	return nil
}

func (s *minioStorage) keyFromURL(fileURL string) string {
	if strings.HasPrefix(fileURL, s.baseURL+"/") {
		return strings.TrimPrefix(fileURL, s.baseURL+"/")
	}

	// Path-style URL from another host: /<bucket>/<key>.
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	if rest, ok := strings.CutPrefix(p, s.bucket+"/"); ok {
		return rest
	}
	return ""
}

func (s *minioStorage) PresignUpload(ctx context.Context, folder, fileName string, expiry time.Duration) (*PresignedUpload, error) {
	key := objectKey(folder, fileName)

	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: u.String(),
		Key:       key,
		PublicURL: s.baseURL + "/" + key,
	}, nil
}

func (s *minioStorage) Owns(fileURL string) bool {
	return s.keyFromURL(fileURL) != ""
}
