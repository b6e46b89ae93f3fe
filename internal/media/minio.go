package media

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object URLs; defaults to the endpoint.
	PublicURL string
}

// MinioStore keeps images in an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
	}

	public := opts.PublicURL
	if public == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + opts.Endpoint
	}
	return &MinioStore{client: client, bucket: opts.Bucket, publicURL: strings.TrimRight(public, "/")}, nil
}

func (s *MinioStore) Upload(ctx context.Context, ownerID string, fh *multipart.FileHeader) (string, error) {
	img, err := openImage(fh)
	if err != nil {
		return "", err
	}
	defer img.file.Close()

	object := objectName(ownerID, fh.Filename, img.ext)
	_, err = s.client.PutObject(ctx, s.bucket, object, img.file, img.size, minio.PutObjectOptions{
		ContentType: img.mime,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.publicURL + "/" + s.bucket + "/" + object, nil
}

func objectName(ownerID, filename, ext string) string {
	owner := sanitizeName(ownerID)
	return fmt.Sprintf("reports/%s/%s_%s%s", owner, uuid.NewString(), sanitizeName(filename), ext)
}
