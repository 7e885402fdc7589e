package docstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection settings for a MinIO-backed store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore persists documents in a MinIO (or S3-compatible) bucket. The
// object key is the opaque reference; the hash and original file name travel
// as user metadata.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	if err := validate(data, contentType, fileName); err != nil {
		return "", err
	}

	ref := uuid.New().String()
	h := sha256.Sum256(data)

	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"file-name": fileName,
				"hash":      fmt.Sprintf("%x", h),
			},
		})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", ref, err)
	}

	return ref, nil
}

func (s *MinioStore) Get(ctx context.Context, ref string) (io.ReadCloser, *Document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object %s: %w", ref, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("stat object %s: %w", ref, err)
	}

	meta := &Document{
		Ref:         ref,
		FileName:    stat.UserMetadata["File-Name"],
		ContentType: stat.ContentType,
		Size:        stat.Size,
		Hash:        stat.UserMetadata["Hash"],
		CreatedAt:   stat.LastModified.UTC(),
	}
	return obj, meta, nil
}

func (s *MinioStore) Delete(ctx context.Context, ref string) error {
	err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s: %w", ref, err)
	}
	return nil
}

var (
	_ Store = (*MinioStore)(nil)
	_ Store = (*Memory)(nil)
)
