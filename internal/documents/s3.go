package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const signedURLExpiry = 15 * time.Minute

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store keeps attachments in an S3-compatible bucket (MinIO locally).
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	if obj.ClaimID == "" || obj.Name == "" {
		return "", fmt.Errorf("claim id and name are required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	content := obj.Content
	if content == nil {
		content = []byte{}
	}

	key := objectKey(obj.ClaimID, obj.Index, obj.Name)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"claim-id":      obj.ClaimID,
			"original-name": obj.Name,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return DownloadPath(obj.ClaimID, obj.Index), nil
}

// findKey resolves the object stored at a claim's attachment index.
func (s *S3Store) findKey(ctx context.Context, claimID string, index int) (string, error) {
	prefix := indexPrefix(claimID, index)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return "", obj.Err
		}
		if obj.Key != "" {
			return obj.Key, nil
		}
	}
	return "", ErrNotFound
}

// DeleteClaim removes every object stored under a claim.
func (s *S3Store) DeleteClaim(ctx context.Context, claimID string) error {
	var found []minio.ObjectInfo
	opts := minio.ListObjectsOptions{Prefix: claimPrefix(claimID), Recursive: true}
	for obj := range s.client.ListObjects(ctx, s.bucketName, opts) {
		if obj.Err != nil {
			return fmt.Errorf("list claim documents: %w", obj.Err)
		}
		found = append(found, obj)
	}
	if len(found) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(found))
	for _, obj := range found {
		objects <- obj
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucketName, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}

func (s *S3Store) Get(ctx context.Context, claimID string, index int) (*Object, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	key, err := s.findKey(ctx, claimID, index)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		return nil, err
	}
	return &Object{
		ClaimID:     claimID,
		Index:       index,
		Name:        key[strings.LastIndex(key, "/")+1:],
		ContentType: info.ContentType,
		Content:     data,
	}, nil
}

func (s *S3Store) SignedURL(ctx context.Context, claimID string, index int) (string, error) {
	key, err := s.findKey(ctx, claimID, index)
	if err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, signedURLExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
