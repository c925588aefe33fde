package storage

import (
	"bytes"
	"context"
	"io"

	"scholarship-backend/internal/domain/storage"
	"scholarship-backend/pkg/id"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

var _ storage.Store = (*OSSStore)(nil)

// OSSStore keeps blobs in an Aliyun OSS bucket; paths are object keys.
type OSSStore struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSSStore(endpoint, accessKeyID, accessKeySecret, bucketName, prefix string) (*OSSStore, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return &OSSStore{bucket: bucket, prefix: prefix}, nil
}

func (s *OSSStore) Put(ctx context.Context, dir, fileName string, data []byte) (string, error) {
	key := id.ObjectKey(s.prefix+dir, fileName)
	if err := s.bucket.PutObject(key, bytes.NewReader(data), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return key, nil
}

func (s *OSSStore) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := s.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 404 {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// Delete is idempotent: OSS answers 204 for missing keys too.
func (s *OSSStore) Delete(ctx context.Context, key string) error {
	return s.bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.IsObjectExist(key, oss.WithContext(ctx))
}
