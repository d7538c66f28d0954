package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"stemhub/config"
	"stemhub/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zeebo/errs"
)

// MinioStore keeps uploads as objects {kind}/{ownerID}-{filename} in one bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	MaxSize int64
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewMinioStore 初始化 MinIO 客户端并确保存储桶存在
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, Error.New("创建 MinIO 客户端失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 检查存储桶是否存在
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, Error.New("检查存储桶失败: %v", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, Error.New("创建存储桶失败: %v", err)
		}
		logger.Info("[Storage] 成功创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	maxSize := cfg.MaxUploadSize
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket, MaxSize: maxSize}, nil
}

func objectKey(kind, name string) string {
	return kind + "/" + name
}

// Save implements FileStore.
func (m *MinioStore) Save(ctx context.Context, kind, ownerID string, file Upload) (string, error) {
	if !ValidKind(kind) {
		return "", Error.New("unknown kind %q", kind)
	}
	if err := CheckUpload(file.ContentType, file.Size, m.MaxSize); err != nil {
		return "", err
	}

	name := StoredName(ownerID, file.Filename)
	size := file.Size
	if size <= 0 {
		size = -1
	}

	info, err := m.client.PutObject(ctx, m.bucket, objectKey(kind, name), limitBody(file.Body, m.MaxSize), size,
		minio.PutObjectOptions{ContentType: file.ContentType})
	if err != nil {
		return "", Error.Wrap(err)
	}
	if info.Size > m.MaxSize {
		_ = m.client.RemoveObject(ctx, m.bucket, info.Key, minio.RemoveObjectOptions{})
		return "", TooLarge(m.MaxSize)
	}

	logger.Info("[Storage] 对象上传成功",
		logger.String("bucket", m.bucket),
		logger.String("key", info.Key),
		logger.Int64("size", info.Size))
	return AudioPath(kind, name), nil
}

// DeleteByPrefix implements FileStore.
func (m *MinioStore) DeleteByPrefix(ctx context.Context, kind, ownerID string) (int, error) {
	objects, err := m.List(ctx, objectKey(kind, OwnerPrefix(ownerID)))
	if err != nil {
		return 0, err
	}

	removed := 0
	var group errs.Group
	for _, obj := range objects {
		if err := m.client.RemoveObject(ctx, m.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			logger.Warn("[Storage] 删除对象失败",
				logger.String("key", obj.Key),
				logger.ErrorField(err))
			group.Add(err)
			continue
		}
		removed++
	}
	if err := group.Err(); err != nil {
		return removed, Error.Wrap(err)
	}
	return removed, nil
}

// Open implements FileStore.
func (m *MinioStore) Open(ctx context.Context, kind, name string) (io.ReadCloser, error) {
	if !ValidKind(kind) || strings.Contains(name, "/") {
		return nil, ErrNotFound.New("%s/%s", kind, name)
	}
	object, err := m.client.GetObject(ctx, m.bucket, objectKey(kind, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	// GetObject is lazy; Stat surfaces NoSuchKey.
	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound.New("%s/%s", kind, name)
		}
		return nil, Error.Wrap(err)
	}
	return object, nil
}

// List 列出指定前缀下的所有对象
func (m *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, Error.New("列出对象时出错: %v", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return objects, nil
}

// Bucket returns the bucket name.
func (m *MinioStore) Bucket() string {
	return m.bucket
}
