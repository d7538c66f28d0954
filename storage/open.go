package storage

import (
	"context"

	"stemhub/config"
	"stemhub/logger"
)

// Open returns the FileStore selected by STORAGE_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (FileStore, error) {
	switch cfg.StorageBackend {
	case "", "disk":
		logger.Info("[Storage] 使用本地磁盘存储", logger.String("root", cfg.UploadDir))
		return NewDiskStore(cfg.UploadDir, cfg.MaxUploadSize), nil
	case "minio":
		store, err := NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("[Storage] 使用 MinIO 存储",
			logger.String("endpoint", cfg.MinioEndpoint),
			logger.String("bucket", cfg.MinioBucket))
		return store, nil
	}
	return nil, Error.New("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
}
