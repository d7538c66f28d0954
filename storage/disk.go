package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stemhub/logger"

	"github.com/zeebo/errs"
)

// DiskStore keeps uploads under Root/{kind}/.
type DiskStore struct {
	Root    string
	MaxSize int64
}

// NewDiskStore creates a DiskStore. maxSize <= 0 means DefaultMaxUploadSize.
func NewDiskStore(root string, maxSize int64) *DiskStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &DiskStore{Root: root, MaxSize: maxSize}
}

func (d *DiskStore) dir(kind string) string {
	return filepath.Join(d.Root, kind)
}

// Save implements FileStore.
func (d *DiskStore) Save(ctx context.Context, kind, ownerID string, file Upload) (string, error) {
	if !ValidKind(kind) {
		return "", Error.New("unknown kind %q", kind)
	}
	if err := CheckUpload(file.ContentType, file.Size, d.MaxSize); err != nil {
		return "", err
	}

	dir := d.dir(kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", Error.Wrap(err)
	}

	name := StoredName(ownerID, file.Filename)
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", Error.Wrap(err)
	}

	written, err := io.Copy(out, limitBody(file.Body, d.MaxSize))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", Error.Wrap(err)
	}
	if written > d.MaxSize {
		_ = os.Remove(dst)
		return "", TooLarge(d.MaxSize)
	}

	logger.Info("[Storage] 文件保存成功",
		logger.String("kind", kind),
		logger.String("path", dst),
		logger.Int64("size", written))
	return AudioPath(kind, name), nil
}

// DeleteByPrefix implements FileStore.
func (d *DiskStore) DeleteByPrefix(ctx context.Context, kind, ownerID string) (int, error) {
	entries, err := os.ReadDir(d.dir(kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, Error.Wrap(err)
	}

	prefix := OwnerPrefix(ownerID)
	removed := 0
	var group errs.Group
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		p := filepath.Join(d.dir(kind), entry.Name())
		if err := os.Remove(p); err != nil {
			logger.Warn("[Storage] 删除文件失败",
				logger.String("path", p),
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
func (d *DiskStore) Open(ctx context.Context, kind, name string) (io.ReadCloser, error) {
	if !ValidKind(kind) || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, ErrNotFound.New("%s/%s", kind, name)
	}
	f, err := os.Open(filepath.Join(d.dir(kind), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound.New("%s/%s", kind, name)
		}
		return nil, Error.Wrap(err)
	}
	return f, nil
}
