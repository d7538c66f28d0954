package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"stemhub/logger"
	"stemhub/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is a raw stored document: the generated id plus its JSON payload.
type Document struct {
	ID   string
	Data []byte
}

// Decode unmarshals the payload into v.
func (d *Document) Decode(v interface{}) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.ID, err)
	}
	return nil
}

// DocumentStore defines the primitives of the document database. Collections
// are flat; documents are keyed by a store-generated id.
type DocumentStore interface {
	// Create 创建文档并返回生成的ID
	Create(ctx context.Context, collection string, data interface{}) (string, error)

	// GetAll 获取集合中的所有文档，按写入顺序
	GetAll(ctx context.Context, collection string) ([]Document, error)

	// GetByID returns nil, nil when the document does not exist.
	GetByID(ctx context.Context, collection, id string) (*Document, error)

	// Update replaces the stored payload of an existing document.
	Update(ctx context.Context, collection, id string, data interface{}) error

	// Delete 删除文档
	Delete(ctx context.Context, collection, id string) error
}

// gormDocumentStore GORM 实现
type gormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore creates a DocumentStore backed by the documents table.
func NewGormDocumentStore(db *gorm.DB) DocumentStore {
	return &gormDocumentStore{db: db}
}

func marshalData(data interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return datatypes.JSON(b), nil
}

// Create 创建文档
func (r *gormDocumentStore) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	payload, err := marshalData(data)
	if err != nil {
		return "", err
	}

	doc := &model.Document{
		Collection: collection,
		ID:         uuid.NewString(),
		Data:       payload,
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}

	logger.Debug("document created",
		logger.String("collection", collection),
		logger.String("id", doc.ID))
	return doc.ID, nil
}

// GetAll 获取集合中的所有文档
func (r *gormDocumentStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var rows []model.Document
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query documents in %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.ID, Data: []byte(row.Data)})
	}
	return docs, nil
}

// GetByID 根据ID获取文档
func (r *gormDocumentStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	var row model.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return &Document{ID: row.ID, Data: []byte(row.Data)}, nil
}

// Update 更新文档
func (r *gormDocumentStore) Update(ctx context.Context, collection, id string, data interface{}) error {
	payload, err := marshalData(data)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Model(&model.Document{}).
		Where("collection = ? AND id = ?", collection, id).
		Update("data", payload).Error
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete 删除文档
func (r *gormDocumentStore) Delete(ctx context.Context, collection, id string) error {
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.Document{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}
