package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one row of the generic document table. Each resource type is a
// collection; Data holds the entity JSON and the row ID is authoritative.
// Seq only records insertion order.
type Document struct {
	Seq        uint64         `gorm:"primaryKey;autoIncrement"`
	Collection string         `gorm:"size:64;not null;uniqueIndex:idx_documents_collection_id"`
	ID         string         `gorm:"size:36;not null;uniqueIndex:idx_documents_collection_id"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}
