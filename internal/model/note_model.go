package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title     string                      `gorm:"type:varchar(255);not null"`
	RawText   *string                     `gorm:"type:text"`
	Content   string                      `gorm:"type:text;not null"`
	Summary   *string                     `gorm:"type:text"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	Embedding *pgvector.Vector            `gorm:"type:vector(1536)"`
	FileUrl   *string                     `gorm:"type:text"`
	FileName  *string                     `gorm:"type:varchar(255)"`
	FileType  *string                     `gorm:"type:varchar(100)"`
	FileSize  *int64
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
