package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OwnedBy scopes every query to the requesting principal. Applied at
// query-construction time, never only at the API boundary.
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// OrderBy applies ordering on a whitelisted column.
type OrderBy struct {
	Field string
	Desc  bool
}

var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	field := s.Field
	if !sortableColumns[field] {
		field = "created_at"
	}
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", field, direction))
}

// WithDeleted lifts GORM's implicit soft-delete filter so soft-deleted
// rows become visible.
type WithDeleted struct{}

func (s WithDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
