package entity

import (
	"time"

	"github.com/google/uuid"
)

// FileMeta describes the uploaded file a note was extracted from, if any.
type FileMeta struct {
	Url  string
	Name string
	Type string
	Size int64
}

type Note struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	RawText   *string
	Content   string
	Summary   *string
	Tags      []string
	Embedding []float32 // nil when enrichment failed or has not run yet
	File      *FileMeta
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// ContentFields returns the fields the embedding is derived from. Any
// write touching these must regenerate or clear the vector.
func (n *Note) ContentFields() (string, string, []string) {
	return n.Title, n.Content, n.Tags
}
