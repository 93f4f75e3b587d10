package dto

import (
	"time"

	"github.com/google/uuid"
)

type FileMetaPayload struct {
	Url  string `json:"url" validate:"required"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type CreateNoteRequest struct {
	Title   string           `json:"title"`
	RawText *string          `json:"raw_text"`
	Content string           `json:"content" validate:"required"`
	Summary *string          `json:"summary"`
	Tags    []string         `json:"tags"`
	File    *FileMetaPayload `json:"file"`
}

// UpdateNoteRequest is a patch: nil fields are left untouched. The
// invalidate flags let the caller decide whether the search and tag-list
// caches are cleared too; when omitted they default to "yes, if the
// relevant fields changed".
type UpdateNoteRequest struct {
	Title            *string   `json:"title"`
	RawText          *string   `json:"raw_text"`
	Content          *string   `json:"content"`
	Summary          *string   `json:"summary"`
	Tags             *[]string `json:"tags"`
	InvalidateSearch *bool     `json:"invalidate_search"`
	InvalidateTags   *bool     `json:"invalidate_tags"`
}

type NoteResponse struct {
	Id        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	RawText   *string          `json:"raw_text,omitempty"`
	Content   string           `json:"content"`
	Summary   *string          `json:"summary,omitempty"`
	Tags      []string         `json:"tags"`
	HasVector bool             `json:"has_vector"`
	File      *FileMetaPayload `json:"file,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at"`
}

type ListNotesQuery struct {
	Search    string   `json:"search"`
	Tags      []string `json:"tags"`
	SortBy    string   `json:"sort_by"`
	SortOrder string   `json:"sort_order"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
}

// ListNotesResponse carries one page plus the total count of the full
// filtered set, not just the page.
type ListNotesResponse struct {
	Notes  []*NoteResponse `json:"notes"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
