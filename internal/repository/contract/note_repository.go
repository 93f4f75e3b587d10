package contract

import (
	"context"

	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredNote wraps a Note with its similarity score (0.0 to 1.0,
// 1.0 = identical). Only semantic and hybrid retrieval produce scores.
type ScoredNote struct {
	Note       *entity.Note
	Similarity float64
}

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update rewrites an existing row, scoped to the note's owner. It
	// never inserts; a vanished row yields NotFoundError.
	Update(ctx context.Context, note *entity.Note) error
	// SoftDelete marks the row deleted; HardDelete removes it. Both are
	// owner-scoped and report the number of rows affected.
	SoftDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error)
	HardDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ListTags returns the deduplicated, sorted tag set across the
	// owner's active notes.
	ListTags(ctx context.Context, userId uuid.UUID) ([]string, error)
	// SearchSimilarWithScore ranks by cosine similarity, filtered to
	// similarity >= threshold, ordered descending.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredNote, error)
	// SearchHybrid delegates to the hybrid_search_notes procedure, which
	// combines vector similarity with keyword relevance server-side.
	SearchHybrid(ctx context.Context, query string, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredNote, error)
}
