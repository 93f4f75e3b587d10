package implementation

import (
	"context"
	"errors"

	"github.com/on-par/vemorable-sub000/internal/apperr"
	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/mapper"
	"github.com/on-par/vemorable-sub000/internal/model"
	"github.com/on-par/vemorable-sub000/internal/repository/contract"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.NewDatabase("note.create", err)
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

// Update rewrites the mutable columns of an existing row, scoped to the
// owner. Save would fall back to an insert when the row is gone, which
// lets an update racing a hard delete resurrect the note, so the write
// is an explicit UPDATE and zero affected rows is reported as not found.
// The column list is explicit because a struct Updates skips zero values
// and cleared fields like summary or embedding must actually clear.
func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	res := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", m.Id, m.UserId).
		Select("title", "raw_text", "content", "summary", "tags", "embedding",
			"file_url", "file_name", "file_type", "file_size", "updated_at").
		Updates(m)
	if res.Error != nil {
		return apperr.NewDatabase("note.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("note", m.Id.String())
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.Note{})
	if res.Error != nil {
		return 0, apperr.NewDatabase("note.soft_delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) HardDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.Note{})
	if res.Error != nil {
		return 0, apperr.NewDatabase("note.hard_delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.NewDatabase("note.find_one", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.NewDatabase("note.find_all", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Note{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperr.NewDatabase("note.count", err)
	}
	return count, nil
}

func (r *NoteRepositoryImpl) ListTags(ctx context.Context, userId uuid.UUID) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT tag
		     FROM notes, jsonb_array_elements_text(tags) AS tag
		     WHERE user_id = ? AND deleted_at IS NULL
		     ORDER BY tag`, userId).
		Scan(&tags).Error
	if err != nil {
		return nil, apperr.NewDatabase("note.list_tags", err)
	}
	return tags, nil
}

// SearchSimilarWithScore ranks the owner's notes by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding <=> query_vector).
func (r *NoteRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.Note
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	// Table() bypasses the soft-delete scope, so the deleted_at filter
	// is explicit here.
	err := r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("user_id = ?", userId).
		Where("deleted_at IS NULL").
		Where("embedding IS NOT NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, apperr.NewDatabase("note.search_semantic", err)
	}

	scored := make([]*contract.ScoredNote, len(results))
	for i, res := range results {
		n := res.Note
		scored[i] = &contract.ScoredNote{
			Note:       r.mapper.ToEntity(&n),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

// SearchHybrid calls the hybrid_search_notes procedure, which combines
// vector similarity with ts_rank keyword relevance. The combination
// formula lives in SQL so it can be tuned without redeploying.
func (r *NoteRepositoryImpl) SearchHybrid(ctx context.Context, query string, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.Note
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Raw(`SELECT * FROM hybrid_search_notes(?, ?, ?, ?, ?)`,
			query, queryVector, threshold, limit, userId).
		Scan(&results).Error

	if err != nil {
		return nil, apperr.NewDatabase("note.search_hybrid", err)
	}

	scored := make([]*contract.ScoredNote, len(results))
	for i, res := range results {
		n := res.Note
		scored[i] = &contract.ScoredNote{
			Note:       r.mapper.ToEntity(&n),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
