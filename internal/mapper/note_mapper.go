package mapper

import (
	"time"

	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if n.Embedding != nil {
		embedding = n.Embedding.Slice()
	}

	var file *entity.FileMeta
	if n.FileUrl != nil {
		file = &entity.FileMeta{Url: *n.FileUrl}
		if n.FileName != nil {
			file.Name = *n.FileName
		}
		if n.FileType != nil {
			file.Type = *n.FileType
		}
		if n.FileSize != nil {
			file.Size = *n.FileSize
		}
	}

	return &entity.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		RawText:   n.RawText,
		Content:   n.Content,
		Summary:   n.Summary,
		Tags:      []string(n.Tags),
		Embedding: embedding,
		File:      file,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	var embedding *pgvector.Vector
	if n.Embedding != nil {
		v := pgvector.NewVector(n.Embedding)
		embedding = &v
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	mdl := &model.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		RawText:   n.RawText,
		Content:   n.Content,
		Summary:   n.Summary,
		Tags:      datatypes.JSONSlice[string](tags),
		Embedding: embedding,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}

	if n.File != nil {
		mdl.FileUrl = &n.File.Url
		mdl.FileName = &n.File.Name
		mdl.FileType = &n.File.Type
		mdl.FileSize = &n.File.Size
	}

	return mdl
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) ToModels(notes []*entity.Note) []*model.Note {
	models := make([]*model.Note, len(notes))
	for i, n := range notes {
		models[i] = m.ToModel(n)
	}
	return models
}
