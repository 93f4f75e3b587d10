package service

import (
	"context"
	"strings"
	"time"

	"github.com/on-par/vemorable-sub000/internal/apperr"
	"github.com/on-par/vemorable-sub000/internal/cache"
	"github.com/on-par/vemorable-sub000/internal/dto"
	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/pkg/logger"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"
	"github.com/on-par/vemorable-sub000/internal/repository/unitofwork"
	"github.com/on-par/vemorable-sub000/pkg/embedding"
	"github.com/on-par/vemorable-sub000/pkg/events"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, hard bool) error
	List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) (*dto.ListNotesResponse, error)
	ListTags(ctx context.Context, userId uuid.UUID) ([]string, error)
}

// NoteCacheTTL groups the read-path TTLs so the container can tune them
// from config.
type NoteCacheTTL struct {
	Notes time.Duration
	Tags  time.Duration
}

type noteService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        *embedding.Gateway
	queryCache     *cache.QueryCache
	invalidator    *cache.Invalidator
	eventPublisher *events.Publisher
	logger         logger.ILogger
	ttl            NoteCacheTTL
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	queryCache *cache.QueryCache,
	invalidator *cache.Invalidator,
	eventPublisher *events.Publisher,
	log logger.ILogger,
	ttl NoteCacheTTL,
) INoteService {
	if ttl.Notes <= 0 {
		ttl.Notes = 2 * time.Minute
	}
	if ttl.Tags <= 0 {
		ttl.Tags = 5 * time.Minute
	}
	return &noteService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		queryCache:     queryCache,
		invalidator:    invalidator,
		eventPublisher: eventPublisher,
		logger:         log,
		ttl:            ttl,
	}
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperr.NewValidation("owner is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.NewValidation("content is required")
	}

	note := entity.Note{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		RawText:   req.RawText,
		Content:   req.Content,
		Summary:   req.Summary,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
	}
	if req.File != nil {
		note.File = &entity.FileMeta{
			Url:  req.File.Url,
			Name: req.File.Name,
			Type: req.File.Type,
			Size: req.File.Size,
		}
	}

	// Phase 2 enrichment runs before the write here because the vector
	// lives on the same row; its failure still never fails the write.
	note.Embedding = s.generateEmbeddingBestEffort(note.Title, note.Content, note.Tags)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	// Read-after-write: invalidate synchronously, before returning.
	s.invalidator.NoteMutated(userId, note.Id, cache.MutationScope{Search: true, Tags: len(note.Tags) > 0})

	s.publishEvent(ctx, events.NoteCreated, &note)

	return toNoteResponse(&note), nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	type key struct {
		UserId uuid.UUID `json:"user_id"`
		Id     uuid.UUID `json:"id"`
	}

	return cache.Cached(ctx, s.queryCache, "notes:show", key{UserId: userId, Id: id}, s.ttl.Notes,
		func(ctx context.Context) (*dto.NoteResponse, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			note, err := uow.NoteRepository().FindOne(ctx,
				specification.ByID{ID: id},
				specification.OwnedBy{UserID: userId},
			)
			if err != nil {
				return nil, err
			}
			if note == nil {
				return nil, apperr.NewNotFound("note", id.String())
			}
			return toNoteResponse(note), nil
		},
		cache.NotesTag(userId), cache.NoteTag(userId, id),
	)
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperr.NewNotFound("note", id.String())
	}

	contentChanged := req.Title != nil || req.Content != nil || req.Tags != nil
	tagsChanged := req.Tags != nil

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.RawText != nil {
		note.RawText = req.RawText
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, apperr.NewValidation("content cannot be blank")
		}
		note.Content = *req.Content
	}
	if req.Summary != nil {
		note.Summary = req.Summary
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}

	if contentChanged {
		// The stored vector must always derive from the latest
		// title+content+tags; regenerate, or clear when the provider
		// is unavailable.
		note.Embedding = s.generateEmbeddingBestEffort(note.Title, note.Content, note.Tags)
	}

	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	scope := cache.MutationScope{
		Search: contentChanged,
		Tags:   tagsChanged,
	}
	if req.InvalidateSearch != nil {
		scope.Search = *req.InvalidateSearch
	}
	if req.InvalidateTags != nil {
		scope.Tags = *req.InvalidateTags
	}
	s.invalidator.NoteMutated(userId, note.Id, scope)

	s.publishEvent(ctx, events.NoteUpdated, note)

	return toNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, hard bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var (
		affected int64
		err      error
	)
	if hard {
		affected, err = uow.NoteRepository().HardDelete(ctx, id, userId)
	} else {
		affected, err = uow.NoteRepository().SoftDelete(ctx, id, userId)
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NewNotFound("note", id.String())
	}

	s.invalidator.NoteMutated(userId, id, cache.MutationScope{Search: true, Tags: true})

	s.publishEvent(ctx, events.NoteDeleted, &entity.Note{Id: id, UserId: userId})

	return nil
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) (*dto.ListNotesResponse, error) {
	if q == nil {
		q = &dto.ListNotesQuery{}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	type key struct {
		UserId uuid.UUID           `json:"user_id"`
		Query  *dto.ListNotesQuery `json:"query"`
	}
	normalized := *q
	normalized.Limit = limit
	normalized.Offset = offset

	return cache.Cached(ctx, s.queryCache, "notes:list", key{UserId: userId, Query: &normalized}, s.ttl.Notes,
		func(ctx context.Context) (*dto.ListNotesResponse, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			repo := uow.NoteRepository()

			filters := []specification.Specification{
				specification.OwnedBy{UserID: userId},
			}
			if strings.TrimSpace(normalized.Search) != "" {
				filters = append(filters, specification.NoteSearchQuery{Query: normalized.Search})
			}
			if len(normalized.Tags) > 0 {
				filters = append(filters, specification.HasAllTags{Tags: normalized.Tags})
			}

			// Total of the full filtered set, not just the page.
			total, err := repo.Count(ctx, filters...)
			if err != nil {
				return nil, err
			}

			page := append(filters,
				specification.OrderBy{Field: normalized.SortBy, Desc: !strings.EqualFold(normalized.SortOrder, "asc")},
				specification.Pagination{Limit: limit, Offset: offset},
			)
			notes, err := repo.FindAll(ctx, page...)
			if err != nil {
				return nil, err
			}

			res := &dto.ListNotesResponse{
				Notes:  make([]*dto.NoteResponse, len(notes)),
				Total:  total,
				Limit:  limit,
				Offset: offset,
			}
			for i, n := range notes {
				res.Notes[i] = toNoteResponse(n)
			}
			return res, nil
		},
		cache.NotesTag(userId),
	)
}

func (s *noteService) ListTags(ctx context.Context, userId uuid.UUID) ([]string, error) {
	type key struct {
		UserId uuid.UUID `json:"user_id"`
	}

	return cache.Cached(ctx, s.queryCache, "notes:tags", key{UserId: userId}, s.ttl.Tags,
		func(ctx context.Context) ([]string, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			return uow.NoteRepository().ListTags(ctx, userId)
		},
		cache.TagsTag(userId),
	)
}

// generateEmbeddingBestEffort returns the vector for the given content
// fields, or nil after logging a warning. Embedding failures are never
// surfaced as operation failure: availability over completeness.
func (s *noteService) generateEmbeddingBestEffort(title, content string, tags []string) []float32 {
	res, err := s.gateway.GenerateNoteEmbedding(title, content, tags)
	if err != nil {
		s.logger.Warn("note_service", "embedding generation failed, persisting without vector", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return res.Values
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, note *entity.Note) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"note_id": note.Id,
			"user_id": note.UserId,
			"title":   note.Title,
		},
		OccurredAt: time.Now(),
	}
	// Notification delivery is auxiliary; log but don't fail the request.
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("note_service", "failed to publish note event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func toNoteResponse(n *entity.Note) *dto.NoteResponse {
	res := &dto.NoteResponse{
		Id:        n.Id,
		Title:     n.Title,
		RawText:   n.RawText,
		Content:   n.Content,
		Summary:   n.Summary,
		Tags:      n.Tags,
		HasVector: n.Embedding != nil,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if n.File != nil {
		res.File = &dto.FileMetaPayload{
			Url:  n.File.Url,
			Name: n.File.Name,
			Type: n.File.Type,
			Size: n.File.Size,
		}
	}
	return res
}
