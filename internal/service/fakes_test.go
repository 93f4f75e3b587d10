package service

import (
	"context"
	"sort"

	"github.com/on-par/vemorable-sub000/internal/apperr"
	"github.com/on-par/vemorable-sub000/internal/cache"
	"github.com/on-par/vemorable-sub000/internal/entity"
	"github.com/on-par/vemorable-sub000/internal/pkg/logger"
	"github.com/on-par/vemorable-sub000/internal/repository/contract"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"
	"github.com/on-par/vemorable-sub000/internal/repository/unitofwork"
	"github.com/on-par/vemorable-sub000/pkg/embedding"

	"github.com/google/uuid"
)

// fakeEmbeddingProvider stands in for the remote embedding API.
type fakeEmbeddingProvider struct {
	vector   []float32
	err      error
	calls    int
	lastText string
}

func (f *fakeEmbeddingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

// fakeNoteRepo is an in-memory NoteRepository. It interprets the same
// specification types the GORM implementation does, minus SQL.
type fakeNoteRepo struct {
	notes map[uuid.UUID]*entity.Note

	failCreate error
	failUpdate error

	// vector search stubs
	scored       []*contract.ScoredNote
	searchErr    error
	similarCalls int
	hybridCalls  int
	lastLimit    int
	lastThresh   float64
	lastOwner    uuid.UUID
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*entity.Note)}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	stored := *note
	r.notes[note.Id] = &stored
	return nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.notes[note.Id]; !ok {
		return apperr.NewNotFound("note", note.Id.String())
	}
	stored := *note
	r.notes[note.Id] = &stored
	return nil
}

func (r *fakeNoteRepo) SoftDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	note, ok := r.notes[id]
	if !ok || note.UserId != userId || note.IsDeleted {
		return 0, nil
	}
	note.IsDeleted = true
	return 1, nil
}

func (r *fakeNoteRepo) HardDelete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	note, ok := r.notes[id]
	if !ok || note.UserId != userId {
		return 0, nil
	}
	delete(r.notes, id)
	return 1, nil
}

type parsedSpecs struct {
	id          *uuid.UUID
	owner       *uuid.UUID
	withDeleted bool
	limit       int
	offset      int
	keyword     string
}

func parseSpecs(specs []specification.Specification) parsedSpecs {
	p := parsedSpecs{limit: -1}
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			p.id = &id
		case specification.OwnedBy:
			owner := spec.UserID
			p.owner = &owner
		case specification.WithDeleted:
			p.withDeleted = true
		case specification.Pagination:
			p.limit = spec.Limit
			p.offset = spec.Offset
		case specification.KeywordQuery:
			p.keyword = spec.Query
		case specification.NoteSearchQuery:
			p.keyword = spec.Query
		}
	}
	return p
}

func (r *fakeNoteRepo) matches(note *entity.Note, p parsedSpecs) bool {
	if note.IsDeleted && !p.withDeleted {
		return false
	}
	if p.id != nil && note.Id != *p.id {
		return false
	}
	if p.owner != nil && note.UserId != *p.owner {
		return false
	}
	if p.keyword != "" && !containsFold(note.Title, p.keyword) &&
		!containsFold(note.Content, p.keyword) &&
		!(note.Summary != nil && containsFold(*note.Summary, p.keyword)) {
		return false
	}
	return true
}

func (r *fakeNoteRepo) collect(p parsedSpecs) []*entity.Note {
	var out []*entity.Note
	for _, note := range r.notes {
		if r.matches(note, p) {
			copied := *note
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	p := parseSpecs(specs)
	for _, note := range r.notes {
		if r.matches(note, p) {
			copied := *note
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	p := parseSpecs(specs)
	out := r.collect(p)
	if p.offset > 0 {
		if p.offset >= len(out) {
			return nil, nil
		}
		out = out[p.offset:]
	}
	if p.limit >= 0 && p.limit < len(out) {
		out = out[:p.limit]
	}
	return out, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	p := parseSpecs(specs)
	p.limit = -1
	p.offset = 0
	return int64(len(r.collect(p))), nil
}

func (r *fakeNoteRepo) ListTags(ctx context.Context, userId uuid.UUID) ([]string, error) {
	seen := make(map[string]struct{})
	for _, note := range r.notes {
		if note.UserId != userId || note.IsDeleted {
			continue
		}
		for _, tag := range note.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *fakeNoteRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	r.similarCalls++
	r.lastLimit = limit
	r.lastThresh = threshold
	r.lastOwner = userId
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.scored, nil
}

func (r *fakeNoteRepo) SearchHybrid(ctx context.Context, query string, emb []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	r.hybridCalls++
	r.lastLimit = limit
	r.lastThresh = threshold
	r.lastOwner = userId
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.scored, nil
}

func containsFold(haystack, needle string) bool {
	h := []rune(haystack)
	n := []rune(needle)
	if len(n) == 0 {
		return true
	}
	lower := func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
outer:
	for i := 0; i+len(n) <= len(h); i++ {
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				continue outer
			}
		}
		return true
	}
	return false
}

type fakeUow struct {
	repo *fakeNoteRepo
}

func (u *fakeUow) Begin(ctx context.Context) error         { return nil }
func (u *fakeUow) Commit() error                           { return nil }
func (u *fakeUow) Rollback() error                         { return nil }
func (u *fakeUow) NoteRepository() contract.NoteRepository { return u.repo }

type fakeFactory struct {
	repo *fakeNoteRepo
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{repo: f.repo}
}

// fixture bundles a fully wired service graph around in-memory fakes.
type fixture struct {
	repo     *fakeNoteRepo
	provider *fakeEmbeddingProvider
	manager  *cache.CacheManager
	notes    INoteService
	search   ISearchService
}

func newFixture() *fixture {
	repo := newFakeNoteRepo()
	provider := &fakeEmbeddingProvider{vector: []float32{0.1, 0.2, 0.3}}
	gateway := embedding.NewGateway(provider, "fake")
	log := logger.NewNopLogger()

	manager := cache.NewCacheManager(0, 0)
	queryCache := cache.NewQueryCache(manager, log)
	invalidator := cache.NewInvalidator(manager, log)
	factory := &fakeFactory{repo: repo}

	return &fixture{
		repo:     repo,
		provider: provider,
		manager:  manager,
		notes:    NewNoteService(factory, gateway, queryCache, invalidator, nil, log, NoteCacheTTL{}),
		search:   NewSearchService(factory, gateway, queryCache, log, 0),
	}
}
