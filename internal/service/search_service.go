package service

import (
	"context"
	"strings"
	"time"

	"github.com/on-par/vemorable-sub000/internal/apperr"
	"github.com/on-par/vemorable-sub000/internal/cache"
	"github.com/on-par/vemorable-sub000/internal/dto"
	"github.com/on-par/vemorable-sub000/internal/pkg/logger"
	"github.com/on-par/vemorable-sub000/internal/repository/contract"
	"github.com/on-par/vemorable-sub000/internal/repository/specification"
	"github.com/on-par/vemorable-sub000/internal/repository/unitofwork"
	"github.com/on-par/vemorable-sub000/pkg/embedding"

	"github.com/google/uuid"
)

const (
	defaultSemanticThreshold = 0.5
	// Hybrid runs looser than pure semantic because keyword relevance
	// can compensate for a weaker vector match.
	defaultHybridThreshold = 0.6
	defaultSearchCount     = 10
	maxSearchCount         = 50
)

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    *embedding.Gateway
	queryCache *cache.QueryCache
	logger     logger.ILogger
	searchTTL  time.Duration
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	queryCache *cache.QueryCache,
	log logger.ILogger,
	searchTTL time.Duration,
) ISearchService {
	if searchTTL <= 0 {
		searchTTL = time.Minute
	}
	return &searchService{
		uowFactory: uowFactory,
		gateway:    gateway,
		queryCache: queryCache,
		logger:     log,
		searchTTL:  searchTTL,
	}
}

// Search dispatches to one retrieval mode. The query embedding is
// computed at most once per request and reused by whichever vector mode
// runs. A failed vector search propagates; it never silently degrades
// to keyword mode.
func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	if userId == uuid.Nil {
		return nil, apperr.NewValidation("owner is required")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperr.NewValidation("search query is required")
	}

	mode := req.Mode
	if mode == "" {
		mode = dto.SearchModeSemantic
	}

	switch mode {
	case dto.SearchModeKeyword:
		return s.keyword(ctx, userId, req)
	case dto.SearchModeSemantic, dto.SearchModeHybrid:
		return s.vectorSearch(ctx, userId, mode, req)
	default:
		return nil, apperr.NewValidation("unknown search mode %q", mode)
	}
}

func (s *searchService) vectorSearch(ctx context.Context, userId uuid.UUID, mode string, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	threshold := defaultSemanticThreshold
	if mode == dto.SearchModeHybrid {
		threshold = defaultHybridThreshold
	}
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	threshold = clampThreshold(threshold)
	count := clampCount(req.Count)

	type key struct {
		UserId    uuid.UUID `json:"user_id"`
		Mode      string    `json:"mode"`
		Query     string    `json:"query"`
		Threshold float64   `json:"threshold"`
		Count     int       `json:"count"`
	}
	cacheKey := key{UserId: userId, Mode: mode, Query: req.Query, Threshold: threshold, Count: count}

	return cache.Cached(ctx, s.queryCache, "search:"+mode, cacheKey, s.searchTTL,
		func(ctx context.Context) (*dto.SearchResponse, error) {
			// One provider call per request, shared by either mode.
			queryEmbedding, err := s.gateway.GenerateQueryEmbedding(req.Query)
			if err != nil {
				return nil, err
			}

			uow := s.uowFactory.NewUnitOfWork(ctx)
			repo := uow.NoteRepository()

			var scored []*contract.ScoredNote
			if mode == dto.SearchModeHybrid {
				scored, err = repo.SearchHybrid(ctx, req.Query, queryEmbedding.Values, count, userId, threshold)
			} else {
				scored, err = repo.SearchSimilarWithScore(ctx, queryEmbedding.Values, count, userId, threshold)
			}
			if err != nil {
				return nil, err
			}

			res := &dto.SearchResponse{
				Mode:    mode,
				Results: make([]*dto.SearchResult, len(scored)),
			}
			for i, sn := range scored {
				sim := sn.Similarity
				res.Results[i] = &dto.SearchResult{
					NoteResponse: *toNoteResponse(sn.Note),
					Similarity:   &sim,
				}
			}
			return res, nil
		},
		cache.SearchTag(userId),
	)
}

func (s *searchService) keyword(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	type key struct {
		UserId uuid.UUID `json:"user_id"`
		Query  string    `json:"query"`
		Limit  int       `json:"limit"`
		Offset int       `json:"offset"`
	}
	cacheKey := key{UserId: userId, Query: req.Query, Limit: limit, Offset: offset}

	return cache.Cached(ctx, s.queryCache, "search:keyword", cacheKey, s.searchTTL,
		func(ctx context.Context) (*dto.SearchResponse, error) {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			repo := uow.NoteRepository()

			filters := []specification.Specification{
				specification.OwnedBy{UserID: userId},
				specification.KeywordQuery{Query: req.Query},
			}

			total, err := repo.Count(ctx, filters...)
			if err != nil {
				return nil, err
			}

			page := append(filters,
				specification.OrderBy{Field: "created_at", Desc: true},
				specification.Pagination{Limit: limit, Offset: offset},
			)
			notes, err := repo.FindAll(ctx, page...)
			if err != nil {
				return nil, err
			}

			res := &dto.SearchResponse{
				Mode:    dto.SearchModeKeyword,
				Results: make([]*dto.SearchResult, len(notes)),
				Total:   &total,
			}
			for i, n := range notes {
				// Keyword results carry no similarity score.
				res.Results[i] = &dto.SearchResult{NoteResponse: *toNoteResponse(n)}
			}
			return res, nil
		},
		cache.SearchTag(userId),
	)
}

func clampThreshold(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func clampCount(c int) int {
	if c <= 0 {
		return defaultSearchCount
	}
	if c > maxSearchCount {
		return maxSearchCount
	}
	return c
}
