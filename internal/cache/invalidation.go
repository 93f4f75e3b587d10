package cache

import (
	"github.com/on-par/vemorable-sub000/internal/pkg/logger"

	"github.com/google/uuid"
)

// MutationScope lets the caller choose whether a mutation also clears
// the search and tag-list groups. Not hard-coded: a title-only edit may
// legitimately skip both.
type MutationScope struct {
	Search bool
	Tags   bool
}

// Invalidator ties note mutations to cache tag invalidation. It runs
// synchronously inside the mutating call, before it returns, which is
// what guarantees read-after-write consistency within the process.
type Invalidator struct {
	manager *CacheManager
	logger  logger.ILogger
}

func NewInvalidator(manager *CacheManager, log logger.ILogger) *Invalidator {
	return &Invalidator{
		manager: manager,
		logger:  log,
	}
}

// NoteMutated invalidates the cache groups affected by a successful
// mutation of one of userId's notes. Pass uuid.Nil for noteId when the
// id is not known (e.g. bulk operations).
func (i *Invalidator) NoteMutated(userId uuid.UUID, noteId uuid.UUID, scope MutationScope) {
	removed := i.manager.InvalidateTag(NotesTag(userId))

	if noteId != uuid.Nil {
		removed += i.manager.InvalidateTag(NoteTag(userId, noteId))
	}
	if scope.Search {
		removed += i.manager.InvalidateTag(SearchTag(userId))
	}
	if scope.Tags {
		removed += i.manager.InvalidateTag(TagsTag(userId))
	}

	i.logger.Debug("cache", "invalidated note caches", map[string]interface{}{
		"user_id": userId.String(),
		"note_id": noteId.String(),
		"entries": removed,
	})
}
