package specification

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"
)

// likeEscaper neutralizes LIKE metacharacters so user queries match as
// plain substrings. Without it a query like "100%" matches every row.
// Backslash is the Postgres default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// NoteSearchQuery filters notes by title or content, case-insensitive.
// Using ILIKE for Postgres.
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(s.Query) + "%"
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}

// KeywordQuery widens the substring match to the summary column as well.
// Used by keyword search, which ranks newest-first rather than by score.
type KeywordQuery struct {
	Query string
}

func (s KeywordQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + escapeLike(s.Query) + "%"
	return db.Where("title ILIKE ? OR content ILIKE ? OR summary ILIKE ?", pattern, pattern, pattern)
}

// HasAllTags keeps notes whose JSONB tags column contains every requested
// tag (Postgres @> containment).
type HasAllTags struct {
	Tags []string
}

func (s HasAllTags) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Tags) == 0 {
		return db
	}
	encoded, err := json.Marshal(s.Tags)
	if err != nil {
		return db
	}
	return db.Where("tags @> ?::jsonb", string(encoded))
}
