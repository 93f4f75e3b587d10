package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// TagKind enumerates the logical cache groups a mutation can touch.
type TagKind string

const (
	TagKindNotes  TagKind = "notes"
	TagKindNote   TagKind = "note"
	TagKindSearch TagKind = "search"
	TagKindTags   TagKind = "tags"
)

// Tag is a typed invalidation group identifier. Typed tags replace
// string-glob invalidation on the mutation path, which keeps malformed
// patterns out of the hot path entirely.
type Tag struct {
	Kind   TagKind
	Owner  uuid.UUID
	NoteId uuid.UUID // only meaningful for TagKindNote
}

func NotesTag(owner uuid.UUID) Tag {
	return Tag{Kind: TagKindNotes, Owner: owner}
}

func NoteTag(owner, noteId uuid.UUID) Tag {
	return Tag{Kind: TagKindNote, Owner: owner, NoteId: noteId}
}

func SearchTag(owner uuid.UUID) Tag {
	return Tag{Kind: TagKindSearch, Owner: owner}
}

func TagsTag(owner uuid.UUID) Tag {
	return Tag{Kind: TagKindTags, Owner: owner}
}

// Key renders the canonical tag name, e.g. "notes:<owner>" or
// "note:<owner>:<id>".
func (t Tag) Key() string {
	if t.Kind == TagKindNote {
		return fmt.Sprintf("%s:%s:%s", t.Kind, t.Owner, t.NoteId)
	}
	return fmt.Sprintf("%s:%s", t.Kind, t.Owner)
}
