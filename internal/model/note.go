package model

import "time"

// Note is a free-text note owned by a single user.  The owner is
// fixed at creation time and is the sole authorization key: every
// query and mutation on a note is scoped by (id, owner).  A note
// may be linked to any number of categories that are visible to
// its owner (global ones or the owner's personal ones).
//
// Fields:
//  ID         – primary key identifier.
//  OwnerID    – owning user; immutable after creation.
//  Title      – short title of the note.
//  Content    – free-text body.
//  IsArchived – archived notes are excluded from active listings.
//  IsPinned   – pinned notes sort before unpinned ones.
//  Categories – categories currently linked to the note.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Note struct {
	ID         uint64     `json:"id"`          // notes.id
	OwnerID    uint64     `json:"owner_id"`    // notes.owner_id
	Title      string     `json:"title"`       // notes.title
	Content    string     `json:"content"`     // notes.content
	IsArchived bool       `json:"is_archived"` // notes.is_archived
	IsPinned   bool       `json:"is_pinned"`   // notes.is_pinned
	Categories []Category `json:"categories"`  // via note_categories join table
	CreatedAt  time.Time  `json:"created_at"`  // notes.created_at
	UpdatedAt  time.Time  `json:"updated_at"`  // notes.updated_at
}
