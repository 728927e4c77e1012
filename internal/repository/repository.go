package repository

import (
	"context"
	"time"

	"github.com/iliyamo/note-vault/internal/model"
)

// Sort field tokens accepted by NoteListOptions.SortBy.  They are
// API-level names; the MySQL implementation maps them onto column
// names through a whitelist so no caller input reaches the SQL
// text directly.
const (
	SortByUpdatedAt = "updatedAt"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

// Sort directions accepted by NoteListOptions.SortOrder.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// NoteListOptions carries the filters, sort and page window for a
// note listing.  CategoryID must already be resolved through the
// category visibility rule before it reaches the store; the store
// only filters by it.  IsArchived is always effective: archived
// and active notes never mix in one result.
type NoteListOptions struct {
	CategoryID *uint64
	IsArchived bool
	Page       int    // 1-based
	Limit      int    // rows per page
	SortBy     string // one of the SortBy* tokens
	SortOrder  string // SortAsc or SortDesc
}

// Offset returns the row offset of the requested page.
func (o NoteListOptions) Offset() int { return (o.Page - 1) * o.Limit }

// NoteStore persists notes and their category associations.  All
// read and write operations that take an ownerID are scoped to it
// in the statement itself, so a mismatched owner behaves exactly
// like a missing row (ErrNotFound).
type NoteStore interface {
	// Create inserts the note and links the given category ids in
	// one transaction, populating ID and timestamps on the note.
	Create(ctx context.Context, note *model.Note, categoryIDs []uint64) error
	// GetByIDAndOwner returns the note with its categories loaded,
	// or ErrNotFound when it does not exist or belongs to someone
	// else.
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Note, error)
	// List returns one page of the owner's notes plus the total
	// number of matching rows before paging.
	List(ctx context.Context, ownerID uint64, opts NoteListOptions) ([]model.Note, int64, error)
	// Update writes title, content and both flags, advancing
	// updated_at.  ErrNotFound when (id, owner) matches nothing.
	Update(ctx context.Context, note *model.Note) error
	// SetArchived / SetPinned write a single flag scoped by owner.
	SetArchived(ctx context.Context, id, ownerID uint64, archived bool) error
	SetPinned(ctx context.Context, id, ownerID uint64, pinned bool) error
	// Delete removes the note in a single owner-scoped statement;
	// attachments and category links go with it.
	Delete(ctx context.Context, id, ownerID uint64) error
	// ReplaceCategories swaps the full category set of a note.
	ReplaceCategories(ctx context.Context, noteID uint64, categoryIDs []uint64) error
	// AddCategory links a category; linking an already linked
	// category is a no-op.  RemoveCategory is the inverse and is
	// likewise a no-op when the link is absent.
	AddCategory(ctx context.Context, noteID, categoryID uint64) error
	RemoveCategory(ctx context.Context, noteID, categoryID uint64) error
}

// CategoryStore persists categories.  Visibility decisions live in
// the service layer; the store exposes the primitive lookups they
// are built from.
type CategoryStore interface {
	// ListVisible returns all global categories plus the user's
	// personal ones, ordered by name then id.
	ListVisible(ctx context.Context, userID uint64) ([]model.Category, error)
	// GetByID returns a category regardless of ownership, or
	// ErrNotFound.
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	// ResolveForAttach returns the category only when it is global
	// or personal to userID; otherwise ErrNotFound.
	ResolveForAttach(ctx context.Context, userID, categoryID uint64) (*model.Category, error)
	// ExistsByNameAndOwner reports whether the user already has a
	// personal category with the given name.
	ExistsByNameAndOwner(ctx context.Context, ownerID uint64, name string) (bool, error)
	// Create inserts a personal category, returning ErrConflict on
	// a (name, owner) duplicate.
	Create(ctx context.Context, category *model.Category) error
	// Rename updates the name, returning ErrConflict on a
	// duplicate and ErrNotFound when the id matches nothing.
	Rename(ctx context.Context, id uint64, name string) error
	// Delete removes the category; note links are removed with it
	// while the notes themselves survive.
	Delete(ctx context.Context, id uint64) error
}

// AttachmentStore persists attachment metadata.  It is not
// ownership-aware: callers authorize through the parent note
// before touching it.
type AttachmentStore interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	GetByID(ctx context.Context, id uint64) (*model.Attachment, error)
	// ListByNote returns the note's attachments newest first.
	ListByNote(ctx context.Context, noteID uint64) ([]model.Attachment, error)
	Delete(ctx context.Context, id uint64) error
}

// UserStore persists user accounts.
type UserStore interface {
	// Create hashes the password with the given bcrypt cost and
	// inserts the user, returning the new id.  ErrConflict when
	// the username is taken.
	Create(ctx context.Context, username, password string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore persists refresh tokens as SHA-256 hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
