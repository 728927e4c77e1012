package service

import (
	"context"
	"log"
	"strings"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

// Paging bounds for note listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// CategoryResolver is the slice of the category service the note
// service depends on: deciding whether a category id is usable by
// a user.
type CategoryResolver interface {
	ResolveForAttach(ctx context.Context, userID, categoryID uint64) (*model.Category, error)
}

// NoteService owns every note operation.  All of them authorize
// through an owner-scoped lookup first, so a note belonging to
// another user behaves exactly like a missing one.
type NoteService struct {
	notes       repository.NoteStore
	attachments repository.AttachmentStore
	resolver    CategoryResolver
	blobs       BlobStore
}

// NewNoteService returns a NoteService over the given stores.
func NewNoteService(notes repository.NoteStore, attachments repository.AttachmentStore, resolver CategoryResolver, blobs BlobStore) *NoteService {
	return &NoteService{notes: notes, attachments: attachments, resolver: resolver, blobs: blobs}
}

// CreateNoteInput carries the fields for a new note.
type CreateNoteInput struct {
	Title       string
	Content     string
	CategoryIDs []uint64
}

// UpdateNoteInput carries a partial note update.  Nil fields are
// left untouched; a non-nil CategoryIDs (even empty) replaces the
// full category set.
type UpdateNoteInput struct {
	Title       *string
	Content     *string
	IsArchived  *bool
	IsPinned    *bool
	CategoryIDs *[]uint64
}

// ListNotesQuery carries the filters, sort and page window of a
// listing request.  Zero values fall back to first page, default
// limit, updated_at descending.
type ListNotesQuery struct {
	CategoryID *uint64
	IsArchived bool
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// NotePage is one page of a note listing together with the total
// number of matching notes before paging.
type NotePage struct {
	Data  []model.Note `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// Create stores a new note for the user.  Category ids are
// resolved through the visibility rule and unresolvable ones are
// silently dropped: the note's category set is exactly the
// resolvable subset.
func (s *NoteService) Create(ctx context.Context, userID uint64, in CreateNoteInput) (*model.Note, error) {
	ids, err := s.resolveCategoryIDs(ctx, userID, in.CategoryIDs)
	if err != nil {
		return nil, err
	}
	note := &model.Note{OwnerID: userID, Title: in.Title, Content: in.Content}
	if err := s.notes.Create(ctx, note, ids); err != nil {
		return nil, err
	}
	return s.notes.GetByIDAndOwner(ctx, note.ID, userID)
}

// GetByID returns the user's note or ErrNotFound; notes of other
// users are indistinguishable from missing ones.
func (s *NoteService) GetByID(ctx context.Context, userID, id uint64) (*model.Note, error) {
	return s.notes.GetByIDAndOwner(ctx, id, userID)
}

// List returns a filtered, sorted page of the user's notes.  When
// a category filter is given it passes through the same
// visibility rule as attach, so a filter on an invisible category
// is ErrNotFound.
func (s *NoteService) List(ctx context.Context, userID uint64, q ListNotesQuery) (*NotePage, error) {
	if q.CategoryID != nil {
		if _, err := s.resolver.ResolveForAttach(ctx, userID, *q.CategoryID); err != nil {
			return nil, err
		}
	}
	opts := normalizeListQuery(q)
	data, total, err := s.notes.List(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return &NotePage{Data: data, Total: total, Page: opts.Page, Limit: opts.Limit}, nil
}

// FindActive lists only non-archived notes.
func (s *NoteService) FindActive(ctx context.Context, userID uint64, q ListNotesQuery) (*NotePage, error) {
	q.IsArchived = false
	return s.List(ctx, userID, q)
}

// FindArchived lists only archived notes.
func (s *NoteService) FindArchived(ctx context.Context, userID uint64, q ListNotesQuery) (*NotePage, error) {
	q.IsArchived = true
	return s.List(ctx, userID, q)
}

// Update applies a partial update to an owned note.  When
// CategoryIDs is present the full category set is replaced by the
// resolvable subset of the provided ids.
func (s *NoteService) Update(ctx context.Context, userID, id uint64, in UpdateNoteInput) (*model.Note, error) {
	note, err := s.notes.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		note.Title = *in.Title
	}
	if in.Content != nil {
		note.Content = *in.Content
	}
	if in.IsArchived != nil {
		note.IsArchived = *in.IsArchived
	}
	if in.IsPinned != nil {
		note.IsPinned = *in.IsPinned
	}
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	if in.CategoryIDs != nil {
		ids, err := s.resolveCategoryIDs(ctx, userID, *in.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.notes.ReplaceCategories(ctx, id, ids); err != nil {
			return nil, err
		}
	}
	return s.notes.GetByIDAndOwner(ctx, id, userID)
}

// ToggleArchive flips the archived flag and returns the new
// state.  The flip is a read followed by a single owner-scoped
// write; two concurrent toggles on the same note may race.
func (s *NoteService) ToggleArchive(ctx context.Context, userID, id uint64) (*model.Note, error) {
	note, err := s.notes.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.notes.SetArchived(ctx, id, userID, !note.IsArchived); err != nil {
		return nil, err
	}
	return s.notes.GetByIDAndOwner(ctx, id, userID)
}

// TogglePin flips the pinned flag and returns the new state.
// Same read-then-write caveat as ToggleArchive.
func (s *NoteService) TogglePin(ctx context.Context, userID, id uint64) (*model.Note, error) {
	note, err := s.notes.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.notes.SetPinned(ctx, id, userID, !note.IsPinned); err != nil {
		return nil, err
	}
	return s.notes.GetByIDAndOwner(ctx, id, userID)
}

// Remove deletes an owned note.  The delete itself is one
// owner-scoped statement; attachment metadata goes with it via
// the cascade and the stored blobs are removed best-effort
// afterwards.  Returns the deleted note and how many attachments
// went with it.
func (s *NoteService) Remove(ctx context.Context, userID, id uint64) (*model.Note, int, error) {
	note, err := s.notes.GetByIDAndOwner(ctx, id, userID)
	if err != nil {
		return nil, 0, err
	}
	attachments, err := s.attachments.ListByNote(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if err := s.notes.Delete(ctx, id, userID); err != nil {
		return nil, 0, err
	}
	for _, a := range attachments {
		if err := s.blobs.Remove(a.StoredPath); err != nil {
			log.Printf("blob: removing %s for deleted note %d: %v", a.StoredPath, id, err)
		}
	}
	return note, len(attachments), nil
}

// AddCategory links a visible category to an owned note.  Linking
// an already linked category is a no-op.
func (s *NoteService) AddCategory(ctx context.Context, userID, noteID, categoryID uint64) (*model.Note, error) {
	if _, err := s.notes.GetByIDAndOwner(ctx, noteID, userID); err != nil {
		return nil, err
	}
	if _, err := s.resolver.ResolveForAttach(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	if err := s.notes.AddCategory(ctx, noteID, categoryID); err != nil {
		return nil, err
	}
	return s.notes.GetByIDAndOwner(ctx, noteID, userID)
}

// RemoveCategory unlinks a category from an owned note.  Removing
// an absent association is a no-op, not an error.
func (s *NoteService) RemoveCategory(ctx context.Context, userID, noteID, categoryID uint64) (*model.Note, error) {
	if _, err := s.notes.GetByIDAndOwner(ctx, noteID, userID); err != nil {
		return nil, err
	}
	if err := s.notes.RemoveCategory(ctx, noteID, categoryID); err != nil {
		return nil, err
	}
	return s.notes.GetByIDAndOwner(ctx, noteID, userID)
}

// resolveCategoryIDs maps the requested ids onto the subset the
// user may actually attach, dropping duplicates and invisible ids
// silently.
func (s *NoteService) resolveCategoryIDs(ctx context.Context, userID uint64, categoryIDs []uint64) ([]uint64, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	seen := make(map[uint64]bool, len(categoryIDs))
	resolved := make([]uint64, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		_, err := s.resolver.ResolveForAttach(ctx, userID, cid)
		if err == repository.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, cid)
	}
	return resolved, nil
}

// normalizeListQuery clamps paging and canonicalizes the sort
// tokens before they reach the store.
func normalizeListQuery(q ListNotesQuery) repository.NoteListOptions {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	sortBy := q.SortBy
	switch sortBy {
	case repository.SortByUpdatedAt, repository.SortByCreatedAt, repository.SortByTitle:
	default:
		sortBy = repository.SortByUpdatedAt
	}
	order := repository.SortDesc
	if strings.EqualFold(q.SortOrder, repository.SortAsc) {
		order = repository.SortAsc
	}
	return repository.NoteListOptions{
		CategoryID: q.CategoryID,
		IsArchived: q.IsArchived,
		Page:       page,
		Limit:      limit,
		SortBy:     sortBy,
		SortOrder:  order,
	}
}
