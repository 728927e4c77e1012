package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

// fakeDB is the shared in-memory state behind the fake stores.  It
// reproduces the contract the MySQL layer documents: owner-scoped
// lookups, pinned-first ordering with id ASC tie-break, idempotent
// link operations and cascading deletes.
type fakeDB struct {
	nextNoteID       uint64
	nextCategoryID   uint64
	nextAttachmentID uint64

	notes       map[uint64]*model.Note
	categories  map[uint64]*model.Category
	attachments map[uint64]*model.Attachment
	links       map[uint64]map[uint64]bool // noteID -> categoryIDs

	clock time.Time

	failAttachmentCreate bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		notes:       make(map[uint64]*model.Note),
		categories:  make(map[uint64]*model.Category),
		attachments: make(map[uint64]*model.Attachment),
		links:       make(map[uint64]map[uint64]bool),
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so consecutive writes get distinct
// timestamps.
func (db *fakeDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// addCategory seeds a category directly, bypassing the service.
// A nil owner makes it global.
func (db *fakeDB) addCategory(name string, owner *uint64) *model.Category {
	db.nextCategoryID++
	now := db.tick()
	c := &model.Category{ID: db.nextCategoryID, Name: name, OwnerID: owner, CreatedAt: now, UpdatedAt: now}
	db.categories[c.ID] = c
	cp := *c
	return &cp
}

func (db *fakeDB) loadNote(n *model.Note) *model.Note {
	cp := *n
	cp.Categories = []model.Category{}
	ids := make([]uint64, 0, len(db.links[n.ID]))
	for cid := range db.links[n.ID] {
		ids = append(ids, cid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, cid := range ids {
		if c, ok := db.categories[cid]; ok {
			cp.Categories = append(cp.Categories, *c)
		}
	}
	return &cp
}

var _ repository.NoteStore = (*fakeNoteStore)(nil)
var _ repository.CategoryStore = (*fakeCategoryStore)(nil)
var _ repository.AttachmentStore = (*fakeAttachmentStore)(nil)
var _ BlobStore = (*memBlobs)(nil)

// ----- NoteStore -----

type fakeNoteStore struct{ db *fakeDB }

func (f *fakeNoteStore) Create(ctx context.Context, note *model.Note, categoryIDs []uint64) error {
	db := f.db
	db.nextNoteID++
	note.ID = db.nextNoteID
	now := db.tick()
	note.CreatedAt = now
	note.UpdatedAt = now
	cp := *note
	db.notes[note.ID] = &cp
	db.links[note.ID] = make(map[uint64]bool)
	for _, cid := range categoryIDs {
		db.links[note.ID][cid] = true
	}
	return nil
}

func (f *fakeNoteStore) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Note, error) {
	n, ok := f.db.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return f.db.loadNote(n), nil
}

func (f *fakeNoteStore) List(ctx context.Context, ownerID uint64, opts repository.NoteListOptions) ([]model.Note, int64, error) {
	db := f.db
	var match []*model.Note
	for _, n := range db.notes {
		if n.OwnerID != ownerID || n.IsArchived != opts.IsArchived {
			continue
		}
		if opts.CategoryID != nil && !db.links[n.ID][*opts.CategoryID] {
			continue
		}
		match = append(match, n)
	}

	asc := opts.SortOrder == repository.SortAsc
	sort.Slice(match, func(i, j int) bool {
		a, b := match[i], match[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		var less, eq bool
		switch opts.SortBy {
		case repository.SortByTitle:
			less, eq = a.Title < b.Title, a.Title == b.Title
		case repository.SortByCreatedAt:
			less, eq = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		default:
			less, eq = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		}
		if !eq {
			if asc {
				return less
			}
			return !less
		}
		return a.ID < b.ID
	})

	total := int64(len(match))
	start := opts.Offset()
	if start > len(match) {
		start = len(match)
	}
	end := start + opts.Limit
	if end > len(match) {
		end = len(match)
	}
	page := make([]model.Note, 0, end-start)
	for _, n := range match[start:end] {
		page = append(page, *db.loadNote(n))
	}
	return page, total, nil
}

func (f *fakeNoteStore) Update(ctx context.Context, note *model.Note) error {
	n, ok := f.db.notes[note.ID]
	if !ok || n.OwnerID != note.OwnerID {
		return repository.ErrNotFound
	}
	n.Title = note.Title
	n.Content = note.Content
	n.IsArchived = note.IsArchived
	n.IsPinned = note.IsPinned
	n.UpdatedAt = f.db.tick()
	return nil
}

func (f *fakeNoteStore) SetArchived(ctx context.Context, id, ownerID uint64, archived bool) error {
	n, ok := f.db.notes[id]
	if !ok || n.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	n.IsArchived = archived
	n.UpdatedAt = f.db.tick()
	return nil
}

func (f *fakeNoteStore) SetPinned(ctx context.Context, id, ownerID uint64, pinned bool) error {
	n, ok := f.db.notes[id]
	if !ok || n.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	n.IsPinned = pinned
	n.UpdatedAt = f.db.tick()
	return nil
}

func (f *fakeNoteStore) Delete(ctx context.Context, id, ownerID uint64) error {
	db := f.db
	n, ok := db.notes[id]
	if !ok || n.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(db.notes, id)
	delete(db.links, id)
	for aid, a := range db.attachments {
		if a.NoteID == id {
			delete(db.attachments, aid)
		}
	}
	return nil
}

func (f *fakeNoteStore) ReplaceCategories(ctx context.Context, noteID uint64, categoryIDs []uint64) error {
	f.db.links[noteID] = make(map[uint64]bool)
	for _, cid := range categoryIDs {
		f.db.links[noteID][cid] = true
	}
	return nil
}

func (f *fakeNoteStore) AddCategory(ctx context.Context, noteID, categoryID uint64) error {
	if f.db.links[noteID] == nil {
		f.db.links[noteID] = make(map[uint64]bool)
	}
	f.db.links[noteID][categoryID] = true
	return nil
}

func (f *fakeNoteStore) RemoveCategory(ctx context.Context, noteID, categoryID uint64) error {
	delete(f.db.links[noteID], categoryID)
	return nil
}

// ----- CategoryStore -----

type fakeCategoryStore struct{ db *fakeDB }

func (f *fakeCategoryStore) ListVisible(ctx context.Context, userID uint64) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.db.categories {
		if c.OwnerID == nil || *c.OwnerID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeCategoryStore) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	c, ok := f.db.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) ResolveForAttach(ctx context.Context, userID, categoryID uint64) (*model.Category, error) {
	c, ok := f.db.categories[categoryID]
	if !ok || (c.OwnerID != nil && *c.OwnerID != userID) {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) ExistsByNameAndOwner(ctx context.Context, ownerID uint64, name string) (bool, error) {
	for _, c := range f.db.categories {
		if c.OwnerID != nil && *c.OwnerID == ownerID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) Create(ctx context.Context, category *model.Category) error {
	db := f.db
	db.nextCategoryID++
	category.ID = db.nextCategoryID
	now := db.tick()
	category.CreatedAt = now
	category.UpdatedAt = now
	cp := *category
	db.categories[category.ID] = &cp
	return nil
}

func (f *fakeCategoryStore) Rename(ctx context.Context, id uint64, name string) error {
	c, ok := f.db.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Name = name
	c.UpdatedAt = f.db.tick()
	return nil
}

func (f *fakeCategoryStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.db.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.categories, id)
	for _, linked := range f.db.links {
		delete(linked, id)
	}
	return nil
}

// ----- AttachmentStore -----

type fakeAttachmentStore struct{ db *fakeDB }

func (f *fakeAttachmentStore) Create(ctx context.Context, attachment *model.Attachment) error {
	db := f.db
	if db.failAttachmentCreate {
		return errors.New("insert failed")
	}
	db.nextAttachmentID++
	attachment.ID = db.nextAttachmentID
	attachment.CreatedAt = db.tick()
	cp := *attachment
	db.attachments[attachment.ID] = &cp
	return nil
}

func (f *fakeAttachmentStore) GetByID(ctx context.Context, id uint64) (*model.Attachment, error) {
	a, ok := f.db.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttachmentStore) ListByNote(ctx context.Context, noteID uint64) ([]model.Attachment, error) {
	var out []model.Attachment
	for _, a := range f.db.attachments {
		if a.NoteID == noteID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeAttachmentStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.db.attachments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.attachments, id)
	return nil
}

// ----- blob store -----

// memBlobs keeps blobs in a map keyed by a generated location.
type memBlobs struct {
	files map[string][]byte
	n     int
}

func newMemBlobs() *memBlobs { return &memBlobs{files: make(map[string][]byte)} }

func (m *memBlobs) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.n++
	loc := fmt.Sprintf("blob-%d%s", m.n, ext)
	m.files[loc] = data
	return loc, nil
}

func (m *memBlobs) Open(location string) (io.ReadCloser, error) {
	data, ok := m.files[location]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Remove(location string) error {
	delete(m.files, location)
	return nil
}

// ----- fixture -----

// fixture wires the real services over the fake stores.
type fixture struct {
	db          *fakeDB
	blobs       *memBlobs
	notes       *NoteService
	categories  *CategoryService
	attachments *AttachmentService
}

func newFixture() *fixture {
	db := newFakeDB()
	blobs := newMemBlobs()
	noteStore := &fakeNoteStore{db: db}
	categoryStore := &fakeCategoryStore{db: db}
	attachmentStore := &fakeAttachmentStore{db: db}

	categories := NewCategoryService(categoryStore)
	return &fixture{
		db:          db,
		blobs:       blobs,
		notes:       NewNoteService(noteStore, attachmentStore, categories, blobs),
		categories:  categories,
		attachments: NewAttachmentService(attachmentStore, noteStore, blobs),
	}
}
