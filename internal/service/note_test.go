package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/note-vault/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func createNote(t *testing.T, fx *fixture, userID uint64, title string, categoryIDs ...uint64) uint64 {
	t.Helper()
	note, err := fx.notes.Create(context.Background(), userID, CreateNoteInput{
		Title:       title,
		Content:     "content of " + title,
		CategoryIDs: categoryIDs,
	})
	require.NoError(t, err)
	return note.ID
}

func TestCreateNoteDropsUnresolvableCategories(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	global := fx.db.addCategory("Work", nil)
	mine := fx.db.addCategory("Thesis", ptr(uint64(1)))
	theirs := fx.db.addCategory("Secret", ptr(uint64(2)))

	note, err := fx.notes.Create(ctx, 1, CreateNoteInput{
		Title:       "groceries",
		CategoryIDs: []uint64{global.ID, mine.ID, theirs.ID, 999, mine.ID},
	})
	require.NoError(t, err)

	got := make([]uint64, 0, len(note.Categories))
	for _, c := range note.Categories {
		got = append(got, c.ID)
	}
	assert.ElementsMatch(t, []uint64{global.ID, mine.ID}, got,
		"only the global and the user's own category survive")
}

func TestGetNoteOfOtherUserIsNotFound(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	id := createNote(t, fx, 1, "mine")

	_, err := fx.notes.GetByID(ctx, 2, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = fx.notes.GetByID(ctx, 1, id)
	assert.NoError(t, err)
}

func TestListPinnedNotesComeFirst(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	first := createNote(t, fx, 1, "oldest")
	createNote(t, fx, 1, "middle")
	createNote(t, fx, 1, "newest")

	// Pin the oldest note; despite sorting by updated_at DESC it
	// must lead the listing.
	_, err := fx.notes.TogglePin(ctx, 1, first)
	require.NoError(t, err)

	// Touch an unpinned note afterwards so the pinned one is no
	// longer the most recently updated.
	last := createNote(t, fx, 1, "touched")
	_, err = fx.notes.Update(ctx, 1, last, UpdateNoteInput{Content: ptr("edited")})
	require.NoError(t, err)

	page, err := fx.notes.FindActive(ctx, 1, ListNotesQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 4)
	assert.Equal(t, first, page.Data[0].ID)
	assert.True(t, page.Data[0].IsPinned)
	assert.Equal(t, last, page.Data[1].ID, "unpinned notes follow in updated_at order")
}

func TestListPagination(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		createNote(t, fx, 1, fmt.Sprintf("note %02d", i))
	}

	page, err := fx.notes.FindActive(ctx, 1, ListNotesQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.Limit)

	// Past the last page: empty data, same total.
	page, err = fx.notes.FindActive(ctx, 1, ListNotesQuery{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(25), page.Total)
}

func TestListFilterByInvisibleCategory(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	theirs := fx.db.addCategory("Secret", ptr(uint64(2)))
	createNote(t, fx, 1, "a note")

	_, err := fx.notes.FindActive(ctx, 1, ListNotesQuery{CategoryID: &theirs.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound,
		"another user's category is indistinguishable from a missing one")
}

func TestListFilterByCategory(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	work := fx.db.addCategory("Work", nil)
	createNote(t, fx, 1, "tagged", work.ID)
	createNote(t, fx, 1, "untagged")

	page, err := fx.notes.FindActive(ctx, 1, ListNotesQuery{CategoryID: &work.ID})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "tagged", page.Data[0].Title)
}

func TestActiveAndArchivedNeverMix(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	keep := createNote(t, fx, 1, "keep")
	archive := createNote(t, fx, 1, "archive me")

	_, err := fx.notes.ToggleArchive(ctx, 1, archive)
	require.NoError(t, err)

	active, err := fx.notes.FindActive(ctx, 1, ListNotesQuery{})
	require.NoError(t, err)
	require.Len(t, active.Data, 1)
	assert.Equal(t, keep, active.Data[0].ID)

	archived, err := fx.notes.FindArchived(ctx, 1, ListNotesQuery{})
	require.NoError(t, err)
	require.Len(t, archived.Data, 1)
	assert.Equal(t, archive, archived.Data[0].ID)
}

func TestUpdatePartialFields(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	id := createNote(t, fx, 1, "original")

	note, err := fx.notes.Update(ctx, 1, id, UpdateNoteInput{Title: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", note.Title)
	assert.Equal(t, "content of original", note.Content, "untouched fields survive")
}

func TestUpdateCategorySetReplacement(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	work := fx.db.addCategory("Work", nil)
	ideas := fx.db.addCategory("Ideas", nil)
	id := createNote(t, fx, 1, "tagged", work.ID)

	// Absent CategoryIDs leaves the set alone.
	note, err := fx.notes.Update(ctx, 1, id, UpdateNoteInput{Content: ptr("new")})
	require.NoError(t, err)
	require.Len(t, note.Categories, 1)

	// Present CategoryIDs replaces the whole set.
	note, err = fx.notes.Update(ctx, 1, id, UpdateNoteInput{CategoryIDs: ptr([]uint64{ideas.ID})})
	require.NoError(t, err)
	require.Len(t, note.Categories, 1)
	assert.Equal(t, ideas.ID, note.Categories[0].ID)

	// An explicitly empty list clears it.
	note, err = fx.notes.Update(ctx, 1, id, UpdateNoteInput{CategoryIDs: ptr([]uint64{})})
	require.NoError(t, err)
	assert.Empty(t, note.Categories)
}

func TestToggleRoundTrip(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	id := createNote(t, fx, 1, "note")

	note, err := fx.notes.ToggleArchive(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, note.IsArchived)

	note, err = fx.notes.ToggleArchive(ctx, 1, id)
	require.NoError(t, err)
	assert.False(t, note.IsArchived)

	note, err = fx.notes.TogglePin(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, note.IsPinned)

	note, err = fx.notes.TogglePin(ctx, 1, id)
	require.NoError(t, err)
	assert.False(t, note.IsPinned)
}

func TestRemoveDeletesAttachmentsAndBlobs(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	id := createNote(t, fx, 1, "with files")

	for i := 0; i < 2; i++ {
		_, err := fx.attachments.Create(ctx, 1, id, UploadInput{
			Filename: fmt.Sprintf("f%d.txt", i),
			MimeType: "text/plain",
			Size:     4,
			Content:  strings.NewReader("data"),
		})
		require.NoError(t, err)
	}
	require.Len(t, fx.blobs.files, 2)

	note, count, err := fx.notes.Remove(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "with files", note.Title)
	assert.Equal(t, 2, count)
	assert.Empty(t, fx.blobs.files, "stored blobs go with the note")
	assert.Empty(t, fx.db.attachments)

	_, err = fx.notes.GetByID(ctx, 1, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveOtherUsersNote(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	id := createNote(t, fx, 1, "mine")

	_, _, err := fx.notes.Remove(ctx, 2, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = fx.notes.GetByID(ctx, 1, id)
	assert.NoError(t, err, "the note survives the failed delete")
}

func TestCategoryAssociationIdempotent(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	work := fx.db.addCategory("Work", nil)
	id := createNote(t, fx, 1, "note")

	note, err := fx.notes.AddCategory(ctx, 1, id, work.ID)
	require.NoError(t, err)
	require.Len(t, note.Categories, 1)

	// A second attach keeps the set unchanged.
	note, err = fx.notes.AddCategory(ctx, 1, id, work.ID)
	require.NoError(t, err)
	require.Len(t, note.Categories, 1)

	note, err = fx.notes.RemoveCategory(ctx, 1, id, work.ID)
	require.NoError(t, err)
	assert.Empty(t, note.Categories)

	// Detaching an absent association is still a success.
	note, err = fx.notes.RemoveCategory(ctx, 1, id, work.ID)
	require.NoError(t, err)
	assert.Empty(t, note.Categories)
}

func TestAddCategoryInvisible(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	theirs := fx.db.addCategory("Secret", ptr(uint64(2)))
	id := createNote(t, fx, 1, "note")

	_, err := fx.notes.AddCategory(ctx, 1, id, theirs.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNormalizeListQuery(t *testing.T) {
	cases := []struct {
		name string
		in   ListNotesQuery
		want repository.NoteListOptions
	}{
		{
			name: "defaults",
			in:   ListNotesQuery{},
			want: repository.NoteListOptions{Page: 1, Limit: DefaultPageLimit, SortBy: repository.SortByUpdatedAt, SortOrder: repository.SortDesc},
		},
		{
			name: "limit clamped to max",
			in:   ListNotesQuery{Page: 2, Limit: 500},
			want: repository.NoteListOptions{Page: 2, Limit: MaxPageLimit, SortBy: repository.SortByUpdatedAt, SortOrder: repository.SortDesc},
		},
		{
			name: "unknown sort token falls back",
			in:   ListNotesQuery{SortBy: "owner_id", SortOrder: "sideways"},
			want: repository.NoteListOptions{Page: 1, Limit: DefaultPageLimit, SortBy: repository.SortByUpdatedAt, SortOrder: repository.SortDesc},
		},
		{
			name: "lowercase order is canonicalized",
			in:   ListNotesQuery{SortOrder: "asc"},
			want: repository.NoteListOptions{Page: 1, Limit: DefaultPageLimit, SortBy: repository.SortByUpdatedAt, SortOrder: repository.SortAsc},
		},
		{
			name: "title ascending passes through",
			in:   ListNotesQuery{SortBy: repository.SortByTitle, SortOrder: repository.SortAsc},
			want: repository.NoteListOptions{Page: 1, Limit: DefaultPageLimit, SortBy: repository.SortByTitle, SortOrder: repository.SortAsc},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeListQuery(tc.in))
		})
	}
}
