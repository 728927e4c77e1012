package mysql

import "github.com/iliyamo/note-vault/internal/repository"

// noteSortColumns whitelists the API sort tokens and maps them to
// column names.  Anything outside the map falls back to
// updated_at so caller input can never reach the SQL text.
var noteSortColumns = map[string]string{
	repository.SortByUpdatedAt: "n.updated_at",
	repository.SortByCreatedAt: "n.created_at",
	repository.SortByTitle:     "n.title",
}

// buildNoteListQuery assembles the COUNT and page queries for a
// note listing.  Both share the same WHERE clause; the page query
// adds ordering and the LIMIT/OFFSET window.  Pinned notes always
// sort first regardless of the requested order, and id ASC breaks
// ties so rows never move between pages.
func buildNoteListQuery(ownerID uint64, opts repository.NoteListOptions) (countSQL, dataSQL string, countArgs, dataArgs []any) {
	where := "n.owner_id = ? AND n.is_archived = ?"
	args := []any{ownerID, opts.IsArchived}

	if opts.CategoryID != nil {
		where += " AND EXISTS (SELECT 1 FROM note_categories nc WHERE nc.note_id = n.id AND nc.category_id = ?)"
		args = append(args, *opts.CategoryID)
	}

	countSQL = "SELECT COUNT(*) FROM notes n WHERE " + where
	countArgs = args

	col, ok := noteSortColumns[opts.SortBy]
	if !ok {
		col = "n.updated_at"
	}
	dir := "DESC"
	if opts.SortOrder == repository.SortAsc {
		dir = "ASC"
	}

	dataSQL = "SELECT n.id, n.owner_id, n.title, n.content, n.is_archived, n.is_pinned, n.created_at, n.updated_at" +
		" FROM notes n WHERE " + where +
		" ORDER BY n.is_pinned DESC, " + col + " " + dir + ", n.id ASC" +
		" LIMIT ? OFFSET ?"
	dataArgs = append(append([]any{}, args...), opts.Limit, opts.Offset())
	return countSQL, dataSQL, countArgs, dataArgs
}
