package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

var _ repository.NoteStore = (*NoteRepo)(nil)

// NoteRepo persists notes in the `notes` table and their category
// links in `note_categories`.  Every owner-scoped statement puts
// the owner in the WHERE clause, so a note that belongs to
// another user is indistinguishable from a missing one.
type NoteRepo struct{ db *sql.DB }

// NewNoteRepo returns a NoteRepo bound to the given database.
func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

// Create inserts the note and links the given category ids within
// a single transaction.  ID and timestamps are populated on the
// provided note.  The category ids must already have passed the
// visibility rule.
func (r *NoteRepo) Create(ctx context.Context, note *model.Note, categoryIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: beginning note create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO notes (owner_id, title, content, is_archived, is_pinned) VALUES (?,?,?,?,?)",
		note.OwnerID, note.Title, note.Content, note.IsArchived, note.IsPinned)
	if err != nil {
		return fmt.Errorf("mysql: creating note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	note.ID = uint64(id)

	if err := insertNoteCategoriesTx(ctx, tx, note.ID, categoryIDs); err != nil {
		return err
	}

	// Query back the row to populate the DB-generated timestamps.
	err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM notes WHERE id=?", note.ID).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("mysql: reading back note %d: %w", note.ID, err)
	}
	return tx.Commit()
}

// insertNoteCategoriesTx bulk-inserts note/category links inside
// an open transaction.  INSERT IGNORE keeps the operation
// idempotent when an id appears twice.  An empty slice is a no-op.
func insertNoteCategoriesTx(ctx context.Context, tx *sql.Tx, noteID uint64, categoryIDs []uint64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	query := "INSERT IGNORE INTO note_categories (note_id, category_id) VALUES "
	args := make([]any, 0, len(categoryIDs)*2)
	for i, cid := range categoryIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, noteID, cid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mysql: linking note categories: %w", err)
	}
	return nil
}

// GetByIDAndOwner returns the note with its categories loaded, or
// ErrNotFound when the (id, owner) pair matches nothing.
func (r *NoteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Note, error) {
	var n model.Note
	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, title, content, is_archived, is_pinned, created_at, updated_at FROM notes WHERE id=? AND owner_id=? LIMIT 1",
		id, ownerID).
		Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.IsArchived, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mysql: getting note %d: %w", id, err)
	}

	byNote, err := r.categoriesForNotes(ctx, []uint64{n.ID})
	if err != nil {
		return nil, err
	}
	n.Categories = byNote[n.ID]
	if n.Categories == nil {
		n.Categories = []model.Category{}
	}
	return &n, nil
}

// List returns one page of the owner's notes plus the total count
// of matching rows before paging.
func (r *NoteRepo) List(ctx context.Context, ownerID uint64, opts repository.NoteListOptions) ([]model.Note, int64, error) {
	countSQL, dataSQL, countArgs, dataArgs := buildNoteListQuery(ownerID, opts)

	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("mysql: counting notes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("mysql: listing notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0, opts.Limit)
	ids := make([]uint64, 0, opts.Limit)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.IsArchived, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("mysql: scanning note row: %w", err)
		}
		n.Categories = []model.Category{}
		notes = append(notes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("mysql: iterating notes: %w", err)
	}

	byNote, err := r.categoriesForNotes(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range notes {
		if cats, ok := byNote[notes[i].ID]; ok {
			notes[i].Categories = cats
		}
	}
	return notes, total, nil
}

// categoriesForNotes loads the categories linked to each of the
// given notes in one query, keyed by note id.
func (r *NoteRepo) categoriesForNotes(ctx context.Context, noteIDs []uint64) (map[uint64][]model.Category, error) {
	out := make(map[uint64][]model.Category, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(noteIDs)), ",")
	args := make([]any, 0, len(noteIDs))
	for _, id := range noteIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT nc.note_id, c.id, c.name, c.owner_id, c.created_at, c.updated_at"+
			" FROM note_categories nc JOIN categories c ON c.id = nc.category_id"+
			" WHERE nc.note_id IN ("+placeholders+") ORDER BY c.name ASC, c.id ASC",
		args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: loading note categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			noteID uint64
			c      model.Category
			owner  sql.NullInt64
		)
		if err := rows.Scan(&noteID, &c.ID, &c.Name, &owner, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("mysql: scanning note category row: %w", err)
		}
		if owner.Valid {
			id := uint64(owner.Int64)
			c.OwnerID = &id
		}
		out[noteID] = append(out[noteID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterating note categories: %w", err)
	}
	return out, nil
}

// Update writes title, content and both flags for an owned note,
// advancing updated_at.  Zero affected rows means the (id, owner)
// pair matched nothing.
func (r *NoteRepo) Update(ctx context.Context, note *model.Note) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notes SET title=?, content=?, is_archived=?, is_pinned=?, updated_at=NOW() WHERE id=? AND owner_id=?",
		note.Title, note.Content, note.IsArchived, note.IsPinned, note.ID, note.OwnerID)
	if err != nil {
		return fmt.Errorf("mysql: updating note %d: %w", note.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetArchived writes the archived flag in one owner-scoped
// statement.
func (r *NoteRepo) SetArchived(ctx context.Context, id, ownerID uint64, archived bool) error {
	return r.setFlag(ctx, "is_archived", id, ownerID, archived)
}

// SetPinned writes the pinned flag in one owner-scoped statement.
func (r *NoteRepo) SetPinned(ctx context.Context, id, ownerID uint64, pinned bool) error {
	return r.setFlag(ctx, "is_pinned", id, ownerID, pinned)
}

func (r *NoteRepo) setFlag(ctx context.Context, column string, id, ownerID uint64, value bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notes SET "+column+"=?, updated_at=NOW() WHERE id=? AND owner_id=?",
		value, id, ownerID)
	if err != nil {
		return fmt.Errorf("mysql: setting %s on note %d: %w", column, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the note in a single owner-scoped statement.
// Attachment rows and category links are removed by the foreign
// key cascades.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return fmt.Errorf("mysql: deleting note %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceCategories swaps the full category set of a note inside
// one transaction.
func (r *NoteRepo) ReplaceCategories(ctx context.Context, noteID uint64, categoryIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: beginning category replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM note_categories WHERE note_id=?", noteID); err != nil {
		return fmt.Errorf("mysql: clearing note categories: %w", err)
	}
	if err := insertNoteCategoriesTx(ctx, tx, noteID, categoryIDs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE notes SET updated_at=NOW() WHERE id=?", noteID); err != nil {
		return fmt.Errorf("mysql: touching note %d: %w", noteID, err)
	}
	return tx.Commit()
}

// AddCategory links a category to a note.  INSERT IGNORE makes a
// second identical call a no-op rather than an error.
func (r *NoteRepo) AddCategory(ctx context.Context, noteID, categoryID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO note_categories (note_id, category_id) VALUES (?,?)",
		noteID, categoryID)
	if err != nil {
		return fmt.Errorf("mysql: adding category %d to note %d: %w", categoryID, noteID, err)
	}
	return nil
}

// RemoveCategory unlinks a category from a note.  Removing an
// absent link is a no-op.
func (r *NoteRepo) RemoveCategory(ctx context.Context, noteID, categoryID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM note_categories WHERE note_id=? AND category_id=?",
		noteID, categoryID)
	if err != nil {
		return fmt.Errorf("mysql: removing category %d from note %d: %w", categoryID, noteID, err)
	}
	return nil
}
