package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

var _ repository.AttachmentStore = (*AttachmentRepo)(nil)

// AttachmentRepo persists attachment metadata in the
// `attachments` table.  It carries no ownership logic of its own;
// the service layer authorizes through the parent note first.
type AttachmentRepo struct{ db *sql.DB }

// NewAttachmentRepo returns an AttachmentRepo bound to the given database.
func NewAttachmentRepo(db *sql.DB) *AttachmentRepo { return &AttachmentRepo{db: db} }

const attachmentColumns = "id, note_id, filename, stored_path, mime_type, size, created_at"

// Create inserts the metadata row and populates id and created_at
// on the model.
func (r *AttachmentRepo) Create(ctx context.Context, attachment *model.Attachment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO attachments (note_id, filename, stored_path, mime_type, size) VALUES (?,?,?,?,?)",
		attachment.NoteID, attachment.Filename, attachment.StoredPath, attachment.MimeType, attachment.Size)
	if err != nil {
		return fmt.Errorf("mysql: creating attachment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	attachment.ID = uint64(id)
	err = r.db.QueryRowContext(ctx,
		"SELECT created_at FROM attachments WHERE id=?", attachment.ID).
		Scan(&attachment.CreatedAt)
	if err != nil {
		return fmt.Errorf("mysql: reading back attachment %d: %w", attachment.ID, err)
	}
	return nil
}

// GetByID returns the attachment or ErrNotFound.
func (r *AttachmentRepo) GetByID(ctx context.Context, id uint64) (*model.Attachment, error) {
	var a model.Attachment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+attachmentColumns+" FROM attachments WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.NoteID, &a.Filename, &a.StoredPath, &a.MimeType, &a.Size, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mysql: getting attachment %d: %w", id, err)
	}
	return &a, nil
}

// ListByNote returns the note's attachments newest first.
func (r *AttachmentRepo) ListByNote(ctx context.Context, noteID uint64) ([]model.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+attachmentColumns+" FROM attachments WHERE note_id=? ORDER BY created_at DESC, id DESC",
		noteID)
	if err != nil {
		return nil, fmt.Errorf("mysql: listing attachments: %w", err)
	}
	defer rows.Close()

	out := []model.Attachment{}
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.NoteID, &a.Filename, &a.StoredPath, &a.MimeType, &a.Size, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("mysql: scanning attachment row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterating attachments: %w", err)
	}
	return out, nil
}

// Delete removes the metadata row.
func (r *AttachmentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attachments WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("mysql: deleting attachment %d: %w", id, err)
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
