package service

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

// AttachmentService owns the attachment lifecycle.  An attachment
// has no authorization of its own: every operation first walks to
// the parent note and checks its ownership.  The one asymmetry is
// lookup by attachment id, where a found-but-unowned attachment
// yields ErrForbidden rather than ErrNotFound.
type AttachmentService struct {
	attachments repository.AttachmentStore
	notes       repository.NoteStore
	blobs       BlobStore
}

// NewAttachmentService returns an AttachmentService over the
// given stores.
func NewAttachmentService(attachments repository.AttachmentStore, notes repository.NoteStore, blobs BlobStore) *AttachmentService {
	return &AttachmentService{attachments: attachments, notes: notes, blobs: blobs}
}

// UploadInput describes an incoming file.
type UploadInput struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Create stores the file bytes and the metadata row for a note
// the user owns.  ErrNotFound when the note does not exist or is
// not theirs.  If the metadata insert fails the stored blob is
// removed again best-effort.
func (s *AttachmentService) Create(ctx context.Context, userID, noteID uint64, in UploadInput) (*model.Attachment, error) {
	if _, err := s.notes.GetByIDAndOwner(ctx, noteID, userID); err != nil {
		return nil, err
	}
	location, err := s.blobs.Save(ctx, in.Content, filepath.Ext(in.Filename))
	if err != nil {
		return nil, err
	}
	attachment := &model.Attachment{
		NoteID:     noteID,
		Filename:   in.Filename,
		StoredPath: location,
		MimeType:   in.MimeType,
		Size:       in.Size,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.blobs.Remove(location); rmErr != nil {
			log.Printf("blob: removing orphan %s: %v", location, rmErr)
		}
		return nil, err
	}
	return attachment, nil
}

// ListForNote returns the attachments of an owned note, newest
// first.  Same ownership gate as Create.
func (s *AttachmentService) ListForNote(ctx context.Context, userID, noteID uint64) ([]model.Attachment, error) {
	if _, err := s.notes.GetByIDAndOwner(ctx, noteID, userID); err != nil {
		return nil, err
	}
	return s.attachments.ListByNote(ctx, noteID)
}

// GetByID loads an attachment by id alone and authorizes through
// its parent note.  A missing attachment is ErrNotFound; an
// existing attachment whose note belongs to someone else is
// ErrForbidden.
func (s *AttachmentService) GetByID(ctx context.Context, userID, id uint64) (*model.Attachment, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.notes.GetByIDAndOwner(ctx, attachment.NoteID, userID); err != nil {
		if err == repository.ErrNotFound {
			return nil, repository.ErrForbidden
		}
		return nil, err
	}
	return attachment, nil
}

// Open authorizes the attachment and returns a reader over its
// stored bytes along with the metadata.  A blob missing from the
// store is reported as ErrNotFound.
func (s *AttachmentService) Open(ctx context.Context, userID, id uint64) (*model.Attachment, io.ReadCloser, error) {
	attachment, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(attachment.StoredPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}
	return attachment, rc, nil
}

// Remove deletes the metadata row and then the stored blob.  Blob
// removal is best-effort: a dangling file is less harmful than an
// unremovable metadata record, so failures are logged and the
// operation still succeeds.
func (s *AttachmentService) Remove(ctx context.Context, userID, id uint64) error {
	attachment, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(attachment.StoredPath); err != nil {
		log.Printf("blob: removing %s for attachment %d: %v", attachment.StoredPath, id, err)
	}
	return nil
}
