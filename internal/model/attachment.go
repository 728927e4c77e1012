package model

import "time"

// Attachment is a file uploaded against a note.  It has no owner
// of its own: visibility and mutation rights are exactly those of
// the parent note, and deleting the note cascades to its
// attachments.  StoredPath points at the blob on disk and is never
// exposed to clients.
//
// Fields:
//  ID         – primary key identifier.
//  NoteID     – parent note.
//  Filename   – original file name as uploaded.
//  StoredPath – server-side location of the stored blob.
//  MimeType   – content type reported at upload time.
//  Size       – size in bytes.
//  CreatedAt  – timestamp of upload.
type Attachment struct {
	ID         uint64    `json:"id"`         // attachments.id
	NoteID     uint64    `json:"note_id"`    // attachments.note_id
	Filename   string    `json:"filename"`   // attachments.filename
	StoredPath string    `json:"-"`          // attachments.stored_path (never serialized)
	MimeType   string    `json:"mime_type"`  // attachments.mime_type
	Size       int64     `json:"size"`       // attachments.size
	CreatedAt  time.Time `json:"created_at"` // attachments.created_at
}
