// Package queue defines message payloads exchanged over the message
// broker, the publisher and the background consumer.
package queue

// NoteDeletedEvent is published when a note is deleted. It carries
// enough information for downstream consumers to log or trigger
// cleanup without querying the primary database.
type NoteDeletedEvent struct {
	NoteID          uint64 `json:"note_id"`
	UserID          uint64 `json:"user_id"`
	Title           string `json:"title"`
	AttachmentCount int    `json:"attachment_count"`
	DeletedAt       string `json:"deleted_at"`
}
