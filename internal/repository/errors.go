// Package repository defines the storage contracts of the note
// engine together with the sentinel errors shared across their
// implementations.  Higher layers such as handlers use these
// sentinels to distinguish failure outcomes: ErrNotFound covers
// both genuinely missing records and records hidden from the
// caller by the ownership rule, while ErrForbidden is reserved
// for the few places that intentionally reveal existence (global
// category mutations, attachment-by-id lookups).
package repository

import "errors"

// ErrNotFound is returned when a record does not exist or is not
// visible to the requesting user.  Handlers should translate this
// into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a record exists and the caller is
// allowed to know that, but the requested action is denied, such
// as renaming a global category or reading another user's
// attachment.  Handlers should translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a uniqueness rule is violated,
// such as creating two personal categories with the same name for
// one user.  Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
