package model

import "time"

// Category groups notes.  A category is either global (OwnerID is
// nil, visible to every user, immutable through the API) or
// personal (owned by exactly one user).  The pair (name, owner)
// is unique, so a user cannot have two personal categories with
// the same name; a personal category may still share its name
// with a global one or with another user's category.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the category.
//  OwnerID   – owning user, nil for global categories.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Category struct {
	ID        uint64    `json:"id"`                 // categories.id
	Name      string    `json:"name"`               // categories.name
	OwnerID   *uint64   `json:"owner_id,omitempty"` // categories.owner_id (nullable)
	CreatedAt time.Time `json:"created_at"`         // categories.created_at
	UpdatedAt time.Time `json:"updated_at"`         // categories.updated_at
}

// IsGlobal reports whether the category has no owner and is
// therefore visible to every user.
func (c *Category) IsGlobal() bool { return c.OwnerID == nil }
