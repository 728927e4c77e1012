// Package service implements the ownership and query-authorization
// engine: which categories a user can see and attach, which notes
// they can read and mutate, and how attachments inherit the rights
// of their parent note.  Handlers adapt these operations to HTTP;
// the services themselves know nothing about transport.
package service

import (
	"context"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

// CategoryService decides category visibility.  A category is
// usable by a user iff it is global or personal to them; global
// categories are immutable through this service.
type CategoryService struct {
	categories repository.CategoryStore
}

// NewCategoryService returns a CategoryService over the given store.
func NewCategoryService(categories repository.CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// ListVisible returns the union of all global categories and the
// user's personal ones, ordered by name then id.
func (s *CategoryService) ListVisible(ctx context.Context, userID uint64) ([]model.Category, error) {
	return s.categories.ListVisible(ctx, userID)
}

// ResolveForAttach returns the category when it is attachable by
// the user (global or their own).  Everything else, including
// other users' personal categories, is ErrNotFound so their
// existence is never revealed.
func (s *CategoryService) ResolveForAttach(ctx context.Context, userID, categoryID uint64) (*model.Category, error) {
	return s.categories.ResolveForAttach(ctx, userID, categoryID)
}

// Create adds a personal category for the user.  The (name, user)
// pair must be unique among their personal categories; a global
// category with the same name does not conflict.
func (s *CategoryService) Create(ctx context.Context, userID uint64, name string) (*model.Category, error) {
	exists, err := s.categories.ExistsByNameAndOwner(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrConflict
	}
	category := &model.Category{Name: name, OwnerID: &userID}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Rename changes a personal category's name.  ErrNotFound when
// the category does not exist, ErrForbidden when it is global or
// owned by another user, ErrConflict when the user already has a
// category with the new name.  The conflict check only runs when
// the name actually changes.
func (s *CategoryService) Rename(ctx context.Context, userID, id uint64, name string) (*model.Category, error) {
	category, err := s.requireOwnedCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name == category.Name {
		return category, nil
	}
	exists, err := s.categories.ExistsByNameAndOwner(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrConflict
	}
	if err := s.categories.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return s.categories.GetByID(ctx, id)
}

// Delete removes a personal category.  Notes referencing it lose
// the association but are otherwise untouched.  Same ownership
// outcomes as Rename.
func (s *CategoryService) Delete(ctx context.Context, userID, id uint64) error {
	if _, err := s.requireOwnedCategory(ctx, userID, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

// requireOwnedCategory loads the category and verifies it is the
// user's personal one.  Unlike note lookups this path does reveal
// existence: a global category or another user's category yields
// ErrForbidden, not ErrNotFound.
func (s *CategoryService) requireOwnedCategory(ctx context.Context, userID, id uint64) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.OwnerID == nil || *category.OwnerID != userID {
		return nil, repository.ErrForbidden
	}
	return category, nil
}
