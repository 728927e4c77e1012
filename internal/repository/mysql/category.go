package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/note-vault/internal/model"
	"github.com/iliyamo/note-vault/internal/repository"
)

var _ repository.CategoryStore = (*CategoryRepo)(nil)

// CategoryRepo persists categories in the `categories` table.  A
// NULL owner_id marks a global category.
type CategoryRepo struct{ db *sql.DB }

// NewCategoryRepo returns a CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = "id, name, owner_id, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var (
		c     model.Category
		owner sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &owner, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		id := uint64(owner.Int64)
		c.OwnerID = &id
	}
	return &c, nil
}

// ListVisible returns all global categories plus the user's
// personal ones, ordered by name ascending with id as tiebreak so
// pages are deterministic.
func (r *CategoryRepo) ListVisible(ctx context.Context, userID uint64) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE owner_id IS NULL OR owner_id=? ORDER BY name ASC, id ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("mysql: listing categories: %w", err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("mysql: scanning category row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterating categories: %w", err)
	}
	return out, nil
}

// GetByID returns a category regardless of its owner.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id=? LIMIT 1", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mysql: getting category %d: %w", id, err)
	}
	return c, nil
}

// ResolveForAttach returns the category only when it is usable by
// userID, that is global or personal to them.  Anything else is a
// plain ErrNotFound so other users' categories stay invisible.
func (r *CategoryRepo) ResolveForAttach(ctx context.Context, userID, categoryID uint64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id=? AND (owner_id IS NULL OR owner_id=?) LIMIT 1",
		categoryID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("mysql: resolving category %d: %w", categoryID, err)
	}
	return c, nil
}

// ExistsByNameAndOwner reports whether the user already has a
// personal category with this name.  Global categories with the
// same name do not count.
func (r *CategoryRepo) ExistsByNameAndOwner(ctx context.Context, ownerID uint64, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE owner_id=? AND name=?",
		ownerID, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("mysql: checking category name: %w", err)
	}
	return n > 0, nil
}

// Create inserts a personal category and populates id and
// timestamps on the model.
func (r *CategoryRepo) Create(ctx context.Context, category *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, owner_id) VALUES (?,?)",
		category.Name, category.OwnerID)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("mysql: creating category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = uint64(id)
	// Query back to pick up the DB-generated timestamps.
	fresh, err := r.GetByID(ctx, category.ID)
	if err != nil {
		return err
	}
	*category = *fresh
	return nil
}

// Rename updates the category name.  Ownership checks happen in
// the service layer before this is called.
func (r *CategoryRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name=?, updated_at=NOW() WHERE id=?",
		name, id)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("mysql: renaming category %d: %w", id, err)
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

// Delete removes the category.  note_categories rows referencing
// it are removed by the foreign key cascade; notes survive.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("mysql: deleting category %d: %w", id, err)
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
