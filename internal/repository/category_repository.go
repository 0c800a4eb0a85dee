package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/ewaste-pickup/internal/model"
)

// CategoryRepo reads the item_categories reference table. Categories
// are managed elsewhere; this service only lists them so residents can
// label pickup items.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// List returns all item categories ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.ItemCategory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, hazard_level, description FROM item_categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := make([]model.ItemCategory, 0)
	for rows.Next() {
		var c model.ItemCategory
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.HazardLevel, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			c.Description = &d
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
