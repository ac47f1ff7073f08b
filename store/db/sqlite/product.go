package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopmind/shopmind/store"
)

func (d *DB) CreateProduct(ctx context.Context, create *store.Product) (*store.Product, error) {
	stmt := `
		INSERT INTO product (name, description, price, discount, category_id, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Name, create.Description, create.Price, create.Discount,
		create.CategoryID, create.CreatedTs, create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return create, nil
}

func (d *DB) ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "p.id = ?"), append(args, *find.ID)
	}
	if find.CategoryID != nil {
		where, args = append(where, "p.category_id = ?"), append(args, *find.CategoryID)
	}
	if find.CategoryName != nil {
		pattern := "%" + strings.ToLower(*find.CategoryName) + "%"
		where = append(where, "p.category_id IN (SELECT id FROM category WHERE LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if find.NameSearch != nil {
		where, args = append(where, "LOWER(p.name) LIKE ?"), append(args, "%"+strings.ToLower(*find.NameSearch)+"%")
	}

	query := `
		SELECT p.id, p.name, p.description, p.price, p.discount, p.category_id, p.created_ts, p.updated_ts
		FROM product p
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY p.id ASC`
	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Product, 0)
	for rows.Next() {
		p := &store.Product{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount,
			&p.CategoryID, &p.CreatedTs, &p.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateProduct(ctx context.Context, update *store.UpdateProduct) (*store.Product, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = ?"), append(args, *update.Description)
	}
	if update.Price != nil {
		set, args = append(set, "price = ?"), append(args, *update.Price)
	}
	if update.Discount != nil {
		set, args = append(set, "discount = ?"), append(args, *update.Discount)
	}
	if update.CategoryID != nil {
		set, args = append(set, "category_id = ?"), append(args, *update.CategoryID)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `
		UPDATE product SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, name, description, price, discount, category_id, created_ts, updated_ts`
	p := &store.Product{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount,
		&p.CategoryID, &p.CreatedTs, &p.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

func (d *DB) DeleteProduct(ctx context.Context, delete *store.DeleteProduct) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM product WHERE id = ?", delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}
