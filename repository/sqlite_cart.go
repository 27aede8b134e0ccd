package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

type sqliteCartRepo struct {
	db database.TxQuerier
}

// NewSQLiteCartRepo, constructor.
func NewSQLiteCartRepo(db database.TxQuerier) CartRepository {
	return &sqliteCartRepo{db: db}
}

// Lines, pasif mağazanın ürünlerini IsActive=false olarak işaretler —
// storefront satırı "satışta değil" diye gösterir, checkout reddeder.
func (r *sqliteCartRepo) Lines(ctx context.Context, userID string) ([]models.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.store_id, p.name, p.slug,
			(SELECT url FROM product_images i WHERE i.product_id = p.id ORDER BY i.position ASC, i.rowid ASC LIMIT 1),
			p.price, ci.quantity, p.stock, (p.is_active = 1 AND s.is_active = 1)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN stores s ON s.id = p.store_id
		WHERE ci.user_id = ?
		ORDER BY ci.rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var l models.CartLine
		if err := rows.Scan(&l.ProductID, &l.StoreID, &l.Name, &l.Slug, &l.ImageURL,
			&l.UnitPrice, &l.Quantity, &l.Stock, &l.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart rows: %w", err)
	}
	return lines, nil
}

func (r *sqliteCartRepo) Quantity(ctx context.Context, userID, productID string) (int, error) {
	var qty int
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cart quantity: %w", err)
	}
	return qty, nil
}

func (r *sqliteCartRepo) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	if qty <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
		userID, productID, qty,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: product", pkg.ErrNotFound)
		}
		return fmt.Errorf("failed to set cart quantity: %w", err)
	}
	return nil
}

func (r *sqliteCartRepo) Remove(ctx context.Context, userID, productID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return requireAffected(result, "cart item")
}

func (r *sqliteCartRepo) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *sqliteCartRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE updated_at < ?`, sqlTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune carts: %w", err)
	}
	return result.RowsAffected()
}
