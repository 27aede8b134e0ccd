package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
)

type sqliteStatsRepo struct {
	db database.TxQuerier
}

// NewSQLiteStatsRepo, constructor.
func NewSQLiteStatsRepo(db database.TxQuerier) StatsRepository {
	return &sqliteStatsRepo{db: db}
}

func (r *sqliteStatsRepo) count(ctx context.Context, what, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *sqliteStatsRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users`)
}

func (r *sqliteStatsRepo) CountProducts(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return r.count(ctx, "products", `SELECT COUNT(*) FROM products`)
	}
	return r.count(ctx, "products", `
		SELECT COUNT(*) FROM products p JOIN stores s ON s.id = p.store_id WHERE s.owner_id = ?`, ownerID)
}

func (r *sqliteStatsRepo) CountStores(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return r.count(ctx, "stores", `SELECT COUNT(*) FROM stores`)
	}
	return r.count(ctx, "stores", `SELECT COUNT(*) FROM stores WHERE owner_id = ?`, ownerID)
}

func (r *sqliteStatsRepo) CountOrders(ctx context.Context, ownerID, status string) (int, error) {
	query := `SELECT COUNT(*) FROM orders o WHERE (? = '' OR o.status = ?)`
	args := []any{status, status}
	if ownerID != "" {
		query += ` AND o.id IN (
			SELECT oi.order_id FROM order_items oi JOIN stores s ON s.id = oi.store_id WHERE s.owner_id = ?)`
		args = append(args, ownerID)
	}
	return r.count(ctx, "orders", query, args...)
}

func (r *sqliteStatsRepo) CountLowStock(ctx context.Context, ownerID string, threshold int) (int, error) {
	query := `SELECT COUNT(*) FROM products p JOIN stores s ON s.id = p.store_id
		WHERE p.is_active = 1 AND p.stock <= ?`
	args := []any{threshold}
	if ownerID != "" {
		query += ` AND s.owner_id = ?`
		args = append(args, ownerID)
	}
	return r.count(ctx, "low stock products", query, args...)
}

func (r *sqliteStatsRepo) Revenue(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	var err error
	if ownerID == "" {
		err = r.db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> ?`, models.OrderCancelled,
		).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(oi.unit_price * oi.quantity), 0)
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			JOIN stores s ON s.id = oi.store_id
			WHERE o.status <> ? AND s.owner_id = ?`,
			models.OrderCancelled, ownerID,
		).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}
