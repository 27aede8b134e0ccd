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

type sqliteOrderRepo struct {
	db database.TxQuerier
}

// NewSQLiteOrderRepo, constructor.
func NewSQLiteOrderRepo(db database.TxQuerier) OrderRepository {
	return &sqliteOrderRepo{db: db}
}

const orderSelect = `
	SELECT o.id, o.order_number, o.user_id, o.status, o.subtotal, o.shipping_fee, o.tax, o.total, o.currency,
		o.ship_name, o.ship_phone, o.ship_line1, o.ship_line2, o.ship_city, o.ship_postal, o.ship_country,
		o.note, o.created_at, o.updated_at,
		u.username, u.display_name, u.avatar_url
	FROM orders o
	JOIN users u ON u.id = o.user_id`

func scanOrder(row scanner) (*models.Order, error) {
	o := &models.Order{Items: []models.OrderItem{}}
	a := &o.ShippingAddress
	customer := &models.UserSummary{}
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.ShippingFee, &o.Tax, &o.Total, &o.Currency,
		&a.FullName, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country,
		&o.Note, &o.CreatedAt, &o.UpdatedAt,
		&customer.Username, &customer.DisplayName, &customer.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	customer.ID = o.UserID
	o.Customer = customer
	return o, nil
}

func (r *sqliteOrderRepo) Create(ctx context.Context, order *models.Order) error {
	a := order.ShippingAddress
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, subtotal, shipping_fee, tax, total, currency,
			ship_name, ship_phone, ship_line1, ship_line2, ship_city, ship_postal, ship_country, note)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.UserID, order.Status, order.Subtotal, order.ShippingFee, order.Tax,
		order.Total, order.Currency,
		a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, order.Note,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order number collision", pkg.ErrConflict)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		it.LineTotal = it.UnitPrice * int64(it.Quantity)
		if err := r.db.QueryRowContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, store_id, product_name, image_url, unit_price, quantity)
			VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			it.OrderID, it.ProductID, it.StoreID, it.ProductName, it.ImageURL, it.UnitPrice, it.Quantity,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *sqliteOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getScoped(ctx, id, "")
}

func (r *sqliteOrderRepo) GetForOwner(ctx context.Context, id, ownerID string) (*models.Order, error) {
	order, err := r.getScoped(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: order", pkg.ErrNotFound)
	}
	return order, nil
}

func (r *sqliteOrderRepo) getScoped(ctx context.Context, id, ownerID string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+" WHERE o.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []models.Order{*order}
	if err := r.attachItems(ctx, orders, ownerID); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *sqliteOrderRepo) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	filter.Normalize()

	var conds []string
	var args []any
	if filter.UserID != "" {
		conds = append(conds, "o.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conds = append(conds, "o.status = ?")
		args = append(args, filter.Status)
	}
	if filter.StoreOwnerID != "" {
		conds = append(conds, `o.id IN (
			SELECT oi.order_id FROM order_items oi JOIN stores s ON s.id = oi.store_id WHERE s.owner_id = ?)`)
		args = append(args, filter.StoreOwnerID)
	}
	if filter.Query != "" {
		conds = append(conds, `(lower(o.order_number) LIKE ? ESCAPE '\' OR lower(o.ship_name) LIKE ? ESCAPE '\')`)
		like := filter.LikePattern()
		args = append(args, like, like)
	}
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	sorts := map[string]string{
		"newest":     "o.created_at DESC, o.rowid DESC",
		"oldest":     "o.created_at ASC, o.rowid ASC",
		"total_desc": "o.total DESC",
		"total_asc":  "o.total ASC",
	}
	query := orderSelect + where + orderBy(filter.Sort, sorts, "newest") + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order rows: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, orders, filter.StoreOwnerID); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// attachItems, siparişlerin kalemlerini tek sorguda doldurur.
// ownerID doluysa sadece o kullanıcının mağazalarına ait kalemler eklenir —
// buyer başka mağazaların satırlarını görmez.
func (r *sqliteOrderRepo) attachItems(ctx context.Context, orders []models.Order, ownerID string) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	ph, args := inClause(ids)
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.store_id, oi.product_name, oi.image_url, oi.unit_price, oi.quantity
		FROM order_items oi WHERE oi.order_id IN (` + ph + `)`
	if ownerID != "" {
		query += ` AND oi.store_id IN (SELECT id FROM stores WHERE owner_id = ?)`
		args = append(args, ownerID)
	}
	query += ` ORDER BY oi.rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.StoreID, &it.ProductName,
			&it.ImageURL, &it.UnitPrice, &it.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		it.LineTotal = it.UnitPrice * int64(it.Quantity)
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (r *sqliteOrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order status changed concurrently", pkg.ErrConflict)
	}
	return nil
}

func (r *sqliteOrderRepo) HasDeliveredPurchase(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM orders o JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = ? AND oi.product_id = ? AND o.status = ?)`,
		userID, productID, models.OrderDelivered,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}

func (r *sqliteOrderRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM orders WHERE status = ? AND created_at < ? ORDER BY created_at ASC`,
		models.OrderPending, sqlTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sqliteOrderRepo) OwnersOf(ctx context.Context, orderID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT s.owner_id FROM order_items oi JOIN stores s ON s.id = oi.store_id
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order store owners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
