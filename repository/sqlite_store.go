package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
)

type sqliteStoreRepo struct {
	db database.TxQuerier
}

// NewSQLiteStoreRepo, constructor.
func NewSQLiteStoreRepo(db database.TxQuerier) StoreRepository {
	return &sqliteStoreRepo{db: db}
}

// product_count sadece aktif ürünleri sayar — storefront'taki rozetle tutarlı.
const storeSelect = `
	SELECT s.id, s.owner_id, s.name, s.slug, s.description, s.logo_url, s.banner_url, s.is_active,
		(SELECT COUNT(*) FROM products p WHERE p.store_id = s.id AND p.is_active = 1) AS product_count,
		s.created_at, s.updated_at
	FROM stores s`

func scanStore(row scanner) (*models.Store, error) {
	s := &models.Store{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.LogoURL, &s.BannerURL,
		&s.IsActive, &s.ProductCount, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func storeWriteError(err error, op string) error {
	if isUniqueOn(err, "stores.slug") {
		return fmt.Errorf("%w: store slug already in use", pkg.ErrAlreadyExists)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: owner does not exist", pkg.ErrBadRequest)
	}
	return fmt.Errorf("failed to %s store: %w", op, err)
}

func (r *sqliteStoreRepo) Create(ctx context.Context, store *models.Store) error {
	query := `
		INSERT INTO stores (id, owner_id, name, slug, description, logo_url, banner_url, is_active)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		store.OwnerID, store.Name, store.Slug, store.Description,
		store.LogoURL, store.BannerURL, store.IsActive,
	).Scan(&store.ID, &store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		return storeWriteError(err, "create")
	}
	return nil
}

func (r *sqliteStoreRepo) getOne(ctx context.Context, where string, arg any) (*models.Store, error) {
	store, err := scanStore(r.db.QueryRowContext(ctx, storeSelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: store", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

func (r *sqliteStoreRepo) GetByID(ctx context.Context, id string) (*models.Store, error) {
	return r.getOne(ctx, "s.id = ?", id)
}

func (r *sqliteStoreRepo) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return r.getOne(ctx, "s.slug = ?", slug)
}

var storeSorts = map[string]string{
	"name":     "s.name COLLATE NOCASE ASC",
	"newest":   "s.created_at DESC, s.id",
	"products": "product_count DESC, s.name COLLATE NOCASE ASC",
}

func (r *sqliteStoreRepo) List(ctx context.Context, filter models.StoreFilter) ([]models.Store, int, error) {
	filter.Normalize()

	var conds []string
	var args []any
	if !filter.IncludeInactive {
		conds = append(conds, "s.is_active = 1")
	}
	if filter.OwnerID != "" {
		conds = append(conds, "s.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Query != "" {
		like := filter.LikePattern()
		conds = append(conds, `(lower(s.name) LIKE ? ESCAPE '\' OR lower(s.description) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores s"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stores: %w", err)
	}

	query := storeSelect + where + orderBy(filter.Sort, storeSorts, "name") + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan store row: %w", err)
		}
		stores = append(stores, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating store rows: %w", err)
	}
	return stores, total, nil
}

func (r *sqliteStoreRepo) Update(ctx context.Context, store *models.Store) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stores SET name = ?, slug = ?, description = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		store.Name, store.Slug, store.Description, store.IsActive, store.ID,
	)
	if err != nil {
		return storeWriteError(err, "update")
	}
	return requireAffected(result, "store")
}

func (r *sqliteStoreRepo) UpdateLogo(ctx context.Context, id string, url *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stores SET logo_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update store logo: %w", err)
	}
	return requireAffected(result, "store")
}

func (r *sqliteStoreRepo) UpdateBanner(ctx context.Context, id string, url *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stores SET banner_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update store banner: %w", err)
	}
	return requireAffected(result, "store")
}

// Delete, mağazayı siler; ürünler ve görselleri FK cascade ile gider.
func (r *sqliteStoreRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return requireAffected(result, "store")
}

func (r *sqliteStoreRepo) HasOrders(ctx context.Context, storeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE store_id = ?)`, storeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check store orders: %w", err)
	}
	return exists, nil
}
