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

type sqliteProductRepo struct {
	db database.TxQuerier
}

// NewSQLiteProductRepo, constructor.
func NewSQLiteProductRepo(db database.TxQuerier) ProductRepository {
	return &sqliteProductRepo{db: db}
}

// productSelect, ürünü mağaza/marka/kategori özetleriyle birlikte tek sorguda okur.
// Marka ve kategori opsiyonel olduğu için LEFT JOIN.
const productSelect = `
	SELECT p.id, p.store_id, p.brand_id, p.category_id, p.name, p.slug, p.sku, p.description,
		p.price, p.compare_at_price, p.stock, p.is_active, p.is_featured,
		p.rating_avg, p.rating_count, p.sold_count, p.created_at, p.updated_at,
		s.name, s.slug, s.logo_url, s.is_active,
		b.name, b.slug,
		c.name, c.slug
	FROM products p
	JOIN stores s ON s.id = p.store_id
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN categories c ON c.id = p.category_id`

// productFrom, COUNT sorgusu için aynı FROM — public filtre stores.is_active'e bakar.
const productFrom = ` FROM products p JOIN stores s ON s.id = p.store_id`

func scanProduct(row scanner) (*models.Product, error) {
	p := &models.Product{Images: []models.ProductImage{}}
	var store models.StoreSummary
	var brandName, brandSlug, catName, catSlug sql.NullString
	err := row.Scan(
		&p.ID, &p.StoreID, &p.BrandID, &p.CategoryID, &p.Name, &p.Slug, &p.SKU, &p.Description,
		&p.Price, &p.CompareAtPrice, &p.Stock, &p.IsActive, &p.IsFeatured,
		&p.RatingAvg, &p.RatingCount, &p.SoldCount, &p.CreatedAt, &p.UpdatedAt,
		&store.Name, &store.Slug, &store.LogoURL, &p.StoreActive,
		&brandName, &brandSlug,
		&catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}

	store.ID = p.StoreID
	p.Store = &store
	if p.BrandID != nil && brandName.Valid {
		p.Brand = &models.BrandSummary{ID: *p.BrandID, Name: brandName.String, Slug: brandSlug.String}
	}
	if p.CategoryID != nil && catName.Valid {
		p.Category = &models.CategorySummary{ID: *p.CategoryID, Name: catName.String, Slug: catSlug.String}
	}
	return p, nil
}

func productWriteError(err error, op string) error {
	switch {
	case isUniqueOn(err, "products.slug"):
		return fmt.Errorf("%w: product slug already in use", pkg.ErrAlreadyExists)
	case isUniqueOn(err, "products.sku"):
		return fmt.Errorf("%w: sku already used in this store", pkg.ErrAlreadyExists)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: store, brand or category does not exist", pkg.ErrBadRequest)
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

func (r *sqliteProductRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, store_id, brand_id, category_id, name, slug, sku, description,
			price, compare_at_price, stock, is_active, is_featured)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		product.StoreID, product.BrandID, product.CategoryID, product.Name, product.Slug,
		product.SKU, product.Description, product.Price, product.CompareAtPrice,
		product.Stock, product.IsActive, product.IsFeatured,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return productWriteError(err, "create")
	}
	if product.Images == nil {
		product.Images = []models.ProductImage{}
	}
	return nil
}

func (r *sqliteProductRepo) getOne(ctx context.Context, where string, arg any) (*models.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	images, err := r.ListImages(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = images
	return product, nil
}

func (r *sqliteProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.getOne(ctx, "p.id = ?", id)
}

func (r *sqliteProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.getOne(ctx, "p.slug = ?", slug)
}

func (r *sqliteProductRepo) GetByIDs(ctx context.Context, ids []string, publicOnly bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	ph, args := inClause(ids)
	query := productSelect + " WHERE p.id IN (" + ph + ")"
	if publicOnly {
		query += " AND p.is_active = 1 AND s.is_active = 1"
	}

	byID, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	index := make(map[string]models.Product, len(byID))
	for _, p := range byID {
		index[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(byID))
	for _, id := range ids {
		if p, ok := index[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

var productSorts = map[string]string{
	models.SortNewest:    "p.created_at DESC, p.id",
	models.SortPriceAsc:  "p.price ASC, p.id",
	models.SortPriceDesc: "p.price DESC, p.id",
	models.SortRating:    "p.rating_avg DESC, p.rating_count DESC, p.id",
	models.SortName:      "p.name COLLATE NOCASE ASC, p.id",
	models.SortPopular:   "p.sold_count DESC, p.rating_count DESC, p.id",
}

// productConditions, filtreyi WHERE koşullarına çevirir.
func productConditions(f models.ProductFilter) ([]string, []any) {
	var conds []string
	var args []any

	if f.Public {
		conds = append(conds, "p.is_active = 1", "s.is_active = 1")
	}
	if f.Query != "" {
		like := f.LikePattern()
		conds = append(conds, `(lower(p.name) LIKE ? ESCAPE '\' OR lower(p.description) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if len(f.CategoryIDs) > 0 {
		ph, ids := inClause(f.CategoryIDs)
		conds = append(conds, "p.category_id IN ("+ph+")")
		args = append(args, ids...)
	}
	if f.BrandID != "" {
		conds = append(conds, "p.brand_id = ?")
		args = append(args, f.BrandID)
	}
	if f.StoreID != "" {
		conds = append(conds, "p.store_id = ?")
		args = append(args, f.StoreID)
	}
	if f.OwnerID != "" {
		conds = append(conds, "s.owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.MinPrice != nil {
		conds = append(conds, "p.price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.InStock {
		conds = append(conds, "p.stock > 0")
	}
	if f.Featured {
		conds = append(conds, "p.is_featured = 1")
	}
	if f.ExcludeID != "" {
		conds = append(conds, "p.id <> ?")
		args = append(args, f.ExcludeID)
	}
	return conds, args
}

func (r *sqliteProductRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	filter.Normalize()

	conds, args := productConditions(filter)
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+productFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := productSelect + where + orderBy(filter.Sort, productSorts, models.SortNewest) + " LIMIT ? OFFSET ?"
	products, err := r.query(ctx, query, append(args, filter.Limit, filter.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// query, productSelect tabanlı sorguyu çalıştırır ve görselleri tek bir
// ek sorguyla (N+1 yerine) doldurur.
func (r *sqliteProductRepo) query(ctx context.Context, query string, args []any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	// Görsel sorgusu açık rows varken çalışmasın — bağlantı tutulur.
	rows.Close()

	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *sqliteProductRepo) attachImages(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	ph, args := inClause(ids)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, position FROM product_images
		WHERE product_id IN (`+ph+`) ORDER BY product_id, position ASC, rowid ASC`, args...)
	if err != nil {
		return fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		i := index[img.ProductID]
		products[i].Images = append(products[i].Images, img)
	}
	return rows.Err()
}

func (r *sqliteProductRepo) Update(ctx context.Context, product *models.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET brand_id = ?, category_id = ?, name = ?, slug = ?, sku = ?, description = ?,
			price = ?, compare_at_price = ?, stock = ?, is_active = ?, is_featured = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		product.BrandID, product.CategoryID, product.Name, product.Slug, product.SKU, product.Description,
		product.Price, product.CompareAtPrice, product.Stock, product.IsActive, product.IsFeatured,
		product.ID,
	)
	if err != nil {
		return productWriteError(err, "update")
	}
	return requireAffected(result, "product")
}

func (r *sqliteProductRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(result, "product")
}

func (r *sqliteProductRepo) DecrementStock(ctx context.Context, productID string, qty int) (int, error) {
	// WHERE stock >= ? koşulu, iki checkout aynı son ürünü almaya çalıştığında
	// ikincisinin 0 satır etkilemesini sağlar — stok asla negatife düşmez.
	var remaining int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET stock = stock - ?, sold_count = sold_count + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
		RETURNING stock`,
		qty, qty, productID, qty,
	).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: insufficient stock", pkg.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return remaining, nil
}

func (r *sqliteProductRepo) Restock(ctx context.Context, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET stock = stock + ?, sold_count = MAX(sold_count - ?, 0), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		qty, qty, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}
	// Ürün silinmiş olabilir; bu durumda geri eklenecek stok yoktur.
	return nil
}

func (r *sqliteProductRepo) AddImage(ctx context.Context, image *models.ProductImage) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO product_images (id, product_id, url, position)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id`,
		image.ProductID, image.URL, image.Position,
	).Scan(&image.ID)
	if err != nil {
		return fmt.Errorf("failed to add product image: %w", err)
	}
	return nil
}

func (r *sqliteProductRepo) GetImage(ctx context.Context, imageID string) (*models.ProductImage, error) {
	img := &models.ProductImage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, product_id, url, position FROM product_images WHERE id = ?`, imageID,
	).Scan(&img.ID, &img.ProductID, &img.URL, &img.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: image", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product image: %w", err)
	}
	return img, nil
}

func (r *sqliteProductRepo) ListImages(ctx context.Context, productID string) ([]models.ProductImage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, url, position FROM product_images
		WHERE product_id = ? ORDER BY position ASC, rowid ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := []models.ProductImage{}
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *sqliteProductRepo) CountImages(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product_images WHERE product_id = ?`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count product images: %w", err)
	}
	return n, nil
}

func (r *sqliteProductRepo) DeleteImage(ctx context.Context, imageID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = ?`, imageID)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}
	return requireAffected(result, "image")
}

func (r *sqliteProductRepo) SetImagePositions(ctx context.Context, productID string, imageIDs []string) error {
	for pos, id := range imageIDs {
		result, err := r.db.ExecContext(ctx,
			`UPDATE product_images SET position = ? WHERE id = ? AND product_id = ?`, pos, id, productID)
		if err != nil {
			return fmt.Errorf("failed to reorder product images: %w", err)
		}
		if err := requireAffected(result, "image"); err != nil {
			return err
		}
	}
	return nil
}
