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

type sqliteBrandRepo struct {
	db database.TxQuerier
}

// NewSQLiteBrandRepo, constructor.
func NewSQLiteBrandRepo(db database.TxQuerier) BrandRepository {
	return &sqliteBrandRepo{db: db}
}

const brandSelect = `
	SELECT b.id, b.name, b.slug, b.description, b.logo_url,
		(SELECT COUNT(*) FROM products p WHERE p.brand_id = b.id AND p.is_active = 1) AS product_count,
		b.created_at
	FROM brands b`

func scanBrand(row scanner) (*models.Brand, error) {
	b := &models.Brand{}
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.ProductCount, &b.CreatedAt)
	return b, err
}

func brandWriteError(err error, op string) error {
	if isUniqueOn(err, "brands.slug") {
		return fmt.Errorf("%w: brand slug already in use", pkg.ErrAlreadyExists)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: brand name already in use", pkg.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to %s brand: %w", op, err)
}

func (r *sqliteBrandRepo) Create(ctx context.Context, brand *models.Brand) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO brands (id, name, slug, description, logo_url)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?)
		RETURNING id, created_at`,
		brand.Name, brand.Slug, brand.Description, brand.LogoURL,
	).Scan(&brand.ID, &brand.CreatedAt)
	if err != nil {
		return brandWriteError(err, "create")
	}
	return nil
}

func (r *sqliteBrandRepo) getOne(ctx context.Context, where string, arg any) (*models.Brand, error) {
	brand, err := scanBrand(r.db.QueryRowContext(ctx, brandSelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: brand", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return brand, nil
}

func (r *sqliteBrandRepo) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	return r.getOne(ctx, "b.id = ?", id)
}

func (r *sqliteBrandRepo) GetBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	return r.getOne(ctx, "b.slug = ?", slug)
}

var brandSorts = map[string]string{
	"name":     "b.name COLLATE NOCASE ASC",
	"newest":   "b.created_at DESC, b.id",
	"products": "product_count DESC, b.name COLLATE NOCASE ASC",
}

func (r *sqliteBrandRepo) List(ctx context.Context, params models.ListParams) ([]models.Brand, int, error) {
	params.Normalize()

	var conds []string
	var args []any
	if params.Query != "" {
		conds = append(conds, `lower(b.name) LIKE ? ESCAPE '\'`)
		args = append(args, params.LikePattern())
	}
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM brands b"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count brands: %w", err)
	}

	query := brandSelect + where + orderBy(params.Sort, brandSorts, "name") + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan brand row: %w", err)
		}
		brands = append(brands, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating brand rows: %w", err)
	}
	return brands, total, nil
}

func (r *sqliteBrandRepo) Update(ctx context.Context, brand *models.Brand) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE brands SET name = ?, slug = ?, description = ? WHERE id = ?`,
		brand.Name, brand.Slug, brand.Description, brand.ID,
	)
	if err != nil {
		return brandWriteError(err, "update")
	}
	return requireAffected(result, "brand")
}

func (r *sqliteBrandRepo) UpdateLogo(ctx context.Context, id string, url *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE brands SET logo_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update brand logo: %w", err)
	}
	return requireAffected(result, "brand")
}

func (r *sqliteBrandRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return requireAffected(result, "brand")
}
