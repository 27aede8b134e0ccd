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

// sqliteCategoryRepo, CategoryRepository interface'inin SQLite implementasyonu.
type sqliteCategoryRepo struct {
	db database.TxQuerier
}

// NewSQLiteCategoryRepo, constructor — interface döner.
func NewSQLiteCategoryRepo(db database.TxQuerier) CategoryRepository {
	return &sqliteCategoryRepo{db: db}
}

const categorySelect = `
	SELECT c.id, c.parent_id, c.name, c.slug, c.description, c.image_url, c.position,
		(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = 1) AS product_count,
		c.created_at
	FROM categories c`

func scanCategory(row scanner) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Description, &c.ImageURL,
		&c.Position, &c.ProductCount, &c.CreatedAt)
	return c, err
}

func categoryWriteError(err error, op string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category slug already in use", pkg.ErrAlreadyExists)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: parent category does not exist", pkg.ErrBadRequest)
	}
	return fmt.Errorf("failed to %s category: %w", op, err)
}

func (r *sqliteCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, parent_id, name, slug, description, image_url, position)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		category.ParentID,
		category.Name,
		category.Slug,
		category.Description,
		category.ImageURL,
		category.Position,
	).Scan(&category.ID, &category.CreatedAt)

	if err != nil {
		return categoryWriteError(err, "create")
	}
	return nil
}

func (r *sqliteCategoryRepo) getOne(ctx context.Context, where string, arg any) (*models.Category, error) {
	cat, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+" WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

func (r *sqliteCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.getOne(ctx, "c.id = ?", id)
}

func (r *sqliteCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.getOne(ctx, "c.slug = ?", slug)
}

func (r *sqliteCategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+" ORDER BY c.position ASC, c.name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

var categorySorts = map[string]string{
	"position": "c.position ASC, c.name COLLATE NOCASE ASC",
	"name":     "c.name COLLATE NOCASE ASC",
	"newest":   "c.created_at DESC, c.id",
	"products": "product_count DESC, c.name COLLATE NOCASE ASC",
}

func (r *sqliteCategoryRepo) List(ctx context.Context, params models.ListParams) ([]models.Category, int, error) {
	params.Normalize()

	var conds []string
	var args []any
	if params.Query != "" {
		conds = append(conds, `lower(c.name) LIKE ? ESCAPE '\'`)
		args = append(args, params.LikePattern())
	}
	where := whereSQL(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories c"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := categorySelect + where + orderBy(params.Sort, categorySorts, "position") + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	categories := []models.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *sqliteCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET parent_id = ?, name = ?, slug = ?, description = ?, position = ?
		WHERE id = ?`,
		category.ParentID, category.Name, category.Slug, category.Description, category.Position, category.ID,
	)
	if err != nil {
		return categoryWriteError(err, "update")
	}
	return requireAffected(result, "category")
}

func (r *sqliteCategoryRepo) UpdateImage(ctx context.Context, id string, url *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE categories SET image_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update category image: %w", err)
	}
	return requireAffected(result, "category")
}

func (r *sqliteCategoryRepo) Reparent(ctx context.Context, fromID string, toParentID *string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE categories SET parent_id = ? WHERE parent_id = ?`, toParentID, fromID,
	); err != nil {
		return fmt.Errorf("failed to reparent categories: %w", err)
	}
	return nil
}

// Delete, kategoriyi siler. products.category_id FK ile NULL olur.
// Çocukların taşınması servis katmanında Reparent ile, aynı transaction içinde yapılır.
func (r *sqliteCategoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(result, "category")
}

func (r *sqliteCategoryRepo) GetMaxPosition(ctx context.Context, parentID *string) (int, error) {
	var maxPos int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM categories WHERE parent_id IS ?`,
		parentID,
	).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to get max category position: %w", err)
	}
	return maxPos, nil
}
