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

type sqliteReviewRepo struct {
	db database.TxQuerier
}

// NewSQLiteReviewRepo, constructor.
func NewSQLiteReviewRepo(db database.TxQuerier) ReviewRepository {
	return &sqliteReviewRepo{db: db}
}

const reviewSelect = `
	SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
		u.username, u.display_name, u.avatar_url
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

func scanReview(row scanner) (*models.Review, error) {
	rv := &models.Review{}
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.Author.Username, &rv.Author.DisplayName, &rv.Author.AvatarURL)
	rv.Author.ID = rv.UserID
	return rv, err
}

func (r *sqliteReviewRepo) Create(ctx context.Context, review *models.Review) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		review.ProductID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: you have already reviewed this product", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *sqliteReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (r *sqliteReviewRepo) ListByProduct(ctx context.Context, productID string, params models.ListParams) ([]models.Review, int, error) {
	params.Normalize()

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = ?`, productID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	order := " ORDER BY r.created_at DESC, r.rowid DESC"
	switch params.Sort {
	case "rating_desc":
		order = " ORDER BY r.rating DESC, r.created_at DESC"
	case "rating_asc":
		order = " ORDER BY r.rating ASC, r.created_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, reviewSelect+" WHERE r.product_id = ?"+order+" LIMIT ? OFFSET ?",
		productID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, total, nil
}

func (r *sqliteReviewRepo) Update(ctx context.Context, review *models.Review) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, comment = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		review.Rating, review.Comment, review.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return requireAffected(result, "review")
}

func (r *sqliteReviewRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return requireAffected(result, "review")
}

func (r *sqliteReviewRepo) RecomputeRating(ctx context.Context, productID string) (models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.db.QueryRowContext(ctx, `
		UPDATE products SET
			rating_avg = COALESCE((SELECT ROUND(AVG(rating), 2) FROM reviews WHERE product_id = ?), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE product_id = ?)
		WHERE id = ?
		RETURNING rating_avg, rating_count`,
		productID, productID, productID,
	).Scan(&summary.Avg, &summary.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return summary, fmt.Errorf("%w: product", pkg.ErrNotFound)
	}
	if err != nil {
		return summary, fmt.Errorf("failed to recompute rating: %w", err)
	}
	return summary, nil
}
