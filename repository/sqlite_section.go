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

type sqliteSectionRepo struct {
	db database.TxQuerier
}

// NewSQLiteSectionRepo, constructor.
func NewSQLiteSectionRepo(db database.TxQuerier) SectionRepository {
	return &sqliteSectionRepo{db: db}
}

const sectionSelect = `SELECT id, title, kind, ref_id, position, item_limit, is_active, created_at FROM sections`

func scanSection(row scanner) (*models.Section, error) {
	s := &models.Section{ProductIDs: []string{}}
	err := row.Scan(&s.ID, &s.Title, &s.Kind, &s.RefID, &s.Position, &s.Limit, &s.IsActive, &s.CreatedAt)
	return s, err
}

func (r *sqliteSectionRepo) Create(ctx context.Context, section *models.Section) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sections (id, title, kind, ref_id, position, item_limit, is_active)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		section.Title, section.Kind, section.RefID, section.Position, section.Limit, section.IsActive,
	).Scan(&section.ID, &section.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	if section.ProductIDs == nil {
		section.ProductIDs = []string{}
	}
	return nil
}

func (r *sqliteSectionRepo) GetByID(ctx context.Context, id string) (*models.Section, error) {
	section, err := scanSection(r.db.QueryRowContext(ctx, sectionSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: section", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}

	sections := []models.Section{*section}
	if err := r.attachProductIDs(ctx, sections); err != nil {
		return nil, err
	}
	return &sections[0], nil
}

func (r *sqliteSectionRepo) List(ctx context.Context, activeOnly bool) ([]models.Section, error) {
	query := sectionSelect
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY position ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", err)
		}
		sections = append(sections, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating section rows: %w", err)
	}
	rows.Close()

	if err := r.attachProductIDs(ctx, sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sqliteSectionRepo) attachProductIDs(ctx context.Context, sections []models.Section) error {
	if len(sections) == 0 {
		return nil
	}
	ids := make([]string, len(sections))
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
		index[s.ID] = i
	}

	ph, args := inClause(ids)
	rows, err := r.db.QueryContext(ctx, `
		SELECT section_id, product_id FROM section_products
		WHERE section_id IN (`+ph+`) ORDER BY section_id, position ASC`, args...)
	if err != nil {
		return fmt.Errorf("failed to load section products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sectionID, productID string
		if err := rows.Scan(&sectionID, &productID); err != nil {
			return fmt.Errorf("failed to scan section product: %w", err)
		}
		i := index[sectionID]
		sections[i].ProductIDs = append(sections[i].ProductIDs, productID)
	}
	return rows.Err()
}

func (r *sqliteSectionRepo) Update(ctx context.Context, section *models.Section) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sections SET title = ?, ref_id = ?, position = ?, item_limit = ?, is_active = ?
		WHERE id = ?`,
		section.Title, section.RefID, section.Position, section.Limit, section.IsActive, section.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	return requireAffected(result, "section")
}

func (r *sqliteSectionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	return requireAffected(result, "section")
}

// SetProducts, önce tüm satırları siler sonra yeniden ekler; atomik olması
// için transaction'a bağlı repo ile çağrılmalı.
func (r *sqliteSectionRepo) SetProducts(ctx context.Context, sectionID string, productIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM section_products WHERE section_id = ?`, sectionID); err != nil {
		return fmt.Errorf("failed to clear section products: %w", err)
	}
	for pos, productID := range productIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO section_products (section_id, product_id, position) VALUES (?, ?, ?)`,
			sectionID, productID, pos,
		); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: product %s does not exist", pkg.ErrBadRequest, productID)
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate product %s", pkg.ErrBadRequest, productID)
			}
			return fmt.Errorf("failed to add section product: %w", err)
		}
	}
	return nil
}
