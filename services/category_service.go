package services

import (
	"context"
	"database/sql"
	"fmt"
	"mime/multipart"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/cache"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// categoryCacheKey, düz kategori listesinin cache anahtarı. Tek kayıt tutulur;
// ağaç ve alt kategori listeleri bu listeden hesaplanır.
const categoryCacheKey = "all"

// CategoryService, kategori iş mantığı interface'i.
type CategoryService interface {
	List(ctx context.Context, params models.ListParams) ([]models.Category, int, error)
	// Tree, kök kategorileri çocuklarıyla birlikte döner.
	Tree(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, idOrSlug string) (*models.Category, error)
	// DescendantIDs, kategori ve tüm alt kategorilerinin ID'leri.
	// idOrSlug bulunamazsa pkg.ErrNotFound.
	DescendantIDs(ctx context.Context, idOrSlug string) ([]string, error)
	Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id string, req *models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (*models.Category, error)
	// InvalidateCounts, cache'teki product_count'ları bayat sayar. Ürün
	// eklenince, silinince veya kategorisi değişince çağrılır.
	InvalidateCounts()
}

type categoryService struct {
	db           *sql.DB
	categoryRepo repository.CategoryRepository
	uploads      UploadService
	hub          ws.EventPublisher
	cache        *cache.TTLCache[string, []models.Category]
}

// NewCategoryService, constructor. treeCache'in yaşam döngüsü (Close) çağırana aittir.
func NewCategoryService(
	db *sql.DB,
	categoryRepo repository.CategoryRepository,
	uploads UploadService,
	hub ws.EventPublisher,
	treeCache *cache.TTLCache[string, []models.Category],
) CategoryService {
	return &categoryService{
		db:           db,
		categoryRepo: categoryRepo,
		uploads:      uploads,
		hub:          hub,
		cache:        treeCache,
	}
}

func (s *categoryService) all(ctx context.Context) ([]models.Category, error) {
	return s.cache.GetOrLoad(categoryCacheKey, func() ([]models.Category, error) {
		return s.categoryRepo.GetAll(ctx)
	})
}

// changed, cache'i boşaltır ve client'lara haber verir.
// Ürün kartlarında kategori adı gömülü olduğu için ürün listeleri de bayatlar.
func (s *categoryService) changed(id string) {
	s.cache.Delete(categoryCacheKey)
	invalidate(s.hub, id, ws.TagCategories, ws.TagProducts)
}

func (s *categoryService) InvalidateCounts() {
	s.cache.Delete(categoryCacheKey)
	invalidate(s.hub, "", ws.TagCategories)
}

func (s *categoryService) List(ctx context.Context, params models.ListParams) ([]models.Category, int, error) {
	params.Normalize()
	return s.categoryRepo.List(ctx, params)
}

func (s *categoryService) Tree(ctx context.Context) ([]*models.Category, error) {
	flat, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(flat), nil
}

func (s *categoryService) Get(ctx context.Context, idOrSlug string) (*models.Category, error) {
	return getByIDOrSlug(ctx, idOrSlug, s.categoryRepo.GetByID, s.categoryRepo.GetBySlug)
}

func (s *categoryService) DescendantIDs(ctx context.Context, idOrSlug string) ([]string, error) {
	flat, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range flat {
		if c.ID == idOrSlug || c.Slug == idOrSlug {
			return models.DescendantIDs(flat, c.ID), nil
		}
	}
	return nil, fmt.Errorf("%w: category", pkg.ErrNotFound)
}

// Create, yeni kategoriyi parent'ının en sonuna ekler (position verilmemişse).
func (s *categoryService) Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, fmt.Errorf("%w: parent category does not exist", pkg.ErrBadRequest)
		}
	}

	position := req.Position
	if position == 0 {
		maxPos, err := s.categoryRepo.GetMaxPosition(ctx, req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get max position: %w", err)
		}
		position = maxPos + 1
	}

	category := &models.Category{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Position:    position,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.changed(category.ID)
	return category, nil
}

// Update, partial update. Parent değişiyorsa yeni parent'ın var olduğu ve
// kategorinin kendi alt ağacında olmadığı doğrulanır.
func (s *categoryService) Update(ctx context.Context, id string, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SetParent {
		if req.ParentID != nil {
			if _, err := s.categoryRepo.GetByID(ctx, *req.ParentID); err != nil {
				return nil, fmt.Errorf("%w: parent category does not exist", pkg.ErrBadRequest)
			}
			flat, err := s.categoryRepo.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			if models.WouldCreateCycle(flat, id, *req.ParentID) {
				return nil, fmt.Errorf("%w: category cannot be moved under itself or its descendants", pkg.ErrBadRequest)
			}
		}
		category.ParentID = req.ParentID
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != "" {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Position != nil {
		category.Position = *req.Position
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.changed(category.ID)
	return category, nil
}

// Delete, kategoriyi siler. Çocukları silinen kategorinin parent'ına taşınır
// (ağaçta boşluk kalmaz), ürünlerin category_id'si FK ile NULL olur.
// İki adım tek transaction'dadır.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteCategoryRepo(tx)
		if err := repo.Reparent(ctx, id, category.ParentID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if category.ImageURL != nil {
		s.uploads.Remove(*category.ImageURL)
	}

	s.cache.Delete(categoryCacheKey)
	invalidate(s.hub, id, ws.TagCategories, ws.TagProducts, ws.TagSections)
	return nil
}

func (s *categoryService) UpdateImage(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.SaveImage(file, header)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.UpdateImage(ctx, id, &url); err != nil {
		s.uploads.Remove(url)
		return nil, err
	}

	if category.ImageURL != nil {
		s.uploads.Remove(*category.ImageURL)
	}
	category.ImageURL = &url

	s.changed(id)
	return category, nil
}
