package services

import (
	"context"
	"mime/multipart"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// BrandService, marka iş mantığı. Yazma işlemleri admin'e açıktır (route seviyesinde).
type BrandService interface {
	List(ctx context.Context, params models.ListParams) ([]models.Brand, int, error)
	Get(ctx context.Context, idOrSlug string) (*models.Brand, error)
	Create(ctx context.Context, req *models.CreateBrandRequest) (*models.Brand, error)
	Update(ctx context.Context, id string, req *models.UpdateBrandRequest) (*models.Brand, error)
	Delete(ctx context.Context, id string) error
	UpdateLogo(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (*models.Brand, error)
}

type brandService struct {
	brandRepo repository.BrandRepository
	uploads   UploadService
	hub       ws.EventPublisher
}

func NewBrandService(brandRepo repository.BrandRepository, uploads UploadService, hub ws.EventPublisher) BrandService {
	return &brandService{brandRepo: brandRepo, uploads: uploads, hub: hub}
}

func (s *brandService) List(ctx context.Context, params models.ListParams) ([]models.Brand, int, error) {
	params.Normalize()
	return s.brandRepo.List(ctx, params)
}

func (s *brandService) Get(ctx context.Context, idOrSlug string) (*models.Brand, error) {
	return getByIDOrSlug(ctx, idOrSlug, s.brandRepo.GetByID, s.brandRepo.GetBySlug)
}

func (s *brandService) Create(ctx context.Context, req *models.CreateBrandRequest) (*models.Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	brand := &models.Brand{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}

	invalidate(s.hub, brand.ID, ws.TagBrands)
	return brand, nil
}

func (s *brandService) Update(ctx context.Context, id string, req *models.UpdateBrandRequest) (*models.Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		brand.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != "" {
		brand.Slug = *req.Slug
	}
	if req.Description != nil {
		brand.Description = *req.Description
	}

	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, err
	}

	// Ürün kartlarında marka adı gömülü — ürün listeleri de bayatlar.
	invalidate(s.hub, brand.ID, ws.TagBrands, ws.TagProducts)
	return brand, nil
}

func (s *brandService) Delete(ctx context.Context, id string) error {
	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return err
	}
	if brand.LogoURL != nil {
		s.uploads.Remove(*brand.LogoURL)
	}

	invalidate(s.hub, id, ws.TagBrands, ws.TagProducts, ws.TagSections)
	return nil
}

func (s *brandService) UpdateLogo(ctx context.Context, id string, file multipart.File, header *multipart.FileHeader) (*models.Brand, error) {
	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.SaveImage(file, header)
	if err != nil {
		return nil, err
	}
	if err := s.brandRepo.UpdateLogo(ctx, id, &url); err != nil {
		s.uploads.Remove(url)
		return nil, err
	}

	if brand.LogoURL != nil {
		s.uploads.Remove(*brand.LogoURL)
	}
	brand.LogoURL = &url

	invalidate(s.hub, id, ws.TagBrands)
	return brand, nil
}
