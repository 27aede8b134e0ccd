package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// relatedLimit, ürün detay sayfasındaki "benzer ürünler" şeridinin uzunluğu.
const relatedLimit = 8

// ProductQuery, ürün listesi isteği. Category, Brand ve Store ID veya slug
// olabilir; servis bunları ProductFilter'ın ID alanlarına çözer.
type ProductQuery struct {
	models.ProductFilter
	Category string
	Brand    string
	Store    string
}

// ProductService, ürün iş mantığı interface'i.
type ProductService interface {
	// List, storefront listesi — sadece aktif mağazaların aktif ürünleri.
	List(ctx context.Context, q ProductQuery) ([]models.Product, int, error)
	// ListManaged, dashboard listesi — buyer için kendi mağazalarının tüm ürünleri.
	ListManaged(ctx context.Context, actor *models.User, q ProductQuery) ([]models.Product, int, error)
	Get(ctx context.Context, idOrSlug string) (*models.Product, error)
	GetManaged(ctx context.Context, actor *models.User, id string) (*models.Product, error)
	Related(ctx context.Context, idOrSlug string) ([]models.Product, error)

	Create(ctx context.Context, actor *models.User, req *models.CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, actor *models.User, id string) error

	AddImages(ctx context.Context, actor *models.User, id string, files []*multipart.FileHeader) (*models.Product, error)
	DeleteImage(ctx context.Context, actor *models.User, productID, imageID string) (*models.Product, error)
	ReorderImages(ctx context.Context, actor *models.User, productID string, req *models.ReorderImagesRequest) (*models.Product, error)
}

type productService struct {
	db          *sql.DB
	productRepo repository.ProductRepository
	brandRepo   repository.BrandRepository
	stores      StoreService
	categories  CategoryService
	uploads     UploadService
	hub         ws.EventPublisher
}

func NewProductService(
	db *sql.DB,
	productRepo repository.ProductRepository,
	brandRepo repository.BrandRepository,
	stores StoreService,
	categories CategoryService,
	uploads UploadService,
	hub ws.EventPublisher,
) ProductService {
	return &productService{
		db:          db,
		productRepo: productRepo,
		brandRepo:   brandRepo,
		stores:      stores,
		categories:  categories,
		uploads:     uploads,
		hub:         hub,
	}
}

func (s *productService) List(ctx context.Context, q ProductQuery) ([]models.Product, int, error) {
	q.Public = true
	q.OwnerID = ""
	return s.list(ctx, q, true)
}

func (s *productService) ListManaged(ctx context.Context, actor *models.User, q ProductQuery) ([]models.Product, int, error) {
	if err := requireManager(actor); err != nil {
		return nil, 0, err
	}
	q.Public = false
	q.OwnerID = ownerScope(actor)
	return s.list(ctx, q, false)
}

// list, slug/ID referanslarını çözer. Storefront'ta bilinmeyen bir kategori
// veya marka 404 değil boş liste döner — eski bir link sayfayı kırmasın.
func (s *productService) list(ctx context.Context, q ProductQuery, public bool) ([]models.Product, int, error) {
	filter := q.ProductFilter

	if q.Category != "" {
		ids, err := s.categories.DescendantIDs(ctx, q.Category)
		if errors.Is(err, pkg.ErrNotFound) {
			return []models.Product{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.CategoryIDs = ids
	}

	if q.Brand != "" {
		brand, err := getByIDOrSlug(ctx, q.Brand, s.brandRepo.GetByID, s.brandRepo.GetBySlug)
		if errors.Is(err, pkg.ErrNotFound) {
			return []models.Product{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.BrandID = brand.ID
	}

	if q.Store != "" {
		store, err := s.stores.Get(ctx, q.Store, public)
		if errors.Is(err, pkg.ErrNotFound) {
			return []models.Product{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.StoreID = store.ID
	}

	return s.productRepo.List(ctx, filter)
}

// Get, storefront ürün detayı. Pasif ürün veya pasif mağaza ürünü 404'tür.
func (s *productService) Get(ctx context.Context, idOrSlug string) (*models.Product, error) {
	product, err := getByIDOrSlug(ctx, idOrSlug, s.productRepo.GetByID, s.productRepo.GetBySlug)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, fmt.Errorf("%w: product", pkg.ErrNotFound)
	}
	return product, nil
}

func (s *productService) GetManaged(ctx context.Context, actor *models.User, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Authorize(ctx, actor, product.StoreID); err != nil {
		return nil, err
	}
	return product, nil
}

// Related, aynı kategorideki en çok satan ürünler (ürünün kendisi hariç).
func (s *productService) Related(ctx context.Context, idOrSlug string) ([]models.Product, error) {
	product, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []models.Product{}, nil
	}

	filter := models.ProductFilter{
		ListParams:  models.ListParams{Sort: models.SortPopular, Limit: relatedLimit},
		CategoryIDs: []string{*product.CategoryID},
		Public:      true,
		ExcludeID:   product.ID,
	}
	related, _, err := s.productRepo.List(ctx, filter)
	return related, err
}

func (s *productService) Create(ctx context.Context, actor *models.User, req *models.CreateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.stores.Authorize(ctx, actor, req.StoreID); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:        req.StoreID,
		BrandID:        req.BrandID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		SKU:            req.SKU,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		IsActive:       true,
		IsFeatured:     req.IsFeatured,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.changed(product.ID)
	// Brand/category/store özetleri için tekrar okunur.
	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, actor *models.User, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	product, err := s.GetManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.SetBrand {
		product.BrandID = req.BrandID
	}
	if req.SetCategory {
		product.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != "" {
		product.Slug = *req.Slug
	}
	if req.SKU != nil {
		product.SKU = emptyToNil(*req.SKU)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		// 0 göndermek indirim etiketini kaldırır.
		if *req.CompareAtPrice == 0 {
			product.CompareAtPrice = nil
		} else {
			product.CompareAtPrice = req.CompareAtPrice
		}
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.changed(product.ID)
	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *productService) Delete(ctx context.Context, actor *models.User, id string) error {
	product, err := s.GetManaged(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, img := range product.Images {
		s.uploads.Remove(img.URL)
	}

	invalidate(s.hub, id, ws.TagProducts, ws.TagSections, ws.TagStores)
	return nil
}

// AddImages, görselleri ürünün sonuna ekler.
//
// Önce tüm dosyalar diske yazılır, sonra DB kayıtları tek transaction'da
// eklenir. Herhangi bir adım başarısızsa yazılan dosyalar silinir — yarım
// yüklenmiş galeri kalmaz.
func (s *productService) AddImages(ctx context.Context, actor *models.User, id string, files []*multipart.FileHeader) (*models.Product, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", pkg.ErrBadRequest)
	}

	product, err := s.GetManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	existing := len(product.Images)
	if existing+len(files) > models.MaxProductImages {
		return nil, fmt.Errorf("%w: a product can have at most %d images", pkg.ErrBadRequest, models.MaxProductImages)
	}

	urls := make([]string, 0, len(files))
	cleanup := func() {
		for _, u := range urls {
			s.uploads.Remove(u)
		}
	}

	for _, fh := range files {
		url, err := s.saveHeader(fh)
		if err != nil {
			cleanup()
			return nil, err
		}
		urls = append(urls, url)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteProductRepo(tx)
		for i, url := range urls {
			img := &models.ProductImage{ProductID: id, URL: url, Position: existing + i}
			if err := repo.AddImage(ctx, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	s.changed(id)
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) saveHeader(fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()
	return s.uploads.SaveImage(file, fh)
}

// DeleteImage, görseli siler ve kalanların position'larını 0..n-1 olarak sıkıştırır.
func (s *productService) DeleteImage(ctx context.Context, actor *models.User, productID, imageID string) (*models.Product, error) {
	product, err := s.GetManaged(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	var target *models.ProductImage
	remaining := make([]string, 0, len(product.Images))
	for i := range product.Images {
		if product.Images[i].ID == imageID {
			target = &product.Images[i]
			continue
		}
		remaining = append(remaining, product.Images[i].ID)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: image", pkg.ErrNotFound)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := repository.NewSQLiteProductRepo(tx)
		if err := repo.DeleteImage(ctx, imageID); err != nil {
			return err
		}
		return repo.SetImagePositions(ctx, productID, remaining)
	})
	if err != nil {
		return nil, err
	}

	s.uploads.Remove(target.URL)
	s.changed(productID)
	return s.productRepo.GetByID(ctx, productID)
}

// ReorderImages, görsellerin yeni sırasını yazar. Liste ürünün görsel
// kümesiyle birebir aynı olmalı — eksik, fazla veya tekrar eden ID reddedilir.
func (s *productService) ReorderImages(ctx context.Context, actor *models.User, productID string, req *models.ReorderImagesRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	product, err := s.GetManaged(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	if !sameIDSet(product.Images, req.ImageIDs) {
		return nil, fmt.Errorf("%w: image_ids must list every image of the product exactly once", pkg.ErrBadRequest)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return repository.NewSQLiteProductRepo(tx).SetImagePositions(ctx, productID, req.ImageIDs)
	})
	if err != nil {
		return nil, err
	}

	s.changed(productID)
	return s.productRepo.GetByID(ctx, productID)
}

// changed, client'lara haber verir. Kategori ağacındaki ürün sayıları da
// bayatlar (aktiflik, kategori ya da silme), bu yüzden kategori cache'i boşaltılır.
func (s *productService) changed(id string) {
	s.categories.InvalidateCounts()
	invalidate(s.hub, id, ws.TagProducts)
}

func sameIDSet(images []models.ProductImage, ids []string) bool {
	if len(images) != len(ids) {
		return false
	}
	want := make(map[string]bool, len(images))
	for _, img := range images {
		want[img.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return true
}
