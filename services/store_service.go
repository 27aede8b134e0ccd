package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// StoreService, mağaza iş mantığı interface'i.
//
// Buyer sadece kendi mağazalarını yönetir; admin hepsini. Yetki kontrolü
// Authorize'da toplanır — ProductService de ürünün mağazası için onu kullanır.
type StoreService interface {
	// List, storefront listesi: sadece aktif mağazalar.
	List(ctx context.Context, params models.ListParams) ([]models.Store, int, error)
	// ListManaged, dashboard listesi: admin için tümü, buyer için kendi mağazaları (pasifler dahil).
	ListManaged(ctx context.Context, actor *models.User, params models.ListParams) ([]models.Store, int, error)
	// Get, ID veya slug ile mağaza. public ise pasif mağaza bulunamadı sayılır.
	Get(ctx context.Context, idOrSlug string, public bool) (*models.Store, error)
	Create(ctx context.Context, actor *models.User, req *models.CreateStoreRequest) (*models.Store, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.UpdateStoreRequest) (*models.Store, error)
	Delete(ctx context.Context, actor *models.User, id string) error
	UpdateLogo(ctx context.Context, actor *models.User, id string, file multipart.File, header *multipart.FileHeader) (*models.Store, error)
	UpdateBanner(ctx context.Context, actor *models.User, id string, file multipart.File, header *multipart.FileHeader) (*models.Store, error)
	// Authorize, actor'ün mağazayı yönetebildiğini doğrular ve mağazayı döner.
	Authorize(ctx context.Context, actor *models.User, storeID string) (*models.Store, error)
}

type storeService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
	uploads   UploadService
	hub       ws.EventPublisher
}

func NewStoreService(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	uploads UploadService,
	hub ws.EventPublisher,
) StoreService {
	return &storeService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
		uploads:   uploads,
		hub:       hub,
	}
}

func (s *storeService) List(ctx context.Context, params models.ListParams) ([]models.Store, int, error) {
	params.Normalize()
	return s.storeRepo.List(ctx, models.StoreFilter{ListParams: params})
}

func (s *storeService) ListManaged(ctx context.Context, actor *models.User, params models.ListParams) ([]models.Store, int, error) {
	if err := requireManager(actor); err != nil {
		return nil, 0, err
	}
	params.Normalize()
	return s.storeRepo.List(ctx, models.StoreFilter{
		ListParams:      params,
		OwnerID:         ownerScope(actor),
		IncludeInactive: true,
	})
}

func (s *storeService) Get(ctx context.Context, idOrSlug string, public bool) (*models.Store, error) {
	store, err := getByIDOrSlug(ctx, idOrSlug, s.storeRepo.GetByID, s.storeRepo.GetBySlug)
	if err != nil {
		return nil, err
	}
	if public && !store.IsActive {
		return nil, fmt.Errorf("%w: store", pkg.ErrNotFound)
	}
	return store, nil
}

func (s *storeService) Authorize(ctx context.Context, actor *models.User, storeID string) (*models.Store, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && store.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: you do not own this store", pkg.ErrForbidden)
	}
	return store, nil
}

// Create, yeni mağaza açar. Sahibi çağıran kullanıcıdır; admin başka bir
// buyer adına açabilir (owner_id). Sahibin buyer veya admin olması gerekir.
func (s *storeService) Create(ctx context.Context, actor *models.User, req *models.CreateStoreRequest) (*models.Store, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	ownerID := actor.ID
	if actor.IsAdmin() && req.OwnerID != nil && *req.OwnerID != "" && *req.OwnerID != actor.ID {
		owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("%w: owner does not exist", pkg.ErrBadRequest)
		}
		if !owner.Role.Satisfies(models.RoleBuyer) {
			return nil, fmt.Errorf("%w: store owner must be a buyer", pkg.ErrBadRequest)
		}
		ownerID = owner.ID
	}

	store := &models.Store{
		OwnerID:     ownerID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}

	invalidate(s.hub, store.ID, ws.TagStores)
	return store, nil
}

func (s *storeService) Update(ctx context.Context, actor *models.User, id string, req *models.UpdateStoreRequest) (*models.Store, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	store, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != "" {
		store.Slug = *req.Slug
	}
	if req.Description != nil {
		store.Description = *req.Description
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}

	// Mağaza pasifleşirse ürünleri de storefront'tan düşer.
	invalidate(s.hub, store.ID, ws.TagStores, ws.TagProducts)
	return store, nil
}

// Delete, mağazayı ve (FK cascade ile) ürünlerini siler. Siparişlerde
// kalemi olan mağaza silinemez — pasife alınmalıdır.
func (s *storeService) Delete(ctx context.Context, actor *models.User, id string) error {
	store, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return err
	}

	hasOrders, err := s.storeRepo.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if hasOrders {
		return fmt.Errorf("%w: store has orders, deactivate it instead", pkg.ErrConflict)
	}

	if err := s.storeRepo.Delete(ctx, id); err != nil {
		return err
	}

	if store.LogoURL != nil {
		s.uploads.Remove(*store.LogoURL)
	}
	if store.BannerURL != nil {
		s.uploads.Remove(*store.BannerURL)
	}

	invalidate(s.hub, id, ws.TagStores, ws.TagProducts)
	return nil
}

func (s *storeService) UpdateLogo(ctx context.Context, actor *models.User, id string, file multipart.File, header *multipart.FileHeader) (*models.Store, error) {
	return s.replaceImage(ctx, actor, id, file, header,
		func(st *models.Store) **string { return &st.LogoURL },
		s.storeRepo.UpdateLogo,
	)
}

func (s *storeService) UpdateBanner(ctx context.Context, actor *models.User, id string, file multipart.File, header *multipart.FileHeader) (*models.Store, error) {
	return s.replaceImage(ctx, actor, id, file, header,
		func(st *models.Store) **string { return &st.BannerURL },
		s.storeRepo.UpdateBanner,
	)
}

// replaceImage, logo ve banner için ortak akış: yeni dosyayı kaydet,
// DB'ye yaz, eski dosyayı sil. DB yazımı başarısızsa yeni dosya silinir.
func (s *storeService) replaceImage(
	ctx context.Context,
	actor *models.User,
	id string,
	file multipart.File,
	header *multipart.FileHeader,
	field func(*models.Store) **string,
	save func(ctx context.Context, id string, url *string) error,
) (*models.Store, error) {
	store, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.SaveImage(file, header)
	if err != nil {
		return nil, err
	}
	if err := save(ctx, id, &url); err != nil {
		s.uploads.Remove(url)
		return nil, err
	}

	slot := field(store)
	if *slot != nil {
		s.uploads.Remove(**slot)
	}
	*slot = &url

	invalidate(s.hub, store.ID, ws.TagStores)
	return store, nil
}
