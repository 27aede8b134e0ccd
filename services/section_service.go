package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// sectionResolveConcurrency, ana sayfa bölümlerinin aynı anda kaç tanesinin
// çözüleceği. SQLite okuyucuları WAL'de paralel çalışır ama havuzu boğmamak için sınırlı.
const sectionResolveConcurrency = 4

// SectionService, storefront ana sayfa bölümleri.
type SectionService interface {
	// ListPublic, aktif bölümleri ürünleriyle birlikte döner. Ürünü olmayan
	// bölümler atlanır — storefront boş şerit göstermez.
	ListPublic(ctx context.Context) ([]models.Section, error)
	// ListAll, dashboard listesi (pasifler dahil, ürünler çözülmez).
	ListAll(ctx context.Context) ([]models.Section, error)
	Get(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, req *models.CreateSectionRequest) (*models.Section, error)
	Update(ctx context.Context, id string, req *models.UpdateSectionRequest) (*models.Section, error)
	Delete(ctx context.Context, id string) error
	// SetProducts, manual bölümün ürün listesini sırasıyla değiştirir.
	SetProducts(ctx context.Context, id string, req *models.SetSectionProductsRequest) (*models.Section, error)
}

type sectionService struct {
	db          *sql.DB
	sectionRepo repository.SectionRepository
	productRepo repository.ProductRepository
	brandRepo   repository.BrandRepository
	categories  CategoryService
	hub         ws.EventPublisher
}

func NewSectionService(
	db *sql.DB,
	sectionRepo repository.SectionRepository,
	productRepo repository.ProductRepository,
	brandRepo repository.BrandRepository,
	categories CategoryService,
	hub ws.EventPublisher,
) SectionService {
	return &sectionService{
		db:          db,
		sectionRepo: sectionRepo,
		productRepo: productRepo,
		brandRepo:   brandRepo,
		categories:  categories,
		hub:         hub,
	}
}

func (s *sectionService) ListPublic(ctx context.Context) ([]models.Section, error) {
	sections, err := s.sectionRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}

	// Her goroutine sadece kendi index'ine yazar — ek kilit gerekmez.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionResolveConcurrency)
	for i := range sections {
		g.Go(func() error {
			products, err := s.resolve(gctx, &sections[i])
			if err != nil {
				return err
			}
			sections[i].Products = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Section, 0, len(sections))
	for _, sec := range sections {
		if len(sec.Products) > 0 {
			out = append(out, sec)
		}
	}
	return out, nil
}

// resolve, bölümün kind'ına göre ürünlerini getirir.
func (s *sectionService) resolve(ctx context.Context, sec *models.Section) ([]models.Product, error) {
	filter := models.ProductFilter{
		ListParams: models.ListParams{Limit: sec.Limit},
		Public:     true,
	}

	switch sec.Kind {
	case models.SectionManual:
		products, err := s.productRepo.GetByIDs(ctx, sec.ProductIDs, true)
		if err != nil {
			return nil, err
		}
		if len(products) > sec.Limit {
			products = products[:sec.Limit]
		}
		return products, nil
	case models.SectionFeatured:
		filter.Featured = true
		filter.Sort = models.SortNewest
	case models.SectionNewest:
		filter.Sort = models.SortNewest
	case models.SectionCategory:
		if sec.RefID == nil {
			return nil, nil
		}
		ids, err := s.categories.DescendantIDs(ctx, *sec.RefID)
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
		filter.Sort = models.SortPopular
	case models.SectionBrand:
		if sec.RefID == nil {
			return nil, nil
		}
		filter.BrandID = *sec.RefID
		filter.Sort = models.SortPopular
	default:
		return nil, nil
	}

	products, _, err := s.productRepo.List(ctx, filter)
	return products, err
}

func (s *sectionService) ListAll(ctx context.Context) ([]models.Section, error) {
	return s.sectionRepo.List(ctx, false)
}

func (s *sectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	return s.sectionRepo.GetByID(ctx, id)
}

func (s *sectionService) Create(ctx context.Context, req *models.CreateSectionRequest) (*models.Section, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	kind := models.SectionKind(req.Kind)
	refID, err := s.checkRef(ctx, kind, req.RefID)
	if err != nil {
		return nil, err
	}

	section := &models.Section{
		Title:    req.Title,
		Kind:     kind,
		Position: req.Position,
		Limit:    req.Limit,
		IsActive: true,
	}
	if kind.NeedsRef() {
		section.RefID = refID
	}
	if req.IsActive != nil {
		section.IsActive = *req.IsActive
	}

	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}

	invalidate(s.hub, section.ID, ws.TagSections)
	return section, nil
}

func (s *sectionService) Update(ctx context.Context, id string, req *models.UpdateSectionRequest) (*models.Section, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		section.Title = *req.Title
	}
	if req.RefID != nil {
		if !section.Kind.NeedsRef() {
			return nil, fmt.Errorf("%w: %s sections do not take a ref_id", pkg.ErrBadRequest, section.Kind)
		}
		refID, err := s.checkRef(ctx, section.Kind, req.RefID)
		if err != nil {
			return nil, err
		}
		section.RefID = refID
	}
	if req.Position != nil {
		section.Position = *req.Position
	}
	if req.Limit != nil {
		section.Limit = *req.Limit
	}
	if req.IsActive != nil {
		section.IsActive = *req.IsActive
	}

	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}

	invalidate(s.hub, section.ID, ws.TagSections)
	return section, nil
}

func (s *sectionService) Delete(ctx context.Context, id string) error {
	if err := s.sectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(s.hub, id, ws.TagSections)
	return nil
}

func (s *sectionService) SetProducts(ctx context.Context, id string, req *models.SetSectionProductsRequest) (*models.Section, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if section.Kind != models.SectionManual {
		return nil, fmt.Errorf("%w: only manual sections have a product list", pkg.ErrBadRequest)
	}

	// Silme + ekleme tek transaction'da: yarıda kalırsa eski liste korunur.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return repository.NewSQLiteSectionRepo(tx).SetProducts(ctx, id, req.ProductIDs)
	})
	if err != nil {
		return nil, err
	}

	invalidate(s.hub, id, ws.TagSections)
	return s.sectionRepo.GetByID(ctx, id)
}

// checkRef, category/brand bölümlerinin referansının var olduğunu doğrular ve
// kaydedilecek ID'yi döner. Kategori slug ile de verilebilir; ID'ye çevrilir.
func (s *sectionService) checkRef(ctx context.Context, kind models.SectionKind, refID *string) (*string, error) {
	if !kind.NeedsRef() || refID == nil {
		return refID, nil
	}

	var err error
	resolved := *refID
	switch kind {
	case models.SectionCategory:
		var cat *models.Category
		if cat, err = s.categories.Get(ctx, *refID); err == nil {
			resolved = cat.ID
		}
	case models.SectionBrand:
		_, err = s.brandRepo.GetByID(ctx, *refID)
	}
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, fmt.Errorf("%w: ref_id does not exist", pkg.ErrBadRequest)
	}
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}
