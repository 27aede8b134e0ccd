package services

import (
	"context"
	"mime/multipart"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg/cache"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

const settingsCacheKey = "settings"

// SettingsService, mağaza geneli ayarlar. Her storefront sayfası ve her
// checkout ayarları okuduğu için TTL cache'ten sunulur; yazmada cache boşaltılır.
type SettingsService interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SystemSettings, error)
	UpdateLogo(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.SystemSettings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	uploads      UploadService
	hub          ws.EventPublisher
	cache        *cache.TTLCache[string, models.SystemSettings]
}

// NewSettingsService, constructor. settingsCache'in Close'u çağırana aittir.
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	uploads UploadService,
	hub ws.EventPublisher,
	settingsCache *cache.TTLCache[string, models.SystemSettings],
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		uploads:      uploads,
		hub:          hub,
		cache:        settingsCache,
	}
}

// Get, ayarların bir kopyasını döner — çağıran değiştirse de cache bozulmaz.
func (s *settingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	settings, err := s.cache.GetOrLoad(settingsCacheKey, func() (models.SystemSettings, error) {
		kv, err := s.settingsRepo.GetAll(ctx)
		if err != nil {
			return models.SystemSettings{}, err
		}
		return models.SettingsFromMap(kv), nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *settingsService) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SystemSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	req.Apply(settings)

	if err := s.save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) UpdateLogo(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.SystemSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.SaveImage(file, header)
	if err != nil {
		return nil, err
	}

	old := settings.LogoURL
	settings.LogoURL = &url
	if err := s.save(ctx, settings); err != nil {
		s.uploads.Remove(url)
		return nil, err
	}

	if old != nil {
		s.uploads.Remove(*old)
	}
	return settings, nil
}

func (s *settingsService) save(ctx context.Context, settings *models.SystemSettings) error {
	if err := s.settingsRepo.SetMany(ctx, settings.ToMap()); err != nil {
		return err
	}
	s.cache.Delete(settingsCacheKey)
	invalidate(s.hub, "", ws.TagSettings)
	return nil
}
