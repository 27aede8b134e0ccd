package services

import (
	"context"
	"fmt"
	"log"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// UserService, admin kullanıcı yönetimi. Tüm metodlar admin actor bekler;
// rol kontrolü route katmanında RequireRole ile yapılır.
type UserService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Get(ctx context.Context, id string) (*models.User, error)
	// UpdateRole, rolü değiştirir ve kullanıcının açık WS bağlantılarını koparır —
	// client yeniden bağlanınca yeni rolüyle hedeflenir.
	UpdateRole(ctx context.Context, actor *models.User, id string, req *models.UpdateRoleRequest) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type userService struct {
	userRepo repository.UserRepository
	uploads  UploadService
	hub      ws.EventPublisher
}

func NewUserService(
	userRepo repository.UserRepository,
	uploads UploadService,
	hub ws.EventPublisher,
) UserService {
	return &userService{
		userRepo: userRepo,
		uploads:  uploads,
		hub:      hub,
	}
}

func (s *userService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown role %q", pkg.ErrBadRequest, filter.Role)
	}
	filter.Normalize()
	return s.userRepo.List(ctx, filter)
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, actor *models.User, id string, req *models.UpdateRoleRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if actor.ID == id {
		return nil, fmt.Errorf("%w: you cannot change your own role", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := models.UserRole(req.Role)
	if user.Role == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	log.Printf("[users] %s changed role of %s to %s", actor.Username, user.Username, role)
	s.hub.DisconnectUser(id)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: you cannot delete your own account", pkg.ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hasOrders, err := s.userRepo.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if hasOrders {
		return fmt.Errorf("%w: user has orders and cannot be deleted", pkg.ErrConflict)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if user.AvatarURL != nil {
		s.uploads.Remove(*user.AvatarURL)
	}
	s.hub.DisconnectUser(id)
	log.Printf("[users] %s deleted user %s", actor.Username, user.Username)
	return nil
}
