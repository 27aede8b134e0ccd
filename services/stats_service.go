package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/repository"
)

const recentOrdersLimit = 5

// StatsService, dashboard özet kartları.
type StatsService interface {
	// Dashboard, admin için sistem geneli; buyer için kendi mağazalarıyla sınırlı sayılar.
	Dashboard(ctx context.Context, actor *models.User) (*models.DashboardStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	orderRepo repository.OrderRepository
}

func NewStatsService(statsRepo repository.StatsRepository, orderRepo repository.OrderRepository) StatsService {
	return &statsService{statsRepo: statsRepo, orderRepo: orderRepo}
}

func (s *statsService) Dashboard(ctx context.Context, actor *models.User) (*models.DashboardStats, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	owner := ownerScope(actor)

	// Sayaçlar birbirinden bağımsız; her biri kendi alanına yazar.
	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	if owner == "" {
		g.Go(func() (err error) {
			stats.Users, err = s.statsRepo.CountUsers(gctx)
			return err
		})
	}
	g.Go(func() (err error) {
		stats.Products, err = s.statsRepo.CountProducts(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		stats.Stores, err = s.statsRepo.CountStores(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		stats.Orders, err = s.statsRepo.CountOrders(gctx, owner, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PendingOrders, err = s.statsRepo.CountOrders(gctx, owner, string(models.OrderPending))
		return err
	})
	g.Go(func() (err error) {
		stats.LowStock, err = s.statsRepo.CountLowStock(gctx, owner, models.LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		stats.Revenue, err = s.statsRepo.Revenue(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, _, err = s.orderRepo.List(gctx, models.OrderFilter{
			ListParams:   models.ListParams{Page: 1, Limit: recentOrdersLimit},
			StoreOwnerID: owner,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.Order{}
	}
	return &stats, nil
}
