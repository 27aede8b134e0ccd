package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/pkg/email"
	"github.com/akinalp/pazar/pkg/metrics"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/ws"
)

// orderNumberAttempts, sipariş numarası çakışırsa kaç kez yeniden üretileceği.
const orderNumberAttempts = 3

// OrderService, checkout ve sipariş yaşam döngüsü.
type OrderService interface {
	// Checkout, kullanıcının sepetinden sipariş oluşturur.
	Checkout(ctx context.Context, actor *models.User, req *models.CheckoutRequest) (*models.Order, error)

	ListMine(ctx context.Context, userID string, filter models.OrderFilter) ([]models.Order, int, error)
	GetMine(ctx context.Context, userID, orderID string) (*models.Order, error)
	// CancelMine, müşterinin kendi pending siparişini iptal etmesi.
	CancelMine(ctx context.Context, actor *models.User, orderID string) (*models.Order, error)

	// ListManaged, admin için tüm siparişler; buyer için mağazalarından kalem
	// içeren siparişler (kalemler de kendi mağazalarıyla sınırlı).
	ListManaged(ctx context.Context, actor *models.User, filter models.OrderFilter) ([]models.Order, int, error)
	GetManaged(ctx context.Context, actor *models.User, orderID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor *models.User, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error)

	// CancelStale, maxAge'den eski pending siparişleri iptal eder (cleanup job).
	CancelStale(ctx context.Context, maxAge time.Duration) (int, error)
}

type orderService struct {
	db        *sql.DB
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
	settings  SettingsService
	mail      *MailDispatcher
	hub       ws.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderService, constructor. m nil olabilir (metrics kapalı).
func NewOrderService(
	db *sql.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	settings SettingsService,
	mail *MailDispatcher,
	hub ws.EventPublisher,
	m *metrics.Metrics,
) OrderService {
	return &orderService{
		db:        db,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		storeRepo: storeRepo,
		settings:  settings,
		mail:      mail,
		hub:       hub,
		metrics:   m,
	}
}

// Checkout, sepeti tek bir transaction içinde siparişe çevirir:
//
//  1. Sepet satırlarını canlı fiyat/stokla oku (boşsa 400)
//  2. Her satır için ürün aktif mi, stok yetiyor mu kontrol et
//  3. Stoğu guarded UPDATE ile düş — eşzamanlı checkout'ta ikinci işlem 409 alır
//  4. Toplamları ayarlardan hesapla, siparişi ve kalemleri yaz
//  5. Sepeti boşalt
//
// Herhangi bir adım hata dönerse ROLLBACK — stok da sepet de ilk haline döner.
// Event, email ve metrik commit'ten SONRA yapılır; rollback olan sipariş için
// bildirim gitmez.
func (s *orderService) Checkout(ctx context.Context, actor *models.User, req *models.CheckoutRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	var (
		order  *models.Order
		owners []string
		low    []ws.StockLowData
	)

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		carts := repository.NewSQLiteCartRepo(tx)
		products := repository.NewSQLiteProductRepo(tx)
		orders := repository.NewSQLiteOrderRepo(tx)

		lines, err := carts.Lines(ctx, actor.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", pkg.ErrBadRequest)
		}

		items := make([]models.OrderItem, 0, len(lines))
		var subtotal int64
		for _, line := range lines {
			if !line.IsActive {
				return fmt.Errorf("%w: %s is no longer available", pkg.ErrBadRequest, line.Name)
			}
			if line.Stock < line.Quantity {
				return fmt.Errorf("%w: only %d of %s left in stock", pkg.ErrConflict, line.Stock, line.Name)
			}

			remaining, err := products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if remaining <= models.LowStockThreshold {
				low = append(low, ws.StockLowData{
					ProductID: line.ProductID,
					StoreID:   line.StoreID,
					Name:      line.Name,
					Stock:     remaining,
				})
			}

			productID := line.ProductID
			items = append(items, models.OrderItem{
				ProductID:   &productID,
				StoreID:     line.StoreID,
				ProductName: line.Name,
				ImageURL:    line.ImageURL,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
			})
			subtotal += line.UnitPrice * int64(line.Quantity)
		}

		totals := models.ComputeTotals(subtotal, settings)
		order = &models.Order{
			UserID:          actor.ID,
			Status:          models.OrderPending,
			Items:           items,
			Subtotal:        totals.Subtotal,
			ShippingFee:     totals.ShippingFee,
			Tax:             totals.Tax,
			Total:           totals.Total,
			Currency:        settings.Currency,
			ShippingAddress: req.ShippingAddress,
			Note:            req.Note,
		}

		if err := createWithNumber(ctx, orders, order); err != nil {
			return err
		}

		owners, err = orders.OwnersOf(ctx, order.ID)
		if err != nil {
			return err
		}

		return carts.Clear(ctx, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated(order.Total)
	log.Printf("[order] %s created by %s (total=%d %s)", order.OrderNumber, actor.ID, order.Total, order.Currency)

	s.hub.Publish(
		ws.Target{Roles: []models.UserRole{models.RoleAdmin}, UserIDs: owners},
		ws.Event{Op: ws.OpOrderCreate, Data: orderEventData(order)},
	)
	s.notifyLowStock(ctx, low)
	invalidate(s.hub, "", ws.TagProducts)

	to := recipientOf(actor)
	summary := orderEmailOf(order)
	s.mail.Go("order confirmation", func(ctx context.Context, sender email.Sender) error {
		return sender.SendOrderConfirmation(ctx, to, summary)
	})

	return order, nil
}

// createWithNumber, rastgele sipariş numarasıyla siparişi yazar. UUID'nin
// ilk 8 hex'i çakışırsa (unique index) yeni numarayla tekrar dener.
func createWithNumber(ctx context.Context, orders repository.OrderRepository, order *models.Order) error {
	var err error
	for range orderNumberAttempts {
		order.OrderNumber = newOrderNumber()
		err = orders.Create(ctx, order)
		if !errors.Is(err, pkg.ErrConflict) {
			return err
		}
	}
	return err
}

// newOrderNumber, "PZ-1A2B3C4D" formatında insan tarafından okunabilir numara.
func newOrderNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PZ-" + strings.ToUpper(hex[:8])
}

// notifyLowStock, stoğu eşik altına düşen ürünleri admin'lere ve mağaza sahibine bildirir.
func (s *orderService) notifyLowStock(ctx context.Context, low []ws.StockLowData) {
	for _, l := range low {
		target := ws.Target{Roles: []models.UserRole{models.RoleAdmin}}
		store, err := s.storeRepo.GetByID(ctx, l.StoreID)
		if err != nil {
			log.Printf("[order] low stock owner lookup failed for store %s: %v", l.StoreID, err)
		} else {
			target.UserIDs = []string{store.OwnerID}
		}
		s.hub.Publish(target, ws.Event{Op: ws.OpProductStockLow, Data: l})
	}
}

func (s *orderService) ListMine(ctx context.Context, userID string, filter models.OrderFilter) ([]models.Order, int, error) {
	filter.UserID = userID
	filter.StoreOwnerID = ""
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) GetMine(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Başkasının siparişi 403 değil 404 — sipariş ID'lerinin varlığı sızdırılmaz.
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order", pkg.ErrNotFound)
	}
	return order, nil
}

func (s *orderService) CancelMine(ctx context.Context, actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.GetMine(ctx, actor.ID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", pkg.ErrConflict)
	}

	if err := s.transition(ctx, order, models.OrderCancelled); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) ListManaged(ctx context.Context, actor *models.User, filter models.OrderFilter) ([]models.Order, int, error) {
	if err := requireManager(actor); err != nil {
		return nil, 0, err
	}
	filter.StoreOwnerID = ownerScope(actor)
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) GetManaged(ctx context.Context, actor *models.User, orderID string) (*models.Order, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return s.orderRepo.GetByID(ctx, orderID)
	}
	return s.orderRepo.GetForOwner(ctx, orderID, actor.ID)
}

// UpdateStatus, back-office durum değişikliği.
//
// Admin her izinli geçişi yapabilir. Buyer sadece tüm kalemleri kendi
// mağazalarına ait siparişlerin durumunu değiştirebilir — çok satıcılı bir
// siparişi tek satıcı "kargolandı" yapamaz.
func (s *orderService) UpdateStatus(ctx context.Context, actor *models.User, orderID string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		owners, err := s.orderRepo.OwnersOf(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(owners, actor.ID) {
			return nil, fmt.Errorf("%w: order", pkg.ErrNotFound)
		}
		if len(owners) != 1 {
			return nil, fmt.Errorf("%w: order contains items from other stores", pkg.ErrForbidden)
		}
	}

	if err := s.transition(ctx, order, models.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	return s.GetManaged(ctx, actor, orderID)
}

func (s *orderService) CancelStale(ctx context.Context, maxAge time.Duration) (int, error) {
	ids, err := s.orderRepo.ListPendingBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			log.Printf("[order] stale order %s lookup failed: %v", id, err)
			continue
		}
		if err := s.transition(ctx, order, models.OrderCancelled); err != nil {
			// Arada onaylanmış olabilir — ErrConflict beklenen bir durum.
			if !errors.Is(err, pkg.ErrConflict) {
				log.Printf("[order] failed to cancel stale order %s: %v", order.OrderNumber, err)
			}
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// transition, durum geçişini uygular. İptalde kalemler stoğa geri eklenir;
// durum değişikliği ve restock aynı transaction'dadır.
func (s *orderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus) error {
	from := order.Status
	if from.IsFinal() {
		return fmt.Errorf("%w: order is already %s", pkg.ErrConflict, from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: cannot change order status from %s to %s", pkg.ErrConflict, from, to)
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteOrderRepo(tx).UpdateStatus(ctx, order.ID, from, to); err != nil {
			return err
		}
		if to != models.OrderCancelled {
			return nil
		}

		products := repository.NewSQLiteProductRepo(tx)
		for _, it := range order.Items {
			// Ürün silinmişse snapshot'ın product_id'si NULL'dır; geri eklenecek stok yok.
			if it.ProductID == nil {
				continue
			}
			if err := products.Restock(ctx, *it.ProductID, it.Quantity); err != nil && !errors.Is(err, pkg.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Status = to

	s.metrics.OrderStatusChanged(string(to))
	log.Printf("[order] %s: %s → %s", order.OrderNumber, from, to)

	owners, err := s.orderRepo.OwnersOf(ctx, order.ID)
	if err != nil {
		log.Printf("[order] owners lookup failed for %s: %v", order.OrderNumber, err)
	}
	s.hub.Publish(
		ws.Target{Roles: []models.UserRole{models.RoleAdmin}, UserIDs: append(owners, order.UserID)},
		ws.Event{Op: ws.OpOrderUpdate, Data: orderEventData(order)},
	)
	if to == models.OrderCancelled {
		invalidate(s.hub, "", ws.TagProducts)
	}

	customer, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		log.Printf("[order] customer lookup failed for %s: %v", order.OrderNumber, err)
		return nil
	}
	recipient := recipientOf(customer)
	summary := orderEmailOf(order)
	s.mail.Go("order status", func(ctx context.Context, sender email.Sender) error {
		return sender.SendOrderStatus(ctx, recipient, summary)
	})
	return nil
}

func orderEventData(o *models.Order) ws.OrderEventData {
	return ws.OrderEventData{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      string(o.Status),
		Total:       o.Total,
		Currency:    o.Currency,
	}
}

