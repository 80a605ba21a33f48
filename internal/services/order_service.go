package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	Items           []OrderLineInput
	ShippingAddress string
	PaymentMethod   string
	TotalAmount     float64
}

// OrderService converts carts into immutable orders. Placement is a saga:
// the order record is the source of truth and commits first; cart-clear
// and purchased-item fanout run afterwards as an idempotent fulfillment
// step, repaired by Reconcile when it fails mid-way.
type OrderService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, log *zap.Logger) *OrderService {
	return &OrderService{db: db, log: log}
}

// PlaceOrder creates the order with a denormalized line snapshot, then
// clears the cart and fans out purchased-item records. If the order
// insert fails nothing else happens. If fulfillment fails after the
// order committed, the order is still placed from the customer's
// perspective: the failure is logged for reconciliation, never surfaced
// as a rejected order.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "order must contain at least one item")
	}

	order := models.Order{
		UserID:          userID,
		OrderNumber:     generateOrderNumber(),
		Status:          models.OrderConfirmed,
		PlacedAt:        time.Now(),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	}

	var subtotal float64
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "quantity must be a positive integer")
		}

		var product models.Product
		err := s.db.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		if err != nil {
			return nil, err
		}

		// Snapshot the price at placement time so later price changes
		// never alter historical totals.
		line := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Size:        item.Size,
			Color:       item.Color,
			LineTotal:   product.Price * float64(item.Quantity),
		}
		subtotal += line.LineTotal
		order.Items = append(order.Items, line)
	}

	order.Subtotal = subtotal
	if subtotal > 0 && subtotal <= freeShippingThreshold {
		order.ShippingFee = shippingFee
	}
	order.TotalAmount = input.TotalAmount
	if order.TotalAmount == 0 {
		order.TotalAmount = subtotal + order.ShippingFee
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	if err := s.fulfill(ctx, &order); err != nil {
		s.log.Error("order placed but fulfillment incomplete, reconciliation required",
			zap.String("order_id", order.ID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}

	return &order, nil
}

// fulfill clears the user's cart and writes one purchased-item per order
// line. Both steps are idempotent: clearing an empty cart is a no-op and
// purchased items are keyed (order, product) with conflicts ignored, so
// re-running after a partial failure cannot double-insert.
func (s *OrderService) fulfill(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", order.UserID).
		Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("cart clear failed: %w", err)
	}

	if err := s.fanOutPurchasedItems(ctx, order); err != nil {
		return err
	}

	return nil
}

func (s *OrderService) fanOutPurchasedItems(ctx context.Context, order *models.Order) error {
	items := order.Items
	if len(items) == 0 {
		if err := s.db.WithContext(ctx).
			Where("order_id = ?", order.ID).
			Find(&items).Error; err != nil {
			return err
		}
	}

	purchased := make([]models.PurchasedItem, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		purchased = append(purchased, models.PurchasedItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			UserID:    order.UserID,
		})
	}

	if len(purchased) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&purchased).Error; err != nil {
		return fmt.Errorf("purchased-item fanout failed: %w", err)
	}

	return nil
}

// Reconcile finds orders whose purchased-item count does not match their
// line count and re-runs the fanout for them. It returns the number of
// repaired orders.
func (s *OrderService) Reconcile(ctx context.Context) (int, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where(`(SELECT COUNT(*) FROM purchased_items WHERE purchased_items.order_id = orders.id) <
		       (SELECT COUNT(DISTINCT product_id) FROM order_items WHERE order_items.order_id = orders.id)`).
		Preload("Items").
		Find(&orders).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for i := range orders {
		if err := s.fanOutPurchasedItems(ctx, &orders[i]); err != nil {
			s.log.Error("order reconciliation failed",
				zap.String("order_id", orders[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		s.log.Info("order reconciliation repaired orders", zap.Int("count", repaired))
	}

	return repaired, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, status string, pg utils.Pagination) ([]models.Order, utils.Meta, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	return orders, pg.BuildMeta(total), nil
}

// GetOrder loads a single order owned by the user.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

var statusRank = map[string]int{
	models.OrderConfirmed: 1,
	models.OrderShipped:   2,
	models.OrderDelivered: 3,
}

// UpdateStatus moves an order forward through its lifecycle. Backward
// moves are rejected; cancellation is allowed until delivery.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case models.OrderCancelled:
		if order.Status == models.OrderDelivered || order.Status == models.OrderCancelled {
			return nil, apperr.New(apperr.Conflict, "order can no longer be cancelled")
		}
	case models.OrderShipped, models.OrderDelivered:
		if statusRank[newStatus] != statusRank[order.Status]+1 {
			return nil, apperr.New(apperr.Conflict, "invalid status transition")
		}
	default:
		return nil, apperr.New(apperr.Validation, "unknown order status")
	}

	if err := s.db.WithContext(ctx).Model(&order).
		Updates(map[string]interface{}{"status": newStatus, "updated_at": time.Now()}).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

func generateOrderNumber() string {
	suffix := int64(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(10000)); err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102150405"), suffix)
}
