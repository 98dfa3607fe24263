package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/events"
	"food-ordering-api/logging"
	"food-ordering-api/metrics"
	"food-ordering-api/models"
	"food-ordering-api/statemachine"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
)

// Delivery estimate: a flat base plus a little per order line.
const (
	baseDeliveryMinutes    = 30
	perLineDeliveryMinutes = 5
)

type OrderService struct {
	store     *store.Store
	publisher events.Publisher
	now       func() time.Time
}

type OrderOption func(*OrderService)

func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(s *store.Store, p events.Publisher, opts ...OrderOption) *OrderService {
	if p == nil {
		p = events.Nop{}
	}
	svc := &OrderService{store: s, publisher: p, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Caller identifies whoever presented an access token.
type Caller struct {
	Kind     models.AccountKind
	Username string
}

type LineInput struct {
	FoodItemID uint
	Quantity   int
	Comment    string
}

type PlaceOrderInput struct {
	ShopID          uint
	DeliveryAddress string
	Comment         string
	Lines           []LineInput
}

type LinePatch struct {
	ID       uint
	Quantity *int
	Comment  *string
}

type UpdateOrderInput struct {
	Status          *models.OrderStatus
	DeliveryAddress *string
	Comment         *string
	Lines           []LinePatch
}

func (in UpdateOrderInput) edits() bool {
	return in.DeliveryAddress != nil || in.Comment != nil || len(in.Lines) > 0
}

// EstimateMinutes is the delivery estimate for an order with n lines.
func EstimateMinutes(lines int) int {
	return baseDeliveryMinutes + perLineDeliveryMinutes*lines
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"event":    e.Type,
			"order_id": e.OrderID,
		}).Warn("order event not published")
	}
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: an order needs at least one line", ErrInvalid)
	}
	for i, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line %d: quantity must be positive", ErrInvalid, i+1)
		}
	}
	return nil
}

// PlaceOrder creates a PENDING order with its lines and first history entry
// in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, customer *models.Customer, in PlaceOrderInput) (*models.Order, error) {
	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		return nil, fmt.Errorf("%w: delivery_address is required", ErrInvalid)
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	minutes := EstimateMinutes(len(in.Lines))
	order := &models.Order{
		Status:           statemachine.Initial,
		OrderTime:        now,
		EstimatedTime:    now.Add(time.Duration(minutes) * time.Minute),
		EstimatedMinutes: minutes,
		DeliveryAddress:  address,
		Comment:          strings.TrimSpace(in.Comment),
		CustomerID:       customer.ID,
		ShopID:           in.ShopID,
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.ShopByID(ctx, in.ShopID); err != nil {
			return notFound(err, "shop %d does not exist", in.ShopID)
		}

		ids := make([]uint, 0, len(in.Lines))
		for _, l := range in.Lines {
			ids = append(ids, l.FoodItemID)
		}
		items, err := tx.FoodItemsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, l := range in.Lines {
			item, ok := items[l.FoodItemID]
			switch {
			case !ok:
				return fmt.Errorf("%w: food item %d does not exist", ErrNotFound, l.FoodItemID)
			case item.ShopID != in.ShopID:
				return fmt.Errorf("%w: food item %d is not sold by shop %d", ErrInvalid, item.ID, in.ShopID)
			case !item.IsActive:
				return fmt.Errorf("%w: food item %q is not available", ErrInvalid, item.Name)
			}
			order.Lines = append(order.Lines, models.OrderLine{
				FoodItemID: l.FoodItemID,
				Quantity:   l.Quantity,
				Comment:    l.Comment,
			})
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.AddStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			Actor:     models.KindCustomer,
			ChangedBy: customer.ID,
			Note:      "order placed",
		})
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.store.OrderByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	metrics.OrderPlaced(placed.ShopID)
	s.publish(ctx, events.NewOrderEvent(events.OrderPlaced, placed, models.KindCustomer, ""))
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"order_id":    placed.ID,
		"customer_id": customer.ID,
		"shop_id":     placed.ShopID,
		"lines":       len(placed.Lines),
	}).Info("order placed")
	return placed, nil
}

// GetOrder returns the order when the caller placed it or the caller's shop
// received it. Anyone else gets ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.store.OrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %d does not exist", id)
	}

	visible := false
	switch caller.Kind {
	case models.KindCustomer:
		c, err := s.store.CustomerByUsername(ctx, caller.Username)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		visible = c != nil && c.ID == order.CustomerID
	case models.KindShop:
		sh, err := s.store.ShopByUsername(ctx, caller.Username)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		visible = sh != nil && sh.ID == order.ShopID
	}
	if !visible {
		return nil, fmt.Errorf("%w: order %d does not exist", ErrNotFound, id)
	}
	return order, nil
}

// CustomerOrders returns the customer with every order they placed.
func (s *OrderService) CustomerOrders(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	c, err := s.store.CustomerWithOrders(ctx, customer.ID)
	if err != nil {
		return nil, notFound(err, "customer %d does not exist", customer.ID)
	}
	return c, nil
}

// UpdateOrder lets the owning customer edit delivery details and line
// quantities while the order is open, and cancel it.
func (s *OrderService) UpdateOrder(ctx context.Context, customer *models.Customer, id uint, in UpdateOrderInput) (*models.Order, error) {
	var prev models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		order, err := tx.OrderByID(ctx, id)
		if err != nil {
			return notFound(err, "order %d does not exist", id)
		}
		if order.CustomerID != customer.ID {
			return fmt.Errorf("%w: order %d does not belong to you", ErrUnauthorized, id)
		}
		if in.Status != nil && *in.Status != models.StatusCanceled {
			return fmt.Errorf("%w: customers may only set an order to %s", ErrInvalidTransition, models.StatusCanceled)
		}
		prev = order.Status

		if in.edits() {
			if order.Status.Terminal() {
				return fmt.Errorf("%w: order %d is %s and can no longer be changed", ErrConflict, id, order.Status)
			}
			if err := applyOrderEdits(ctx, tx, order, in); err != nil {
				return err
			}
		}

		if in.Status != nil {
			if err := statemachine.CanTransition(order.Status, *in.Status, models.KindCustomer); err != nil {
				return err
			}
			if err := tx.UpdateOrder(ctx, order, map[string]any{"status": *in.Status}); err != nil {
				return err
			}
			return tx.AddStatusHistory(ctx, &models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: prev,
				ToStatus:   *in.Status,
				Actor:      models.KindCustomer,
				ChangedBy:  customer.ID,
				Note:       "canceled by customer",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Status != prev {
		metrics.OrderTransition(prev, updated.Status, models.KindCustomer)
		s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated, models.KindCustomer, prev))
	} else {
		s.publish(ctx, events.NewOrderEvent(events.OrderUpdated, updated, models.KindCustomer, ""))
	}
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"order_id":    id,
		"customer_id": customer.ID,
		"status":      updated.Status,
	}).Info("order updated")
	return updated, nil
}

func applyOrderEdits(ctx context.Context, tx *store.Store, order *models.Order, in UpdateOrderInput) error {
	fields := map[string]any{}
	if in.DeliveryAddress != nil {
		addr := strings.TrimSpace(*in.DeliveryAddress)
		if addr == "" {
			return fmt.Errorf("%w: delivery_address must not be empty", ErrInvalid)
		}
		fields["delivery_address"] = addr
	}
	if in.Comment != nil {
		fields["comment"] = strings.TrimSpace(*in.Comment)
	}
	if err := tx.UpdateOrder(ctx, order, fields); err != nil {
		return err
	}

	lines := make(map[uint]*models.OrderLine, len(order.Lines))
	for i := range order.Lines {
		lines[order.Lines[i].ID] = &order.Lines[i]
	}
	for _, p := range in.Lines {
		line, ok := lines[p.ID]
		if !ok {
			return fmt.Errorf("%w: order %d has no line %d", ErrNotFound, order.ID, p.ID)
		}
		lf := map[string]any{}
		if p.Quantity != nil {
			if *p.Quantity <= 0 {
				return fmt.Errorf("%w: line %d: quantity must be positive", ErrInvalid, p.ID)
			}
			lf["quantity"] = *p.Quantity
		}
		if p.Comment != nil {
			lf["comment"] = *p.Comment
		}
		if err := tx.UpdateOrderLine(ctx, line, lf); err != nil {
			return err
		}
	}
	return nil
}

// UpdateOrderStatus moves one of the shop's orders along. Cancelling is
// reserved to the customer.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, shop *models.Shop, id uint, status models.OrderStatus, note string) (*models.Order, error) {
	if !shop.CanManage() {
		return nil, fmt.Errorf("%w: shop staff only", ErrUnauthorized)
	}
	if status == models.StatusCanceled {
		return nil, fmt.Errorf("%w: only the customer who placed an order can cancel it", ErrUnauthorized)
	}

	var prev models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		order, err := tx.OrderByID(ctx, id)
		if err != nil {
			return notFound(err, "order %d does not exist", id)
		}
		if order.ShopID != shop.ID {
			return fmt.Errorf("%w: order %d does not exist", ErrNotFound, id)
		}
		prev = order.Status
		if err := statemachine.CanTransition(order.Status, status, models.KindShop); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, order, map[string]any{"status": status}); err != nil {
			return err
		}
		return tx.AddStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   status,
			Actor:      models.KindShop,
			ChangedBy:  shop.ID,
			Note:       strings.TrimSpace(note),
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.OrderTransition(prev, status, models.KindShop)
	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, updated, models.KindShop, prev))
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"order_id": id,
		"shop_id":  shop.ID,
		"from":     prev,
		"to":       status,
	}).Info("order status changed")
	return updated, nil
}

// DeleteOrder removes an order, its lines and history. Owner only.
func (s *OrderService) DeleteOrder(ctx context.Context, customer *models.Customer, id uint) error {
	var deleted *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		order, err := tx.OrderByID(ctx, id)
		if err != nil {
			return notFound(err, "order %d does not exist", id)
		}
		if order.CustomerID != customer.ID {
			return fmt.Errorf("%w: order %d does not belong to you", ErrUnauthorized, id)
		}
		deleted = order
		return notFound(tx.DeleteOrder(ctx, id), "order %d does not exist", id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderDeleted, deleted, models.KindCustomer, ""))
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"order_id":    id,
		"customer_id": customer.ID,
	}).Info("order deleted")
	return nil
}

// ShopOrders lists orders received by shop, optionally with one status.
func (s *OrderService) ShopOrders(ctx context.Context, shop *models.Shop, statusFilter string) ([]models.Order, error) {
	var filter *models.OrderStatus
	if statusFilter = strings.TrimSpace(statusFilter); statusFilter != "" {
		st, err := models.ParseOrderStatus(statusFilter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		filter = &st
	}
	return s.store.ShopOrders(ctx, shop.ID, filter)
}

// ShopOrder returns one order received by shop.
func (s *OrderService) ShopOrder(ctx context.Context, shop *models.Shop, id uint) (*models.Order, error) {
	order, err := s.store.OrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order %d does not exist", id)
	}
	if order.ShopID != shop.ID {
		return nil, fmt.Errorf("%w: order %d does not exist", ErrNotFound, id)
	}
	return order, nil
}
