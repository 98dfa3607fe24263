package store

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func linesByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id")
}

func historyByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_status_histories.id")
}

// CreateOrder inserts the order together with its lines.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return translate(s.conn(ctx).Create(o).Error)
}

func (s *Store) AddStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	return translate(s.conn(ctx).Create(h).Error)
}

// OrderByID loads an order with its customer, lines, their food items and
// status history.
func (s *Store) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.conn(ctx).
		Preload("Customer").
		Preload("Lines", linesByID).
		Preload("Lines.FoodItem").
		Preload("StatusHistory", historyByID).
		First(&o, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(s.conn(ctx).Model(o).Omit(clause.Associations).Updates(fields).Error)
}

func (s *Store) UpdateOrderLine(ctx context.Context, line *models.OrderLine, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(s.conn(ctx).Model(line).Omit(clause.Associations).Updates(fields).Error)
}

// DeleteOrder removes history, lines and the order itself. Run inside a
// transaction.
func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Order{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// CustomerWithOrders loads a customer and every order they placed, newest first.
func (s *Store) CustomerWithOrders(ctx context.Context, customerID uint) (*models.Customer, error) {
	var c models.Customer
	err := s.conn(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("orders.id DESC") }).
		Preload("Orders.Lines", linesByID).
		Preload("Orders.Lines.FoodItem").
		First(&c, customerID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ShopOrders lists a shop's orders, newest first, with the ordering customer.
// A nil status returns every order.
func (s *Store) ShopOrders(ctx context.Context, shopID uint, status *models.OrderStatus) ([]models.Order, error) {
	q := s.conn(ctx).
		Preload("Customer").
		Preload("Lines", linesByID).
		Preload("Lines.FoodItem").
		Where("shop_id = ?", shopID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	err := q.Order("id DESC").Find(&orders).Error
	return orders, translate(err)
}
