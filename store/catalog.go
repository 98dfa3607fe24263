package store

import (
	"context"
	"math"
	"strings"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FoodFilter narrows ListFoodItems. At most one of Text and Price is used;
// Price wins when both are set. Price is matched exactly and must already be
// a whole number of cents.
type FoodFilter struct {
	Text   string
	Price  *float64
	ShopID uint
}


func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *Store) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CategoryNameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Category{}).
		Where("LOWER(category_name) = ?", strings.ToLower(name)).
		Count(&n).Error
	return n > 0, translate(err)
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := s.conn(ctx).Order("category_name").Find(&cats).Error
	return cats, translate(err)
}

func (s *Store) CreateFoodItem(ctx context.Context, item *models.FoodItem) error {
	return translate(s.conn(ctx).Create(item).Error)
}

func (s *Store) FoodItemByID(ctx context.Context, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.conn(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FoodItemsByIDs loads the distinct items referenced by ids, keyed by id.
func (s *Store) FoodItemsByIDs(ctx context.Context, ids []uint) (map[uint]models.FoodItem, error) {
	var items []models.FoodItem
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[uint]models.FoodItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// UpdateFoodItem applies only the given columns.
func (s *Store) UpdateFoodItem(ctx context.Context, item *models.FoodItem, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(s.conn(ctx).Model(item).Omit(clause.Associations).Updates(fields).Error)
}

// DeleteFoodItem removes the item only if shopID owns it.
func (s *Store) DeleteFoodItem(ctx context.Context, id, shopID uint) error {
	res := s.conn(ctx).Where("id = ? AND shop_id = ?", id, shopID).Delete(&models.FoodItem{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// FoodItemInUse reports whether any order line references the item.
func (s *Store) FoodItemInUse(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.OrderLine{}).Where("food_item_id = ?", id).Count(&n).Error
	return n > 0, translate(err)
}

// ListFoodItems returns active items only.
func (s *Store) ListFoodItems(ctx context.Context, f FoodFilter) ([]models.FoodItem, error) {
	q := s.conn(ctx).Model(&models.FoodItem{}).
		Preload("Category").
		Where("food_items.is_active = ?", true)

	if f.ShopID != 0 {
		q = q.Where("food_items.shop_id = ?", f.ShopID)
	}
	switch {
	case f.Price != nil:
		q = q.Where("food_items.price = ?", math.Round(*f.Price*100)/100)
	case f.Text != "":
		pattern := "%" + escapeLike(strings.ToLower(f.Text)) + "%"
		q = q.Joins("LEFT JOIN categories ON categories.id = food_items.category_id").
			Where("(LOWER(food_items.name) LIKE ? ESCAPE '!' OR LOWER(food_items.description) LIKE ? ESCAPE '!' OR LOWER(categories.category_name) LIKE ? ESCAPE '!')",
				pattern, pattern, pattern)
	}

	var items []models.FoodItem
	err := q.Order("food_items.id").Find(&items).Error
	return items, translate(err)
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
