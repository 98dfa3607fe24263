package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"food-ordering-api/logging"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
)

// maxPrice is the largest value a decimal(8,2) column holds.
const maxPrice = 999999.99

type CatalogService struct {
	store *store.Store
}

func NewCatalogService(s *store.Store) *CatalogService {
	return &CatalogService{store: s}
}

type FoodItemInput struct {
	Name        string
	Description string
	Ingredients []string
	Price       float64
	CategoryID  uint
	IsActive    *bool
}

// FoodItemPatch carries only the fields a caller supplied.
type FoodItemPatch struct {
	Name        *string
	Description *string
	Ingredients *[]string
	Price       *float64
	CategoryID  *uint
	IsActive    *bool
}

// ShopMenu is a shop with its active food items.
type ShopMenu struct {
	Shop  *models.Shop
	Items []models.FoodItem
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > maxPrice {
		return fmt.Errorf("%w: price must be between 0 and %.2f", ErrInvalid, maxPrice)
	}
	if !wholeCents(p) {
		return fmt.Errorf("%w: price must have at most two decimal places", ErrInvalid)
	}
	return nil
}

func wholeCents(p float64) bool {
	cents := p * 100
	return math.Abs(cents-math.Round(cents)) <= 1e-6
}

func joinIngredients(list []string) string {
	parts := make([]string, 0, len(list))
	for _, ing := range list {
		if ing = strings.TrimSpace(ing); ing != "" {
			parts = append(parts, ing)
		}
	}
	return strings.Join(parts, ", ")
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category_name is required", ErrInvalid)
	}
	taken, err := s.store.CategoryNameTaken(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
	}

	c := &models.Category{CategoryName: name}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	logging.FromContext(ctx).WithField("category_id", c.ID).Info("category created")
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CatalogService) CreateFoodItem(ctx context.Context, shop *models.Shop, in FoodItemInput) (*models.FoodItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	item := &models.FoodItem{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Ingredients: joinIngredients(in.Ingredients),
		Price:       in.Price,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CategoryID:  in.CategoryID,
		ShopID:      shop.ID,
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		cat, err := tx.CategoryByID(ctx, in.CategoryID)
		if err != nil {
			return notFound(err, "category %d does not exist", in.CategoryID)
		}
		if err := tx.CreateFoodItem(ctx, item); err != nil {
			return err
		}
		item.Category = cat
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"shop_id":      shop.ID,
		"food_item_id": item.ID,
	}).Info("food item created")
	return item, nil
}

// UpdateFoodItem applies a sparse patch to an item the shop owns.
func (s *CatalogService) UpdateFoodItem(ctx context.Context, shop *models.Shop, id uint, p FoodItemPatch) (*models.FoodItem, error) {
	fields := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		fields["name"] = name
	}
	if p.Description != nil {
		fields["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Ingredients != nil {
		fields["ingredients"] = joinIngredients(*p.Ingredients)
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return nil, err
		}
		fields["price"] = *p.Price
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	if p.CategoryID != nil {
		fields["category_id"] = *p.CategoryID
	}

	var item *models.FoodItem
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		item, err = tx.FoodItemByID(ctx, id)
		if err != nil {
			return notFound(err, "food item %d does not exist", id)
		}
		if item.ShopID != shop.ID {
			return fmt.Errorf("%w: food item %d does not exist", ErrNotFound, id)
		}
		if p.CategoryID != nil {
			if _, err := tx.CategoryByID(ctx, *p.CategoryID); err != nil {
				return notFound(err, "category %d does not exist", *p.CategoryID)
			}
		}
		if err := tx.UpdateFoodItem(ctx, item, fields); err != nil {
			return err
		}
		item, err = tx.FoodItemByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"shop_id":      shop.ID,
		"food_item_id": id,
		"fields":       len(fields),
	}).Info("food item updated")
	return item, nil
}

// DeleteFoodItem removes an item the shop owns. Items already on an order
// are kept and must be deactivated instead.
func (s *CatalogService) DeleteFoodItem(ctx context.Context, shop *models.Shop, id uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		item, err := tx.FoodItemByID(ctx, id)
		if err != nil {
			return notFound(err, "food item %d does not exist", id)
		}
		if item.ShopID != shop.ID {
			return fmt.Errorf("%w: food item %d does not exist", ErrNotFound, id)
		}
		inUse, err := tx.FoodItemInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: food item %d is part of existing orders; deactivate it instead", ErrConflict, id)
		}
		if err := tx.DeleteFoodItem(ctx, id, shop.ID); err != nil {
			if errors.Is(err, store.ErrInUse) {
				return fmt.Errorf("%w: food item %d is part of existing orders", ErrConflict, id)
			}
			return notFound(err, "food item %d does not exist", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"shop_id":      shop.ID,
		"food_item_id": id,
	}).Info("food item deleted")
	return nil
}

func (s *CatalogService) GetFoodItem(ctx context.Context, id uint) (*models.FoodItem, error) {
	item, err := s.store.FoodItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "food item %d does not exist", id)
	}
	return item, nil
}

// ListFoodItems searches active items. A numeric query matches the price,
// any other text matches name, description or category case-insensitively.
func (s *CatalogService) ListFoodItems(ctx context.Context, query string) ([]models.FoodItem, error) {
	query = strings.TrimSpace(query)
	var f store.FoodFilter
	if query != "" {
		if price, err := strconv.ParseFloat(query, 64); err == nil && !math.IsNaN(price) && !math.IsInf(price, 0) {
			// Stored prices have two decimals, so a finer query matches nothing.
			if !wholeCents(price) {
				return []models.FoodItem{}, nil
			}
			f.Price = &price
		} else {
			f.Text = query
		}
	}
	return s.store.ListFoodItems(ctx, f)
}

func (s *CatalogService) ListShops(ctx context.Context) ([]models.Shop, error) {
	return s.store.ListShops(ctx)
}

func (s *CatalogService) GetShop(ctx context.Context, id uint) (*ShopMenu, error) {
	shop, err := s.store.ShopByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "shop %d does not exist", id)
	}
	items, err := s.store.ListFoodItems(ctx, store.FoodFilter{ShopID: id})
	if err != nil {
		return nil, err
	}
	return &ShopMenu{Shop: shop, Items: items}, nil
}
