package store

import (
	"context"

	"food-ordering-api/models"
)

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *Store) CustomerByUsername(ctx context.Context, username string) (*models.Customer, error) {
	var c models.Customer
	if err := s.conn(ctx).Where("username = ?", username).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CustomerTaken reports which of username and email already exist.
func (s *Store) CustomerTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	var rows []models.Customer
	err = s.conn(ctx).Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&rows).Error
	for _, r := range rows {
		usernameTaken = usernameTaken || r.Username == username
		emailTaken = emailTaken || r.Email == email
	}
	return usernameTaken, emailTaken, translate(err)
}

func (s *Store) CreateShop(ctx context.Context, sh *models.Shop) error {
	return translate(s.conn(ctx).Create(sh).Error)
}

func (s *Store) ShopByUsername(ctx context.Context, username string) (*models.Shop, error) {
	var sh models.Shop
	if err := s.conn(ctx).Where("username = ?", username).First(&sh).Error; err != nil {
		return nil, translate(err)
	}
	return &sh, nil
}

func (s *Store) ShopByID(ctx context.Context, id uint) (*models.Shop, error) {
	var sh models.Shop
	if err := s.conn(ctx).First(&sh, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sh, nil
}

// ShopTaken reports the first unique shop field that is already in use, or "".
func (s *Store) ShopTaken(ctx context.Context, username, email, name string) (string, error) {
	var rows []models.Shop
	err := s.conn(ctx).Select("username", "email", "name").
		Where("username = ? OR email = ? OR name = ?", username, email, name).
		Find(&rows).Error
	if err != nil {
		return "", translate(err)
	}
	for _, r := range rows {
		switch {
		case r.Username == username:
			return "username", nil
		case r.Email == email:
			return "email", nil
		case r.Name == name:
			return "name", nil
		}
	}
	return "", nil
}

func (s *Store) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.conn(ctx).Order("id").Find(&shops).Error
	return shops, translate(err)
}
