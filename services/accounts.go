package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/logging"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AccountService struct {
	store    *store.Store
	hashCost int
	now      func() time.Time
}

type AccountOption func(*AccountService)

// WithHashCost overrides the bcrypt cost, mostly to keep tests fast.
func WithHashCost(cost int) AccountOption {
	return func(s *AccountService) { s.hashCost = cost }
}

func NewAccountService(s *store.Store, opts ...AccountOption) *AccountService {
	svc := &AccountService{store: s, hashCost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CustomerSignUp struct {
	Username    string
	Name        string
	Lastname    string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
}

type ShopSignUp struct {
	Username        string
	Name            string
	Email           string
	Password        string
	PhoneNumber     string
	Address         string
	IsStaff         *bool
	IsAdministrator *bool
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *AccountService) hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", ErrInvalid)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", ErrInvalid)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *AccountService) RegisterCustomer(ctx context.Context, in CustomerSignUp) (*models.Customer, error) {
	username := normalizeUsername(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalid)
	}

	userTaken, emailTaken, err := s.store.CustomerTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if userTaken {
		return nil, fmt.Errorf("%w: username %q is already registered", ErrConflict, username)
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	c := &models.Customer{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
		IsActive:     true,
		TimeJoined:   s.now().UTC(),
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email is already registered", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"customer_id": c.ID,
		"username":    c.Username,
	}).Info("customer registered")
	return c, nil
}

func (s *AccountService) RegisterShop(ctx context.Context, in ShopSignUp) (*models.Shop, error) {
	username := normalizeUsername(in.Username)
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if username == "" || email == "" || name == "" {
		return nil, fmt.Errorf("%w: username, name and email are required", ErrInvalid)
	}

	field, err := s.store.ShopTaken(ctx, username, email, name)
	if err != nil {
		return nil, err
	}
	if field != "" {
		return nil, fmt.Errorf("%w: a shop with this %s already exists", ErrConflict, field)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	// New shop accounts are staff and administrator unless told otherwise.
	sh := &models.Shop{
		Username:        username,
		Name:            name,
		Email:           email,
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		Address:         strings.TrimSpace(in.Address),
		PasswordHash:    hash,
		IsStaff:         in.IsStaff == nil || *in.IsStaff,
		IsAdministrator: in.IsAdministrator == nil || *in.IsAdministrator,
	}
	if err := s.store.CreateShop(ctx, sh); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username, name or email is already registered", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"shop_id":  sh.ID,
		"username": sh.Username,
	}).Info("shop registered")
	return sh, nil
}

var errBadCredentials = fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)

// Authenticate checks a username/password pair and returns the token subject.
func (s *AccountService) Authenticate(ctx context.Context, kind models.AccountKind, username, password string) (string, error) {
	username = normalizeUsername(username)

	var hash string
	switch kind {
	case models.KindCustomer:
		c, err := s.store.CustomerByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return "", errBadCredentials
		}
		if err != nil {
			return "", err
		}
		if !c.IsActive {
			return "", fmt.Errorf("%w: account is disabled", ErrUnauthorized)
		}
		hash = c.PasswordHash
	case models.KindShop:
		sh, err := s.store.ShopByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return "", errBadCredentials
		}
		if err != nil {
			return "", err
		}
		hash = sh.PasswordHash
	default:
		return "", fmt.Errorf("%w: unknown account kind %q", ErrInvalid, kind)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		logging.FromContext(ctx).WithFields(logrus.Fields{
			"kind":     kind,
			"username": username,
		}).Warn("login failed")
		return "", errBadCredentials
	}
	return username, nil
}

// CustomerBySubject loads the active customer a token was issued to.
func (s *AccountService) CustomerBySubject(ctx context.Context, subject string) (*models.Customer, error) {
	c, err := s.store.CustomerByUsername(ctx, subject)
	if err != nil {
		return nil, notFound(err, "customer %q", subject)
	}
	if !c.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	return c, nil
}

func (s *AccountService) ShopBySubject(ctx context.Context, subject string) (*models.Shop, error) {
	sh, err := s.store.ShopByUsername(ctx, subject)
	if err != nil {
		return nil, notFound(err, "shop %q", subject)
	}
	return sh, nil
}
