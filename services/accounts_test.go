package services

import (
	"context"
	"testing"

	"food-ordering-api/models"
	"food-ordering-api/store"
	"food-ordering-api/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccounts(t *testing.T) (*AccountService, *store.Store) {
	s := storetest.Open(t)
	return NewAccountService(s, WithHashCost(bcrypt.MinCost)), s
}

func johnSignUp() CustomerSignUp {
	return CustomerSignUp{
		Username:    "John",
		Name:        "John",
		Lastname:    "Doe",
		Email:       "john@example.com",
		Password:    "pw123",
		PhoneNumber: "555-0101",
		Address:     "1 Main St",
	}
}

func TestRegisterCustomer(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	c, err := svc.RegisterCustomer(ctx, johnSignUp())
	require.NoError(t, err)
	assert.Equal(t, "john", c.Username)
	assert.True(t, c.IsActive)
	assert.NotEqual(t, "pw123", c.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("pw123")))
}

func TestRegisterCustomerDuplicate(t *testing.T) {
	svc, s := newAccounts(t)
	ctx := context.Background()

	_, err := svc.RegisterCustomer(ctx, johnSignUp())
	require.NoError(t, err)

	again := johnSignUp()
	again.Username = "JOHN "
	again.Email = "other@example.com"
	_, err = svc.RegisterCustomer(ctx, again)
	assert.ErrorIs(t, err, ErrConflict)

	sameEmail := johnSignUp()
	sameEmail.Username = "johnny"
	_, err = svc.RegisterCustomer(ctx, sameEmail)
	assert.ErrorIs(t, err, ErrConflict)

	taken, _, err := s.CustomerTaken(ctx, "johnny", "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSameUsernameAcrossKinds(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	_, err := svc.RegisterCustomer(ctx, johnSignUp())
	require.NoError(t, err)
	_, err = svc.RegisterShop(ctx, ShopSignUp{Username: "john", Name: "John's", Email: "john@example.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestRegisterShop(t *testing.T) {
	svc, _ := newAccounts(t)
	ctx := context.Background()

	sh, err := svc.RegisterShop(ctx, ShopSignUp{Username: "Luigi", Name: "Luigi's", Email: "luigi@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "luigi", sh.Username)
	assert.True(t, sh.IsStaff)
	assert.True(t, sh.IsAdministrator)

	no := false
	sh2, err := svc.RegisterShop(ctx, ShopSignUp{Username: "mario", Name: "Mario's", Email: "mario@example.com", Password: "pw", IsStaff: &no, IsAdministrator: &no})
	require.NoError(t, err)
	assert.False(t, sh2.CanManage())

	_, err = svc.RegisterShop(ctx, ShopSignUp{Username: "peach", Name: "Luigi's", Email: "peach@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "name")
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _ := newAccounts(t)
	in := johnSignUp()
	in.Password = ""
	_, err := svc.RegisterCustomer(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.RegisterShop(context.Background(), ShopSignUp{Username: "x", Email: "x@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAuthenticate(t *testing.T) {
	s, db := storetest.OpenWithDB(t)
	svc := NewAccountService(s, WithHashCost(bcrypt.MinCost))
	ctx := context.Background()

	_, err := svc.RegisterCustomer(ctx, johnSignUp())
	require.NoError(t, err)
	_, err = svc.RegisterShop(ctx, ShopSignUp{Username: "luigi", Name: "Luigi's", Email: "luigi@example.com", Password: "secret"})
	require.NoError(t, err)

	subject, err := svc.Authenticate(ctx, models.KindCustomer, "JOHN", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "john", subject)

	subject, err = svc.Authenticate(ctx, models.KindShop, "luigi", "secret")
	require.NoError(t, err)
	assert.Equal(t, "luigi", subject)

	_, err = svc.Authenticate(ctx, models.KindCustomer, "john", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(ctx, models.KindCustomer, "ghost", "pw123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// a shop login does not work against the customer table
	_, err = svc.Authenticate(ctx, models.KindCustomer, "luigi", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, db.Model(&models.Customer{}).Where("username = ?", "john").Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, models.KindCustomer, "john", "pw123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CustomerBySubject(ctx, "john")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBySubject(t *testing.T) {
	svc, s := newAccounts(t)
	ctx := context.Background()
	storetest.Customer(t, s, "john")
	storetest.Shop(t, s, "luigi")

	c, err := svc.CustomerBySubject(ctx, "john")
	require.NoError(t, err)
	assert.Equal(t, "john", c.Username)

	sh, err := svc.ShopBySubject(ctx, "luigi")
	require.NoError(t, err)
	assert.Equal(t, "luigi", sh.Username)

	_, err = svc.ShopBySubject(ctx, "john")
	assert.ErrorIs(t, err, ErrNotFound)
}
