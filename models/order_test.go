package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"PENDING":     StatusPending,
		"pending":     StatusPending,
		"IN-TRANSIT":  StatusInTransit,
		"in_transit":  StatusInTransit,
		"DELIVERED":   StatusDelivered,
		"CANCEL":      StatusCanceled,
		"Cancelled":   StatusCanceled,
		" CANCELED  ": StatusCanceled,
	}
	for in, want := range cases {
		got, err := ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOrderStatus("COOKING")
	assert.Error(t, err)
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInTransit.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestShopCanManage(t *testing.T) {
	assert.False(t, (&Shop{}).CanManage())
	assert.True(t, (&Shop{IsStaff: true}).CanManage())
	assert.True(t, (&Shop{IsAdministrator: true}).CanManage())
}
