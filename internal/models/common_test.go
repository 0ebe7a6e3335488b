package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusNotPaid, OrderStatusPendingPayment, true},
		{OrderStatusNotPaid, OrderStatusPaid, true},
		{OrderStatusNotPaid, OrderStatusFailed, false},
		{OrderStatusPendingPayment, OrderStatusPaid, true},
		{OrderStatusPendingPayment, OrderStatusFailed, true},
		{OrderStatusPendingPayment, OrderStatusExpired, true},
		{OrderStatusPendingPayment, OrderStatusNotPaid, false},
		{OrderStatusPaid, OrderStatusPaid, true},
		{OrderStatusPaid, OrderStatusFailed, false},
		{OrderStatusFailed, OrderStatusPaid, false},
		{OrderStatusExpired, OrderStatusPendingPayment, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusPaid.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
	assert.True(t, OrderStatusExpired.IsTerminal())
	assert.False(t, OrderStatusNotPaid.IsTerminal())
	assert.False(t, OrderStatusPendingPayment.IsTerminal())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.SetPassword("s3cret!"))
	assert.NotEqual(t, "s3cret!", u.PasswordHash)
	assert.NoError(t, u.CheckPassword("s3cret!"))
	assert.Error(t, u.CheckPassword("wrong"))
}
