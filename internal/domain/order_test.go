package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestMergeLines(t *testing.T) {
	tests := []struct {
		name     string
		in       []OrderLine
		expected []OrderLine
	}{
		{
			name:     "distinct products untouched",
			in:       []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
			expected: []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		},
		{
			name:     "duplicates summed, first position kept",
			in:       []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 3}},
			expected: []OrderLine{{ProductID: 1, Quantity: 5}, {ProductID: 2, Quantity: 1}},
		},
		{
			name:     "empty input",
			in:       nil,
			expected: []OrderLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeLines(tt.in))
		})
	}
}
