package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from DeliveryStatus
		to   DeliveryStatus
		want bool
	}{
		{DeliveryPending, DeliveryProcessing, true},
		{DeliveryPending, DeliveryCanceled, true},
		{DeliveryPending, DeliveryShipped, false},
		{DeliveryPending, DeliveryDelivered, false},
		{DeliveryProcessing, DeliveryShipped, true},
		{DeliveryProcessing, DeliveryCanceled, true},
		{DeliveryProcessing, DeliveryDelivered, false},
		{DeliveryShipped, DeliveryDelivered, true},
		{DeliveryShipped, DeliveryCanceled, false},
		{DeliveryShipped, DeliveryPending, false},
		{DeliveryDelivered, DeliveryReturned, true},
		{DeliveryDelivered, DeliveryShipped, false},
		{DeliveryCanceled, DeliveryPending, false},
		{DeliveryCanceled, DeliveryProcessing, false},
		{DeliveryReturned, DeliveryDelivered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestToDeliveryStatus(t *testing.T) {
	status, err := ToDeliveryStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, DeliveryShipped, status)

	_, err = ToDeliveryStatus("lost")
	assert.Error(t, err)
}

func TestMarkDelivered(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sub := SubOrder{DeliveryStatus: DeliveryShipped}

	sub.MarkDelivered(at)

	assert.Equal(t, DeliveryDelivered, sub.DeliveryStatus)
	require.NotNil(t, sub.DeliveryDate)
	assert.Equal(t, at, *sub.DeliveryDate)
	require.NotNil(t, sub.ReturnWindow)
	assert.Equal(t, at.AddDate(0, 0, ReturnWindowDays), *sub.ReturnWindow)
}

func TestEscrowReleasable(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	windowOpen := now.Add(48 * time.Hour)
	windowClosed := now.Add(-time.Hour)

	tests := []struct {
		name string
		sub  SubOrder
		want bool
	}{
		{
			name: "not delivered yet",
			sub:  SubOrder{DeliveryStatus: DeliveryShipped, Escrow: Escrow{Held: true}},
			want: false,
		},
		{
			name: "delivered and confirmed by customer",
			sub: SubOrder{
				DeliveryStatus:    DeliveryDelivered,
				CustomerConfirmed: true,
				Escrow:            Escrow{Held: true},
				ReturnWindow:      &windowOpen,
			},
			want: true,
		},
		{
			name: "delivered, unconfirmed, window still open",
			sub: SubOrder{
				DeliveryStatus: DeliveryDelivered,
				Escrow:         Escrow{Held: true},
				ReturnWindow:   &windowOpen,
			},
			want: false,
		},
		{
			name: "delivered, unconfirmed, window closed",
			sub: SubOrder{
				DeliveryStatus: DeliveryDelivered,
				Escrow:         Escrow{Held: true},
				ReturnWindow:   &windowClosed,
			},
			want: true,
		},
		{
			name: "already released",
			sub: SubOrder{
				DeliveryStatus:    DeliveryDelivered,
				CustomerConfirmed: true,
				Escrow:            Escrow{Held: false, Released: true},
			},
			want: false,
		},
		{
			name: "refunded funds never release",
			sub: SubOrder{
				DeliveryStatus:    DeliveryDelivered,
				CustomerConfirmed: true,
				Escrow:            Escrow{Held: true, Refunded: true},
			},
			want: false,
		},
		{
			name: "no return window recorded and unconfirmed",
			sub: SubOrder{
				DeliveryStatus: DeliveryDelivered,
				Escrow:         Escrow{Held: true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.EscrowReleasable(now))
		})
	}
}

func TestFindSubOrder(t *testing.T) {
	subA := primitive.NewObjectID()
	subB := primitive.NewObjectID()

	order := Order{
		SubOrders: []SubOrder{
			{ID: subA},
			{ID: subB},
		},
	}

	assert.Equal(t, 0, order.FindSubOrder(subA))
	assert.Equal(t, 1, order.FindSubOrder(subB))
	assert.Equal(t, -1, order.FindSubOrder(primitive.NewObjectID()))
}
