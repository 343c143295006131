package domain

import "strings"

type OrderStatus string

// Order Statuses
const (
	OrderStatusPlaced             OrderStatus = "ORDER PLACED"
	OrderStatusProcessing         OrderStatus = "PROCESSING"
	OrderStatusShipped            OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery     OrderStatus = "OUT FOR DELIVERY"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusPartiallyCancelled OrderStatus = "PARTIALLY CANCELLED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
	OrderStatusReturned           OrderStatus = "RETURNED"
	OrderStatusRefunded           OrderStatus = "REFUNDED"
)

// Cancellation Request Statuses
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Cancellation Kinds
const (
	CancellationFull    = "full"
	CancellationPartial = "partial"
)

// List Exports for API
var OrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusPartiallyCancelled,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusRefunded,
}

var RequestStatuses = []string{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
}

// ParseOrderStatus normalises stored status strings such as "delivered" or
// "order_placed" onto the canonical constants.
func ParseOrderStatus(s string) OrderStatus {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", " ")
	norm = strings.ReplaceAll(norm, "-", " ")
	return OrderStatus(norm)
}

// IsCancellable reports whether a cancellation can still be requested.
func (s OrderStatus) IsCancellable() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusReturned, OrderStatusRefunded:
		return false
	}
	return true
}
