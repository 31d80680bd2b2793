package enums

import "fmt"

// OrderStatus tracks kitchen progress of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Orders advance one step at a time and may be cancelled until delivered.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPreparing
	case OrderStatusPreparing:
		return next == OrderStatusReady
	case OrderStatusReady:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
