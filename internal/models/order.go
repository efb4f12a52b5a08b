package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order as reported by the order API
type OrderStatus string

// OrderStatus constants
const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var knownStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// UnmarshalJSON accepts any letter case for the known statuses.
// Unknown values are kept as sent.
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseOrderStatus(raw)
	return nil
}

// ParseOrderStatus normalizes raw to one of the known statuses when it matches
// ignoring case and surrounding whitespace.
func ParseOrderStatus(raw string) OrderStatus {
	trimmed := strings.TrimSpace(raw)
	for _, known := range knownStatuses {
		if strings.EqualFold(trimmed, string(known)) {
			return known
		}
	}
	return OrderStatus(trimmed)
}

// ProductRef is the product reference embedded in orders and items
type ProductRef struct {
	Name string `json:"name"`
}

// OrderItem represents one line of a multi-item order
type OrderItem struct {
	Product    *ProductRef     `json:"product,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Order represents a customer order as loaded by the web application.
// Orders without Items use the legacy single-product shape (Product + Quantity).
type Order struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Status       OrderStatus     `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Quantity     int             `json:"quantity"`
	Product      *ProductRef     `json:"product,omitempty"`
	Items        []OrderItem     `json:"items,omitempty"`
	User         *Contact        `json:"user,omitempty"`
	Profile      *Contact        `json:"profile,omitempty"`
}

// IsMultiItem reports whether the order carries explicit line items
func (o *Order) IsMultiItem() bool {
	return len(o.Items) > 0
}

// TotalQuantity sums item quantities, or falls back to the legacy quantity
func (o *Order) TotalQuantity() int {
	if !o.IsMultiItem() {
		return o.Quantity
	}
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
