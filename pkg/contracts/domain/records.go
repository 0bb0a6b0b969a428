package domain

import (
	"time"
)

// Raw records hold every field as text exactly as decoded from the dataset.
// Row is the zero-based position of the record in its raw table.

// CustomerRecord is a raw customers row
type CustomerRecord struct {
	Row   int    `json:"-"`
	ID    string `json:"id" csv:"id"`
	Name  string `json:"name" csv:"name"`
	Email string `json:"email" csv:"email"`
	Phone string `json:"phone" csv:"phone"`
}

// ProductRecord is a raw products row
type ProductRecord struct {
	Row      int    `json:"-"`
	ID       string `json:"id" csv:"id"`
	Name     string `json:"name" csv:"name"`
	Category string `json:"category" csv:"category"`
	Price    string `json:"price" csv:"price"`
	Stock    string `json:"stock" csv:"stock"`
}

// OrderRecord is a raw orders row
type OrderRecord struct {
	Row        int    `json:"-"`
	ID         string `json:"id" csv:"id"`
	CustomerID string `json:"customer_id" csv:"customer_id"`
	ProductID  string `json:"product_id" csv:"product_id"`
	Quantity   string `json:"quantity" csv:"quantity"`
	Date       string `json:"date" csv:"date"`
}

// ShipmentRecord is a raw shipments row. The date columns are optional in the source.
type ShipmentRecord struct {
	Row          int    `json:"-"`
	ID           string `json:"id" csv:"id"`
	OrderID      string `json:"order_id" csv:"order_id"`
	Carrier      string `json:"carrier" csv:"carrier"`
	Status       string `json:"status" csv:"status"`
	ShipmentDate string `json:"shipment_date" csv:"shipment_date"`
	DeliveryDate string `json:"delivery_date" csv:"delivery_date"`
}

// RefundRecord is a raw refunds row
type RefundRecord struct {
	Row          int    `json:"-"`
	ID           string `json:"id" csv:"id"`
	OrderID      string `json:"order_id" csv:"order_id"`
	ProductID    string `json:"product_id" csv:"product_id"`
	Reason       string `json:"reason" csv:"reason"`
	RefundAmount string `json:"refund_amount" csv:"refund_amount"`
}

// Customer is a cleaned customer
type Customer struct {
	Row   int    `json:"-"`
	ID    string `json:"id" validate:"required,identifier"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Product is a cleaned product
type Product struct {
	Row      int     `json:"-"`
	ID       string  `json:"id" validate:"required,identifier"`
	Name     string  `json:"name"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	Stock    float64 `json:"stock" validate:"min=0"`
}

// Order is a cleaned order. Quantity doubles as the spend proxy in reports.
type Order struct {
	Row        int       `json:"-"`
	ID         string    `json:"id" validate:"required,identifier"`
	CustomerID string    `json:"customer_id" validate:"required,identifier"`
	ProductID  string    `json:"product_id" validate:"required,identifier"`
	Quantity   float64   `json:"quantity" validate:"min=0"`
	Date       time.Time `json:"date"`
}

// ShipmentStatus is a normalized shipment status
type ShipmentStatus string

// Enum-mode statuses
const (
	StatusShipped   ShipmentStatus = "Shipped"
	StatusDelivered ShipmentStatus = "Delivered"
	StatusDelayed   ShipmentStatus = "Delayed"
	StatusUnknown   ShipmentStatus = "Unknown"
)

// Keyword-mode statuses
const (
	StatusKeywordShipped   ShipmentStatus = "shipped"
	StatusKeywordInTransit ShipmentStatus = "in_transit"
	StatusKeywordDelivered ShipmentStatus = "delivered"
	StatusKeywordCancelled ShipmentStatus = "cancelled"
)

// Shipment is a cleaned shipment. DeliveryDate keeps the normalized text;
// DeliveredAt is set only when that text parses as a date.
type Shipment struct {
	Row          int            `json:"-"`
	ID           string         `json:"id" validate:"required,identifier"`
	OrderID      string         `json:"order_id" validate:"required,identifier"`
	Carrier      string         `json:"carrier" validate:"required"`
	Status       ShipmentStatus `json:"status" validate:"required"`
	ShipmentDate string         `json:"shipment_date,omitempty"`
	DeliveryDate string         `json:"delivery_date,omitempty"`
	DeliveredAt  *time.Time     `json:"-"`
}

// Refund is a cleaned refund
type Refund struct {
	Row       int     `json:"-"`
	ID        string  `json:"id" validate:"required,identifier"`
	OrderID   string  `json:"order_id" validate:"required,identifier"`
	ProductID string  `json:"product_id" validate:"required,identifier"`
	Reason    string  `json:"reason" validate:"required"`
	Amount    float64 `json:"refund_amount" validate:"gt=0"`
}
