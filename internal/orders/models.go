package orders

import "time"

// DefaultCartonSize is used when a product has no carton size configured.
const DefaultCartonSize = 12

type Order struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	GodownID    int64     `json:"godown_id"`
	TotalAmount int64     `json:"total_amount"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderLine is a frozen snapshot: unit price and carton size are copied
// from the cart and the catalog at creation and never re-read.
type OrderLine struct {
	OrderID        int64
	ProductID      int64
	Quantity       int   // bottles
	UnitPrice      int64 // per carton
	CartonQuantity int
	CartonSize     int
}

// ViewItem is an order line enriched with catalog display fields.
type ViewItem struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	Brand          string `json:"brand"`
	BottleSize     string `json:"bottle_size"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
	CartonQuantity int    `json:"carton_quantity"`
	CartonSize     int    `json:"carton_size"`
	TotalPrice     int64  `json:"total_price"`
}

// OrderView is the response shape: the order with its customer joined and
// items enriched for display. Read after commit, so it reflects durable
// state.
type OrderView struct {
	Order
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	CustomerAddress string     `json:"customer_address,omitempty"`
	Items           []ViewItem `json:"items"`
}

type CartLine struct {
	ProductID      int64 `json:"product_id"`
	CartonQuantity int   `json:"carton_quantity"`
	PricePerCarton int64 `json:"price_per_carton"`
}

// CreateOrderRequest is the validated request body for order creation.
// The submitted per-carton price is authoritative for this order; the
// catalog price is advisory only.
type CreateOrderRequest struct {
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerAddress string     `json:"customer_address"`
	GodownID        int64      `json:"godown_id"`
	Notes           string     `json:"notes"`
	Items           []CartLine `json:"items"`
}

// Total sums the caller-supplied line prices. Not re-derived from the
// catalog: at-order-time pricing agreements override the list price.
func (r CreateOrderRequest) Total() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.PricePerCarton * int64(it.CartonQuantity)
	}
	return total
}

// OrderSummary is a listing row: the order plus the customer's name.
type OrderSummary struct {
	Order
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// ListFilter narrows order listings. Zero values mean no filtering.
type ListFilter struct {
	Status    Status
	StartDate time.Time
	EndDate   time.Time
}
