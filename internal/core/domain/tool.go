package domain

import "time"

// Tool is a rentable catalog item. Quantity is the total stock owned.
type Tool struct {
	ID          int64   `json:"tool_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
}

// Rental is a placed order. UserID is zero for bookings made before
// orders were tied to an account.
type Rental struct {
	ID        int64
	UserID    int64
	Name      string
	Price     float64
	Quantity  int
	Duration  int
	CreatedAt time.Time
}

// RentedQuantity is the aggregate of rental quantities for one tool name.
type RentedQuantity struct {
	Name     string
	Quantity int
}

// RentalSummaryItem reports stock for one tool. Available is derived after
// the fact and may go negative; bookings never reserve stock.
type RentalSummaryItem struct {
	Name              string `json:"name"`
	TotalQuantity     int    `json:"totalQuantity"`
	RentedQuantity    int    `json:"rentedQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
}
