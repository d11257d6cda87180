package ports

import (
	"context"

	"github.com/toolrent/rental-system/internal/core/domain"
)

// ToolRepository persists the tool catalog.
type ToolRepository interface {
	List(ctx context.Context) ([]domain.Tool, error)
	FindByID(ctx context.Context, id int64) (*domain.Tool, error)
	Create(ctx context.Context, tool *domain.Tool) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// RentalRepository persists placed orders.
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) (int64, error)
	// RentedByName sums rental quantities grouped by tool name.
	RentedByName(ctx context.Context) ([]domain.RentedQuantity, error)
}

// CatalogService exposes the public product listing.
type CatalogService interface {
	ListTools(ctx context.Context) ([]domain.Tool, error)
	GetTool(ctx context.Context, id int64) (*domain.Tool, error)
}

// PlaceOrderInput carries one checkout submission.
type PlaceOrderInput struct {
	UserID         int64
	Name           string
	Price          float64
	Quantity       int
	Duration       int
	IdempotencyKey string
}

// OrderResult is returned by PlaceOrder. Replayed is true when the
// Idempotency-Key matched an earlier booking.
type OrderResult struct {
	BookingID int64
	Replayed  bool
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error)
}

// AddToolInput carries the admin add-tool form.
type AddToolInput struct {
	Name        string
	Price       float64
	Quantity    int
	Image       string
	Description string
}

type AdminService interface {
	AddTool(ctx context.Context, input AddToolInput) (int64, error)
	RemoveTool(ctx context.Context, id int64) error
	RentalSummary(ctx context.Context) ([]domain.RentalSummaryItem, error)
}
