package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolrent/rental-system/internal/core/domain"
)

type RentalRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewRentalRepository(pool *pgxpool.Pool, timeout time.Duration) *RentalRepository {
	return &RentalRepository{pool: pool, timeout: timeout}
}

// Create records a booking and returns its id.
func (r *RentalRepository) Create(ctx context.Context, rental *domain.Rental) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO rental (user_id, name, price, quantity, duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING booking_id
	`

	var userID *int64
	if rental.UserID > 0 {
		userID = &rental.UserID
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query,
		userID,
		rental.Name,
		rental.Price,
		rental.Quantity,
		rental.Duration,
	).Scan(&id); err != nil {
		return 0, translate("insert rental", err)
	}
	return id, nil
}

func (r *RentalRepository) RentedByName(ctx context.Context) ([]domain.RentedQuantity, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT name, COALESCE(SUM(quantity), 0)::int8
		FROM rental
		GROUP BY name
	`)
	if err != nil {
		return nil, translate("rented quantities", err)
	}
	defer rows.Close()

	out := make([]domain.RentedQuantity, 0)
	for rows.Next() {
		var rq domain.RentedQuantity
		if err := rows.Scan(&rq.Name, &rq.Quantity); err != nil {
			return nil, translate("scan rented quantity", err)
		}
		out = append(out, rq)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("rented quantities", err)
	}
	return out, nil
}
