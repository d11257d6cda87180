package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/toolrent/rental-system/internal/core/domain"
	"github.com/toolrent/rental-system/internal/core/ports"
)

// IdempotencyStore remembers which booking a user's Idempotency-Key
// produced. Keys of different users never collide. Claim returns false when the key is already held; Lookup then reports the
// booking id, or zero while the first request is still in flight.
type IdempotencyStore interface {
	Claim(ctx context.Context, userID int64, key string) (bool, error)
	Lookup(ctx context.Context, userID int64, key string) (int64, error)
	Complete(ctx context.Context, userID int64, key string, bookingID int64) error
	Release(ctx context.Context, userID int64, key string) error
}

type OrderService struct {
	rentals ports.RentalRepository
	keys    IdempotencyStore
	log     zerolog.Logger
}

// NewOrderService returns an OrderService. keys may be nil, in which case
// Idempotency-Key headers are ignored.
func NewOrderService(rentals ports.RentalRepository, keys IdempotencyStore, log zerolog.Logger) *OrderService {
	return &OrderService{rentals: rentals, keys: keys, log: log}
}

// PlaceOrder records a booking. Stock is not reserved.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.OrderResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 || in.Quantity <= 0 || in.Duration <= 0 {
		return nil, domain.ErrInvalidOrder
	}

	claimed := false
	if s.keys != nil && in.IdempotencyKey != "" {
		ok, err := s.keys.Claim(ctx, in.UserID, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency claim failed, placing order anyway")
		case !ok:
			return s.replay(ctx, in.UserID, in.IdempotencyKey)
		default:
			claimed = true
		}
	}

	id, err := s.rentals.Create(ctx, &domain.Rental{
		UserID:   in.UserID,
		Name:     name,
		Price:    in.Price,
		Quantity: in.Quantity,
		Duration: in.Duration,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to place order")
		if claimed {
			if relErr := s.keys.Release(ctx, in.UserID, in.IdempotencyKey); relErr != nil {
				s.log.Warn().Err(relErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if claimed {
		if err := s.keys.Complete(ctx, in.UserID, in.IdempotencyKey, id); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency result")
		}
	}

	s.log.Info().Int64("booking_id", id).Int64("user_id", in.UserID).Str("tool", name).Msg("order placed")
	return &ports.OrderResult{BookingID: id}, nil
}

func (s *OrderService) replay(ctx context.Context, userID int64, key string) (*ports.OrderResult, error) {
	id, err := s.keys.Lookup(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, domain.ErrOrderInProgress
	}
	s.log.Info().Str("idempotency_key", key).Int64("user_id", userID).Int64("booking_id", id).Msg("idempotent replay")
	return &ports.OrderResult{BookingID: id, Replayed: true}, nil
}
