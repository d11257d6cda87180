package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/toolrent/rental-system/internal/core/domain"
	"github.com/toolrent/rental-system/internal/core/ports"
)

// AdminService manages the tool catalog. It performs no authorization of
// its own; callers only need a valid session.
type AdminService struct {
	tools   ports.ToolRepository
	rentals ports.RentalRepository
	log     zerolog.Logger
}

func NewAdminService(tools ports.ToolRepository, rentals ports.RentalRepository, log zerolog.Logger) *AdminService {
	return &AdminService{tools: tools, rentals: rentals, log: log}
}

func (s *AdminService) AddTool(ctx context.Context, in ports.AddToolInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 || in.Quantity <= 0 {
		return 0, domain.ErrInvalidTool
	}

	tool := &domain.Tool{
		Name:        name,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Image:       optional(in.Image),
		Description: optional(in.Description),
	}
	id, err := s.tools.Create(ctx, tool)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to add tool")
		return 0, err
	}

	s.log.Info().Int64("tool_id", id).Str("name", name).Msg("tool added")
	return id, nil
}

func (s *AdminService) RemoveTool(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrToolNotFound
	}
	if err := s.tools.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("tool_id", id).Msg("tool removed")
	return nil
}

// RentalSummary reports total, rented and available stock per tool.
func (s *AdminService) RentalSummary(ctx context.Context) ([]domain.RentalSummaryItem, error) {
	tools, err := s.tools.List(ctx)
	if err != nil {
		return nil, err
	}
	rented, err := s.rentals.RentedByName(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(tools, rented), nil
}

func summarize(tools []domain.Tool, rented []domain.RentedQuantity) []domain.RentalSummaryItem {
	byName := make(map[string]int, len(rented))
	for _, r := range rented {
		byName[r.Name] += r.Quantity
	}

	summary := make([]domain.RentalSummaryItem, 0, len(tools))
	for _, t := range tools {
		out := byName[t.Name]
		summary = append(summary, domain.RentalSummaryItem{
			Name:              t.Name,
			TotalQuantity:     t.Quantity,
			RentedQuantity:    out,
			AvailableQuantity: t.Quantity - out,
		})
	}
	return summary
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
