package service

import (
	"context"

	"github.com/toolrent/rental-system/internal/core/domain"
	"github.com/toolrent/rental-system/internal/core/ports"
)

type CatalogService struct {
	tools ports.ToolRepository
}

func NewCatalogService(tools ports.ToolRepository) *CatalogService {
	return &CatalogService{tools: tools}
}

func (s *CatalogService) ListTools(ctx context.Context) ([]domain.Tool, error) {
	tools, err := s.tools.List(ctx)
	if err != nil {
		return nil, err
	}
	if tools == nil {
		tools = []domain.Tool{}
	}
	return tools, nil
}

func (s *CatalogService) GetTool(ctx context.Context, id int64) (*domain.Tool, error) {
	if id <= 0 {
		return nil, domain.ErrToolNotFound
	}
	return s.tools.FindByID(ctx, id)
}
