package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toolrent/rental-system/internal/core/domain"
)

const toolColumns = `tool_id, name, price::float8, quantity, image, description`

type ToolRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewToolRepository(pool *pgxpool.Pool, timeout time.Duration) *ToolRepository {
	return &ToolRepository{pool: pool, timeout: timeout}
}

func (r *ToolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+toolColumns+` FROM tools ORDER BY tool_id`)
	if err != nil {
		return nil, translate("list tools", err)
	}
	defer rows.Close()

	tools := make([]domain.Tool, 0)
	for rows.Next() {
		var t domain.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, translate("scan tool", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list tools", err)
	}
	return tools, nil
}

func (r *ToolRepository) FindByID(ctx context.Context, id int64) (*domain.Tool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var t domain.Tool
	row := r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE tool_id = $1`, id)
	if err := scanTool(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrToolNotFound
		}
		return nil, translate("find tool", err)
	}
	return &t, nil
}

func (r *ToolRepository) Create(ctx context.Context, tool *domain.Tool) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO tools (name, price, quantity, image, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING tool_id
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query,
		tool.Name,
		tool.Price,
		tool.Quantity,
		tool.Image,
		tool.Description,
	).Scan(&id); err != nil {
		return 0, translate("insert tool", err)
	}
	return id, nil
}

// Delete removes the tool; a missing id yields domain.ErrToolNotFound.
func (r *ToolRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tools WHERE tool_id = $1`, id)
	if err != nil {
		return translate("delete tool", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrToolNotFound
	}
	return nil
}

func scanTool(row pgx.Row, t *domain.Tool) error {
	return row.Scan(&t.ID, &t.Name, &t.Price, &t.Quantity, &t.Image, &t.Description)
}
