package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre PostgreSQL.
// La traza es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `
	id, transaction_id, product_id, location_id, type, quantity,
	unit_cost, total_cost, reason, date, created_at, created_by`

// Create inserta un movimiento en la traza.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements
			(id, transaction_id, product_id, location_id, type, quantity,
			 unit_cost, total_cost, reason, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TransactionID, movement.ProductID, movement.LocationID,
		movement.Type, movement.Quantity, movement.UnitCost, movement.TotalCost,
		movement.Reason, movement.Date, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByLocation lista movimientos de una ubicación, filtrables por rango de fechas.
func (r *StockMovementRepo) ListByLocation(ctx context.Context, locationID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE location_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, locationID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by location: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByTransaction devuelve todos los movimientos de una misma unidad atómica.
func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE transaction_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list movements by transaction: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var movements []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		err := rows.Scan(
			&m.ID, &m.TransactionID, &m.ProductID, &m.LocationID, &m.Type, &m.Quantity,
			&m.UnitCost, &m.TotalCost, &m.Reason, &m.Date, &m.CreatedAt, &m.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}
	return movements, nil
}
