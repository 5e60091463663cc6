package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `
	id, product_id, location_id, current_quantity, reserved_quantity,
	available_quantity, unit_cost, total_value, last_updated, last_updated_by,
	created_at, updated_at`

// Get devuelve el registro de stock o nil si no existe.
func (r *InventoryRepo) Get(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_records WHERE product_id = $1 AND location_id = $2`
	rec, err := scanInventoryRecord(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return rec, nil
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe, la materializa en
// cero dentro de la misma transacción para que el bloqueo sea efectivo en el primer
// movimiento de un producto/ubicación.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_records WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	rec, err := scanInventoryRecord(r.q.QueryRow(ctx, query, productID, locationID))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get inventory record for update: %w", err)
	}

	insert := `
		INSERT INTO inventory_records
			(id, product_id, location_id, current_quantity, reserved_quantity,
			 available_quantity, unit_cost, total_value, last_updated, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, 0, 0, now(), now(), now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), productID, locationID); err != nil {
		return nil, fmt.Errorf("materializar registro de inventario: %w", err)
	}
	rec, err = scanInventoryRecord(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		return nil, fmt.Errorf("get inventory record for update: %w", err)
	}
	return rec, nil
}

// Upsert inserta o actualiza el registro (por producto y ubicación).
func (r *InventoryRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_records
			(id, product_id, location_id, current_quantity, reserved_quantity,
			 available_quantity, unit_cost, total_value, last_updated, last_updated_by,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (product_id, location_id) DO UPDATE SET
			current_quantity  = EXCLUDED.current_quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			available_quantity = EXCLUDED.available_quantity,
			unit_cost   = EXCLUDED.unit_cost,
			total_value = EXCLUDED.total_value,
			last_updated = EXCLUDED.last_updated,
			last_updated_by = EXCLUDED.last_updated_by,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.LocationID, rec.CurrentQuantity, rec.ReservedQuantity,
		rec.AvailableQuantity, rec.UnitCost, rec.TotalValue, rec.LastUpdated, rec.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

// ListByLocation lista los registros de una ubicación con paginación.
func (r *InventoryRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_records WHERE location_id = $1
		ORDER BY product_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory by location: %w", err)
	}
	defer rows.Close()
	return collectInventoryRecords(rows)
}

// ListByProduct lista los registros de un producto en todas las ubicaciones.
func (r *InventoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_records WHERE product_id = $1
		ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list inventory by product: %w", err)
	}
	defer rows.Close()
	return collectInventoryRecords(rows)
}

// ListOutOfStock lista los registros con disponible <= 0 en la ubicación.
func (r *InventoryRepo) ListOutOfStock(ctx context.Context, locationID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + `
		FROM inventory_records WHERE location_id = $1 AND available_quantity <= 0
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list out of stock: %w", err)
	}
	defer rows.Close()
	return collectInventoryRecords(rows)
}

func scanInventoryRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.LocationID, &rec.CurrentQuantity, &rec.ReservedQuantity,
		&rec.AvailableQuantity, &rec.UnitCost, &rec.TotalValue, &rec.LastUpdated, &rec.LastUpdatedBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectInventoryRecords(rows pgx.Rows) ([]*entity.InventoryRecord, error) {
	var records []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanInventoryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory records: %w", err)
	}
	return records, nil
}
