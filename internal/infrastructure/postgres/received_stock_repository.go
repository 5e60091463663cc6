package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

var _ repository.ReceivedStockRepository = (*ReceivedStockRepo)(nil)

// ReceivedStockRepo implementación de ReceivedStockRepository sobre PostgreSQL.
type ReceivedStockRepo struct {
	q Querier
}

// NewReceivedStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivedStockRepository(q Querier) *ReceivedStockRepo {
	return &ReceivedStockRepo{q: q}
}

const receivedColumns = `
	id, product_id, product_code, product_name, location_id,
	expected_quantity, received_quantity, verified_quantity,
	damage_quantity, shortage_quantity, excess_quantity,
	unit_price, total_value, status,
	batch_number, supplier_name, supplier_invoice_number,
	delivery_date, expected_delivery_date, received_date, verified_date,
	received_by, verified_by, notes, quality_issues,
	upload_id, row_number,
	created_at, updated_at, created_by, updated_by`

// Create inserta una línea de stock recibido.
func (r *ReceivedStockRepo) Create(ctx context.Context, rs *entity.ReceivedStock) error {
	query := `
		INSERT INTO received_stock
			(id, product_id, product_code, product_name, location_id,
			 expected_quantity, received_quantity, verified_quantity,
			 damage_quantity, shortage_quantity, excess_quantity,
			 unit_price, total_value, status,
			 batch_number, supplier_name, supplier_invoice_number,
			 delivery_date, expected_delivery_date, received_date, verified_date,
			 received_by, verified_by, notes, quality_issues,
			 upload_id, row_number,
			 created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25,
		        $26, $27, $28, $29, $30, $31)`
	_, err := r.q.Exec(ctx, query,
		rs.ID, rs.ProductID, rs.ProductCode, rs.ProductName, rs.LocationID,
		rs.ExpectedQuantity, rs.ReceivedQuantity, rs.VerifiedQuantity,
		rs.DamageQuantity, rs.ShortageQuantity, rs.ExcessQuantity,
		rs.UnitPrice, rs.TotalValue, rs.Status,
		rs.BatchNumber, rs.SupplierName, rs.SupplierInvoiceNumber,
		rs.DeliveryDate, rs.ExpectedDeliveryDate, rs.ReceivedDate, rs.VerifiedDate,
		nullIfEmpty(rs.ReceivedBy), nullIfEmpty(rs.VerifiedBy), rs.Notes, rs.QualityIssues,
		nullIfEmpty(rs.UploadID), rs.RowNumber,
		rs.CreatedAt, rs.UpdatedAt, rs.CreatedBy, nullIfEmpty(rs.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create received stock: %w", err)
	}
	return nil
}

// Update persiste el resultado de la verificación.
func (r *ReceivedStockRepo) Update(ctx context.Context, rs *entity.ReceivedStock) error {
	query := `
		UPDATE received_stock SET
			verified_quantity = $2, damage_quantity = $3,
			shortage_quantity = $4, excess_quantity = $5,
			status = $6, verified_date = $7, verified_by = $8,
			notes = $9, quality_issues = $10,
			updated_at = $11, updated_by = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		rs.ID, rs.VerifiedQuantity, rs.DamageQuantity,
		rs.ShortageQuantity, rs.ExcessQuantity,
		rs.Status, rs.VerifiedDate, nullIfEmpty(rs.VerifiedBy),
		rs.Notes, rs.QualityIssues,
		rs.UpdatedAt, nullIfEmpty(rs.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("update received stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID devuelve la línea o nil si no existe.
func (r *ReceivedStockRepo) GetByID(ctx context.Context, id string) (*entity.ReceivedStock, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la línea durante la verificación.
func (r *ReceivedStockRepo) GetForUpdate(ctx context.Context, id string) (*entity.ReceivedStock, error) {
	return r.get(ctx, id, true)
}

func (r *ReceivedStockRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.ReceivedStock, error) {
	query := `SELECT ` + receivedColumns + ` FROM received_stock WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rs, err := scanReceivedStock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get received stock: %w", err)
	}
	return rs, nil
}

// ListByStatus lista líneas por estado.
func (r *ReceivedStockRepo) ListByStatus(ctx context.Context, status entity.ReceivedStockStatus, limit, offset int) ([]*entity.ReceivedStock, error) {
	query := `SELECT ` + receivedColumns + `
		FROM received_stock WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list received stock by status: %w", err)
	}
	defer rows.Close()
	return collectReceivedStock(rows)
}

// ListByUpload devuelve las líneas de una carga masiva, ordenadas por fila.
func (r *ReceivedStockRepo) ListByUpload(ctx context.Context, uploadID string) ([]*entity.ReceivedStock, error) {
	query := `SELECT ` + receivedColumns + `
		FROM received_stock WHERE upload_id = $1
		ORDER BY row_number`
	rows, err := r.q.Query(ctx, query, uploadID)
	if err != nil {
		return nil, fmt.Errorf("list received stock by upload: %w", err)
	}
	defer rows.Close()
	return collectReceivedStock(rows)
}

// ListPending lista líneas pendientes de verificación.
func (r *ReceivedStockRepo) ListPending(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return r.ListByStatus(ctx, entity.ReceivedPending, limit, offset)
}

// ListDiscrepancies lista líneas verificadas con discrepancia.
func (r *ReceivedStockRepo) ListDiscrepancies(ctx context.Context, limit, offset int) ([]*entity.ReceivedStock, error) {
	return r.ListByStatus(ctx, entity.ReceivedDiscrepancy, limit, offset)
}

func scanReceivedStock(row pgx.Row) (*entity.ReceivedStock, error) {
	var rs entity.ReceivedStock
	var receivedBy, verifiedBy, uploadID, updatedBy *string
	err := row.Scan(
		&rs.ID, &rs.ProductID, &rs.ProductCode, &rs.ProductName, &rs.LocationID,
		&rs.ExpectedQuantity, &rs.ReceivedQuantity, &rs.VerifiedQuantity,
		&rs.DamageQuantity, &rs.ShortageQuantity, &rs.ExcessQuantity,
		&rs.UnitPrice, &rs.TotalValue, &rs.Status,
		&rs.BatchNumber, &rs.SupplierName, &rs.SupplierInvoiceNumber,
		&rs.DeliveryDate, &rs.ExpectedDeliveryDate, &rs.ReceivedDate, &rs.VerifiedDate,
		&receivedBy, &verifiedBy, &rs.Notes, &rs.QualityIssues,
		&uploadID, &rs.RowNumber,
		&rs.CreatedAt, &rs.UpdatedAt, &rs.CreatedBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	rs.ReceivedBy = deref(receivedBy)
	rs.VerifiedBy = deref(verifiedBy)
	rs.UploadID = deref(uploadID)
	rs.UpdatedBy = deref(updatedBy)
	return &rs, nil
}

func collectReceivedStock(rows pgx.Rows) ([]*entity.ReceivedStock, error) {
	var lines []*entity.ReceivedStock
	for rows.Next() {
		rs, err := scanReceivedStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan received stock: %w", err)
		}
		lines = append(lines, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate received stock: %w", err)
	}
	return lines, nil
}
