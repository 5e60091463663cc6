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

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo implementación de StockTransferRepository sobre PostgreSQL.
// El traslado es dueño de sus items (cascada en Create; sin Delete).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const transferColumns = `
	id, transfer_no, from_store_id, to_store_id, from_warehouse_id, to_warehouse_id,
	status, type, priority, requested_by, approved_by, received_by,
	transfer_date, estimated_delivery_date, actual_delivery_date, received_date,
	shipping_method, tracking_number, notes,
	created_at, updated_at, created_by, updated_by`

// Create inserta el traslado y sus items en cascada.
func (r *StockTransferRepo) Create(ctx context.Context, transfer *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers
			(id, transfer_no, from_store_id, to_store_id, from_warehouse_id, to_warehouse_id,
			 status, type, priority, requested_by, approved_by, received_by,
			 transfer_date, estimated_delivery_date, actual_delivery_date, received_date,
			 shipping_method, tracking_number, notes,
			 created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		transfer.ID, transfer.TransferNo, transfer.FromStoreID, transfer.ToStoreID,
		nullIfEmpty(transfer.FromWarehouseID), nullIfEmpty(transfer.ToWarehouseID),
		transfer.Status, transfer.Type, transfer.Priority,
		transfer.RequestedBy, nullIfEmpty(transfer.ApprovedBy), nullIfEmpty(transfer.ReceivedBy),
		transfer.TransferDate, transfer.EstimatedDeliveryDate, transfer.ActualDeliveryDate, transfer.ReceivedDate,
		transfer.ShippingMethod, transfer.TrackingNumber, transfer.Notes,
		transfer.CreatedAt, transfer.UpdatedAt, transfer.CreatedBy, nullIfEmpty(transfer.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock transfer: %w", err)
	}
	for _, item := range transfer.Items {
		itemQuery := `
			INSERT INTO stock_transfer_items
				(id, transfer_id, product_id, requested_quantity, received_quantity, damaged_quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := r.q.Exec(ctx, itemQuery,
			item.ID, item.TransferID, item.ProductID,
			item.RequestedQuantity, item.ReceivedQuantity, item.DamagedQuantity,
		)
		if err != nil {
			return fmt.Errorf("create transfer item: %w", err)
		}
	}
	return nil
}

// Update persiste la cabecera (estado, actores, fechas, notas); no toca items.
func (r *StockTransferRepo) Update(ctx context.Context, transfer *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET
			status = $2, approved_by = $3, received_by = $4,
			transfer_date = $5, estimated_delivery_date = $6,
			actual_delivery_date = $7, received_date = $8,
			shipping_method = $9, tracking_number = $10, notes = $11,
			updated_at = $12, updated_by = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		transfer.ID, transfer.Status, nullIfEmpty(transfer.ApprovedBy), nullIfEmpty(transfer.ReceivedBy),
		transfer.TransferDate, transfer.EstimatedDeliveryDate,
		transfer.ActualDeliveryDate, transfer.ReceivedDate,
		transfer.ShippingMethod, transfer.TrackingNumber, transfer.Notes,
		transfer.UpdatedAt, nullIfEmpty(transfer.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItems persiste las cantidades recibidas/dañadas de los items.
func (r *StockTransferRepo) UpdateItems(ctx context.Context, items []*entity.StockTransferItem) error {
	query := `
		UPDATE stock_transfer_items SET received_quantity = $2, damaged_quantity = $3
		WHERE id = $1`
	for _, item := range items {
		if _, err := r.q.Exec(ctx, query, item.ID, item.ReceivedQuantity, item.DamagedQuantity); err != nil {
			return fmt.Errorf("update transfer item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve el traslado con sus items, o nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera del traslado durante la transición.
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, true)
}

func (r *StockTransferRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	transfer, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	if err := r.loadItems(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// ListByStore lista traslados donde la tienda es origen o destino; status nil = todos.
func (r *StockTransferRepo) ListByStore(ctx context.Context, storeID string, status *entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + `
		FROM stock_transfers
		WHERE (from_store_id = $1 OR to_store_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, storeID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers by store: %w", err)
	}
	defer rows.Close()

	var transfers []*entity.StockTransfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock transfers: %w", err)
	}
	for _, transfer := range transfers {
		if err := r.loadItems(ctx, transfer); err != nil {
			return nil, err
		}
	}
	return transfers, nil
}

func (r *StockTransferRepo) loadItems(ctx context.Context, transfer *entity.StockTransfer) error {
	query := `
		SELECT id, transfer_id, product_id, requested_quantity, received_quantity, damaged_quantity
		FROM stock_transfer_items WHERE transfer_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, transfer.ID)
	if err != nil {
		return fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()

	transfer.Items = nil
	for rows.Next() {
		var item entity.StockTransferItem
		err := rows.Scan(&item.ID, &item.TransferID, &item.ProductID,
			&item.RequestedQuantity, &item.ReceivedQuantity, &item.DamagedQuantity)
		if err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		transfer.Items = append(transfer.Items, &item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transfer items: %w", err)
	}
	return nil
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var fromWarehouse, toWarehouse, approvedBy, receivedBy, updatedBy *string
	err := row.Scan(
		&t.ID, &t.TransferNo, &t.FromStoreID, &t.ToStoreID, &fromWarehouse, &toWarehouse,
		&t.Status, &t.Type, &t.Priority, &t.RequestedBy, &approvedBy, &receivedBy,
		&t.TransferDate, &t.EstimatedDeliveryDate, &t.ActualDeliveryDate, &t.ReceivedDate,
		&t.ShippingMethod, &t.TrackingNumber, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	t.FromWarehouseID = deref(fromWarehouse)
	t.ToWarehouseID = deref(toWarehouse)
	t.ApprovedBy = deref(approvedBy)
	t.ReceivedBy = deref(receivedBy)
	t.UpdatedBy = deref(updatedBy)
	return &t, nil
}
