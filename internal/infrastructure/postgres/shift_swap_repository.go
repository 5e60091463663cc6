package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
)

var _ repository.ShiftSwapRepository = (*ShiftSwapRepo)(nil)

// ShiftSwapRepo implementación de ShiftSwapRepository sobre PostgreSQL.
type ShiftSwapRepo struct {
	q Querier
}

// NewShiftSwapRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftSwapRepository(q Querier) *ShiftSwapRepo {
	return &ShiftSwapRepo{q: q}
}

const swapColumns = `
	id, store_id, original_shift_id, requested_by_user_id, requested_to_user_id,
	original_shift_date, swap_shift_date, status, reason, manager_notes,
	approved_by, rejected_by, approved_at, rejected_at,
	created_at, updated_at, created_by, updated_by`

// Create inserta una solicitud de intercambio.
func (r *ShiftSwapRepo) Create(ctx context.Context, swap *entity.ShiftSwap) error {
	query := `
		INSERT INTO shift_swaps
			(id, store_id, original_shift_id, requested_by_user_id, requested_to_user_id,
			 original_shift_date, swap_shift_date, status, reason, manager_notes,
			 approved_by, rejected_by, approved_at, rejected_at,
			 created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		swap.ID, swap.StoreID, swap.OriginalShiftID, swap.RequestedByUserID, swap.RequestedToUserID,
		swap.OriginalShiftDate, swap.SwapShiftDate, swap.Status, swap.Reason, swap.ManagerNotes,
		nullIfEmpty(swap.ApprovedBy), nullIfEmpty(swap.RejectedBy), swap.ApprovedAt, swap.RejectedAt,
		swap.CreatedAt, swap.UpdatedAt, swap.CreatedBy, nullIfEmpty(swap.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSwapRequest
		}
		return fmt.Errorf("create shift swap: %w", err)
	}
	return nil
}

// Update persiste las transiciones de la solicitud.
func (r *ShiftSwapRepo) Update(ctx context.Context, swap *entity.ShiftSwap) error {
	query := `
		UPDATE shift_swaps SET
			status = $2, manager_notes = $3,
			approved_by = $4, rejected_by = $5, approved_at = $6, rejected_at = $7,
			updated_at = $8, updated_by = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		swap.ID, swap.Status, swap.ManagerNotes,
		nullIfEmpty(swap.ApprovedBy), nullIfEmpty(swap.RejectedBy), swap.ApprovedAt, swap.RejectedAt,
		swap.UpdatedAt, nullIfEmpty(swap.UpdatedBy),
	)
	if err != nil {
		return fmt.Errorf("update shift swap: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID devuelve la solicitud o nil si no existe.
func (r *ShiftSwapRepo) GetByID(ctx context.Context, id string) (*entity.ShiftSwap, error) {
	query := `SELECT ` + swapColumns + ` FROM shift_swaps WHERE id = $1`
	swap, err := scanSwap(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift swap: %w", err)
	}
	return swap, nil
}

// ExistsActiveSwap indica si ya hay un intercambio PENDING/APPROVED para ese turno
// y par de fechas.
func (r *ShiftSwapRepo) ExistsActiveSwap(ctx context.Context, shiftID string, originalDate, swapDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shift_swaps
			WHERE original_shift_id = $1
			  AND original_shift_date = $2
			  AND swap_shift_date = $3
			  AND status IN ('PENDING', 'APPROVED')
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, shiftID, originalDate, swapDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists active swap: %w", err)
	}
	return exists, nil
}

// ListByRequestedTo lista las solicitudes dirigidas a un usuario por estado.
func (r *ShiftSwapRepo) ListByRequestedTo(ctx context.Context, userID string, status entity.SwapStatus) ([]*entity.ShiftSwap, error) {
	query := `SELECT ` + swapColumns + `
		FROM shift_swaps WHERE requested_to_user_id = $1 AND status = $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list swaps by requested to: %w", err)
	}
	defer rows.Close()
	return collectSwaps(rows)
}

// ListByRequestedBy lista las solicitudes creadas por un usuario.
func (r *ShiftSwapRepo) ListByRequestedBy(ctx context.Context, userID string) ([]*entity.ShiftSwap, error) {
	query := `SELECT ` + swapColumns + `
		FROM shift_swaps WHERE requested_by_user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list swaps by requested by: %w", err)
	}
	defer rows.Close()
	return collectSwaps(rows)
}

// ListByStore lista las solicitudes de una tienda.
func (r *ShiftSwapRepo) ListByStore(ctx context.Context, storeID string) ([]*entity.ShiftSwap, error) {
	query := `SELECT ` + swapColumns + `
		FROM shift_swaps WHERE store_id = $1
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list swaps by store: %w", err)
	}
	defer rows.Close()
	return collectSwaps(rows)
}

func scanSwap(row pgx.Row) (*entity.ShiftSwap, error) {
	var s entity.ShiftSwap
	var approvedBy, rejectedBy, updatedBy *string
	err := row.Scan(
		&s.ID, &s.StoreID, &s.OriginalShiftID, &s.RequestedByUserID, &s.RequestedToUserID,
		&s.OriginalShiftDate, &s.SwapShiftDate, &s.Status, &s.Reason, &s.ManagerNotes,
		&approvedBy, &rejectedBy, &s.ApprovedAt, &s.RejectedAt,
		&s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	s.ApprovedBy = deref(approvedBy)
	s.RejectedBy = deref(rejectedBy)
	s.UpdatedBy = deref(updatedBy)
	return &s, nil
}

func collectSwaps(rows pgx.Rows) ([]*entity.ShiftSwap, error) {
	var swaps []*entity.ShiftSwap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift swap: %w", err)
		}
		swaps = append(swaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shift swaps: %w", err)
	}
	return swaps, nil
}
