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

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo implementación de ShiftRepository sobre PostgreSQL.
// La unicidad de turno ACTIVE por usuario se respalda con un índice único parcial:
//
//	CREATE UNIQUE INDEX shifts_one_active_per_user
//	    ON shifts (user_id) WHERE status = 'ACTIVE';
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `
	id, store_id, user_id, shift_date,
	started_at, ended_at, expected_start_time, expected_end_time,
	starting_cash, ending_cash, expected_cash, cash_difference,
	status, notes, ended_by,
	created_at, updated_at, created_by, updated_by`

// Create inserta un turno. Una violación del índice único parcial (dos ACTIVE del
// mismo usuario por carrera) se traduce a ErrShiftAlreadyActive.
func (r *ShiftRepo) Create(ctx context.Context, shift *entity.Shift) error {
	query := `
		INSERT INTO shifts
			(id, store_id, user_id, shift_date,
			 started_at, ended_at, expected_start_time, expected_end_time,
			 starting_cash, ending_cash, expected_cash, cash_difference,
			 status, notes, ended_by,
			 created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		shift.ID, shift.StoreID, shift.UserID, shift.ShiftDate,
		shift.StartedAt, shift.EndedAt, shift.ExpectedStartTime, shift.ExpectedEndTime,
		shift.StartingCash, shift.EndingCash, shift.ExpectedCash, shift.CashDifference,
		shift.Status, shift.Notes, nullIfEmpty(shift.EndedBy),
		shift.CreatedAt, shift.UpdatedAt, shift.CreatedBy, nullIfEmpty(shift.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrShiftAlreadyActive
		}
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Update persiste las transiciones del turno y el arqueo de cierre.
func (r *ShiftRepo) Update(ctx context.Context, shift *entity.Shift) error {
	query := `
		UPDATE shifts SET
			user_id = $2, started_at = $3, ended_at = $4,
			ending_cash = $5, expected_cash = $6, cash_difference = $7,
			status = $8, notes = $9, ended_by = $10,
			updated_at = $11, updated_by = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		shift.ID, shift.UserID, shift.StartedAt, shift.EndedAt,
		shift.EndingCash, shift.ExpectedCash, shift.CashDifference,
		shift.Status, shift.Notes, nullIfEmpty(shift.EndedBy),
		shift.UpdatedAt, nullIfEmpty(shift.UpdatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrShiftAlreadyActive
		}
		return fmt.Errorf("update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID devuelve el turno o nil si no existe.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*entity.Shift, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea el turno durante la transición.
func (r *ShiftRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shift, error) {
	return r.get(ctx, id, true)
}

func (r *ShiftRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	shift, err := scanShift(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return shift, nil
}

// HasActiveShift indica si el usuario tiene un turno ACTIVE en cualquier tienda.
func (r *ShiftRepo) HasActiveShift(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shifts WHERE user_id = $1 AND status = 'ACTIVE')`
	var exists bool
	if err := r.q.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has active shift: %w", err)
	}
	return exists, nil
}

// GetActiveShift devuelve el turno ACTIVE del usuario en la tienda, o nil.
func (r *ShiftRepo) GetActiveShift(ctx context.Context, storeID, userID string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + `
		FROM shifts WHERE store_id = $1 AND user_id = $2 AND status = 'ACTIVE'`
	shift, err := scanShift(r.q.QueryRow(ctx, query, storeID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active shift: %w", err)
	}
	return shift, nil
}

// ListByStoreAndDate lista los turnos de una tienda para una fecha.
func (r *ShiftRepo) ListByStoreAndDate(ctx context.Context, storeID string, date time.Time) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + `
		FROM shifts WHERE store_id = $1 AND shift_date = $2
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, storeID, date)
	if err != nil {
		return nil, fmt.Errorf("list shifts by store and date: %w", err)
	}
	defer rows.Close()
	return collectShifts(rows)
}

// ListByStoreAndStatus lista los turnos de una tienda por estado.
func (r *ShiftRepo) ListByStoreAndStatus(ctx context.Context, storeID string, status entity.ShiftStatus) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + `
		FROM shifts WHERE store_id = $1 AND status = $2
		ORDER BY shift_date DESC, created_at`
	rows, err := r.q.Query(ctx, query, storeID, status)
	if err != nil {
		return nil, fmt.Errorf("list shifts by store and status: %w", err)
	}
	defer rows.Close()
	return collectShifts(rows)
}

// ListActiveByStore lista los turnos ACTIVE de una tienda.
func (r *ShiftRepo) ListActiveByStore(ctx context.Context, storeID string) ([]*entity.Shift, error) {
	return r.ListByStoreAndStatus(ctx, storeID, entity.ShiftActive)
}

// ListByDateRange lista los turnos de una tienda en un rango de fechas.
func (r *ShiftRepo) ListByDateRange(ctx context.Context, storeID string, from, to time.Time) ([]*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + `
		FROM shifts WHERE store_id = $1 AND shift_date >= $2 AND shift_date <= $3
		ORDER BY shift_date, created_at`
	rows, err := r.q.Query(ctx, query, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list shifts by date range: %w", err)
	}
	defer rows.Close()
	return collectShifts(rows)
}

func scanShift(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	var endedBy, updatedBy *string
	err := row.Scan(
		&s.ID, &s.StoreID, &s.UserID, &s.ShiftDate,
		&s.StartedAt, &s.EndedAt, &s.ExpectedStartTime, &s.ExpectedEndTime,
		&s.StartingCash, &s.EndingCash, &s.ExpectedCash, &s.CashDifference,
		&s.Status, &s.Notes, &endedBy,
		&s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &updatedBy,
	)
	if err != nil {
		return nil, err
	}
	s.EndedBy = deref(endedBy)
	s.UpdatedBy = deref(updatedBy)
	return &s, nil
}

func collectShifts(rows pgx.Rows) ([]*entity.Shift, error) {
	var shifts []*entity.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, nil
}
