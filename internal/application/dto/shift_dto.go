package dto

import (
	"time"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ScheduleShiftRequest body para POST /api/shifts/schedule.
type ScheduleShiftRequest struct {
	StoreID           string          `json:"store_id"`
	UserID            string          `json:"user_id"`
	ShiftDate         time.Time       `json:"shift_date"`
	ExpectedStartTime *time.Time      `json:"expected_start_time,omitempty"`
	ExpectedEndTime   *time.Time      `json:"expected_end_time,omitempty"`
	StartingCash      decimal.Decimal `json:"starting_cash"`
	Notes             string          `json:"notes,omitempty"`
}

// StartShiftRequest body para POST /api/shifts/start.
type StartShiftRequest struct {
	StoreID      string          `json:"store_id"`
	StartingCash decimal.Decimal `json:"starting_cash"`
}

// EndShiftRequest body para POST /api/shifts/:id/end (arqueo de cierre).
type EndShiftRequest struct {
	EndingCash   decimal.Decimal  `json:"ending_cash"`
	ExpectedCash *decimal.Decimal `json:"expected_cash,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// ShiftResponse turno en respuestas.
type ShiftResponse struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	UserID    string    `json:"user_id"`
	ShiftDate time.Time `json:"shift_date"`

	StartedAt         *time.Time `json:"started_at,omitempty"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	ExpectedStartTime *time.Time `json:"expected_start_time,omitempty"`
	ExpectedEndTime   *time.Time `json:"expected_end_time,omitempty"`

	StartingCash   decimal.Decimal  `json:"starting_cash"`
	EndingCash     *decimal.Decimal `json:"ending_cash,omitempty"`
	ExpectedCash   *decimal.Decimal `json:"expected_cash,omitempty"`
	CashDifference *decimal.Decimal `json:"cash_difference,omitempty"`

	Status  string `json:"status"`
	Notes   string `json:"notes,omitempty"`
	EndedBy string `json:"ended_by,omitempty"`
}

// FromShift mapea la entidad a la respuesta.
func FromShift(s *entity.Shift) ShiftResponse {
	return ShiftResponse{
		ID:        s.ID,
		StoreID:   s.StoreID,
		UserID:    s.UserID,
		ShiftDate: s.ShiftDate,

		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		ExpectedStartTime: s.ExpectedStartTime,
		ExpectedEndTime:   s.ExpectedEndTime,

		StartingCash:   s.StartingCash,
		EndingCash:     s.EndingCash,
		ExpectedCash:   s.ExpectedCash,
		CashDifference: s.CashDifference,

		Status:  string(s.Status),
		Notes:   s.Notes,
		EndedBy: s.EndedBy,
	}
}

// FromShifts mapea un listado.
func FromShifts(shifts []*entity.Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, FromShift(s))
	}
	return out
}

// RequestSwapRequest body para POST /api/shift-swaps.
type RequestSwapRequest struct {
	OriginalShiftID   string    `json:"original_shift_id"`
	RequestedToUserID string    `json:"requested_to_user_id"`
	SwapShiftDate     time.Time `json:"swap_shift_date"`
	Reason            string    `json:"reason,omitempty"`
}

// SwapDecisionRequest body para aprobar/rechazar con notas del gerente.
type SwapDecisionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ShiftSwapResponse solicitud de intercambio en respuestas.
type ShiftSwapResponse struct {
	ID                string     `json:"id"`
	StoreID           string     `json:"store_id"`
	OriginalShiftID   string     `json:"original_shift_id"`
	RequestedByUserID string     `json:"requested_by_user_id"`
	RequestedToUserID string     `json:"requested_to_user_id"`
	OriginalShiftDate time.Time  `json:"original_shift_date"`
	SwapShiftDate     time.Time  `json:"swap_shift_date"`
	Status            string     `json:"status"`
	Reason            string     `json:"reason,omitempty"`
	ManagerNotes      string     `json:"manager_notes,omitempty"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	RejectedBy        string     `json:"rejected_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
}

// FromShiftSwap mapea la entidad a la respuesta.
func FromShiftSwap(s *entity.ShiftSwap) ShiftSwapResponse {
	return ShiftSwapResponse{
		ID:                s.ID,
		StoreID:           s.StoreID,
		OriginalShiftID:   s.OriginalShiftID,
		RequestedByUserID: s.RequestedByUserID,
		RequestedToUserID: s.RequestedToUserID,
		OriginalShiftDate: s.OriginalShiftDate,
		SwapShiftDate:     s.SwapShiftDate,
		Status:            string(s.Status),
		Reason:            s.Reason,
		ManagerNotes:      s.ManagerNotes,
		ApprovedBy:        s.ApprovedBy,
		RejectedBy:        s.RejectedBy,
		ApprovedAt:        s.ApprovedAt,
		RejectedAt:        s.RejectedAt,
	}
}

// FromShiftSwaps mapea un listado.
func FromShiftSwaps(swaps []*entity.ShiftSwap) []ShiftSwapResponse {
	out := make([]ShiftSwapResponse, 0, len(swaps))
	for _, s := range swaps {
		out = append(out, FromShiftSwap(s))
	}
	return out
}
