package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/multitienda-api/internal/application/dto"
	"github.com/jhoicas/multitienda-api/internal/application/shift"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// ShiftHandler maneja turnos de caja e intercambios de turno (protegido).
type ShiftHandler struct {
	uc *shift.Usecase
}

// NewShiftHandler construye el handler.
func NewShiftHandler(uc *shift.Usecase) *ShiftHandler {
	return &ShiftHandler{uc: uc}
}

// Schedule godoc
// @Summary      Programar un turno (PENDING) para una fecha
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScheduleShiftRequest  true  "tienda, usuario, fecha, fondo inicial"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shifts/schedule [post]
func (h *ShiftHandler) Schedule(c *fiber.Ctx) error {
	var in dto.ScheduleShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sh, err := h.uc.Schedule(c.Context(), shift.ScheduleInput{
		StoreID:           in.StoreID,
		UserID:            in.UserID,
		ShiftDate:         in.ShiftDate,
		ExpectedStartTime: in.ExpectedStartTime,
		ExpectedEndTime:   in.ExpectedEndTime,
		StartingCash:      in.StartingCash,
		Notes:             in.Notes,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromShift(sh))
}

// Start godoc
// @Summary      Iniciar turno con fondo de caja (único turno activo por usuario)
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartShiftRequest  true  "tienda y fondo inicial"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/start [post]
func (h *ShiftHandler) Start(c *fiber.Ctx) error {
	var in dto.StartShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	userID := GetUserID(c)
	sh, err := h.uc.Start(c.Context(), in.StoreID, userID, in.StartingCash, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromShift(sh))
}

// Activate godoc
// @Summary      Iniciar un turno programado (PENDING → ACTIVE)
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del turno"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/activate [post]
func (h *ShiftHandler) Activate(c *fiber.Ctx) error {
	sh, err := h.uc.Activate(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShift(sh))
}

// End godoc
// @Summary      Cerrar turno con arqueo de caja
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del turno"
// @Param        body  body  dto.EndShiftRequest  true  "efectivo final y esperado"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/end [post]
func (h *ShiftHandler) End(c *fiber.Ctx) error {
	var in dto.EndShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sh, err := h.uc.End(c.Context(), c.Params("id"), shift.EndInput{
		EndingCash:   in.EndingCash,
		ExpectedCash: in.ExpectedCash,
		Notes:        in.Notes,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShift(sh))
}

// StartDay godoc
// @Summary      Abrir el día: activa los turnos programados de la tienda
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true  "tienda"
// @Param        date      query  string  true  "fecha YYYY-MM-DD"
// @Success      200  {array}  dto.ShiftResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/start-day [post]
func (h *ShiftHandler) StartDay(c *fiber.Ctx) error {
	date, err := parseDateQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
	}
	started, err := h.uc.StartDay(c.Context(), c.Query("store_id"), date, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShifts(started))
}

// EndDay godoc
// @Summary      Cerrar el día: rechaza si quedan turnos activos sin arqueo
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true  "tienda"
// @Param        date      query  string  true  "fecha YYYY-MM-DD"
// @Success      200  {array}  dto.ShiftResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/end-day [post]
func (h *ShiftHandler) EndDay(c *fiber.Ctx) error {
	date, err := parseDateQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
	}
	cancelled, err := h.uc.EndDay(c.Context(), c.Query("store_id"), date, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShifts(cancelled))
}

// ActiveShift godoc
// @Summary      Turno activo del usuario autenticado en la tienda
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true  "tienda"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/active [get]
func (h *ShiftHandler) ActiveShift(c *fiber.Ctx) error {
	sh, err := h.uc.ActiveShift(c.Context(), c.Query("store_id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShift(sh))
}

// GetByID godoc
// @Summary      Detalle de un turno
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del turno"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id} [get]
func (h *ShiftHandler) GetByID(c *fiber.Ctx) error {
	sh, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShift(sh))
}

// List godoc
// @Summary      Turnos de una tienda (por fecha, estado o rango)
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true   "tienda"
// @Param        date      query  string  false  "fecha YYYY-MM-DD"
// @Param        status    query  string  false  "PENDING|ACTIVE|COMPLETED|CANCELLED"
// @Param        from      query  string  false  "inicio de rango YYYY-MM-DD"
// @Param        to        query  string  false  "fin de rango YYYY-MM-DD"
// @Success      200  {array}  dto.ShiftResponse
// @Router       /api/shifts [get]
func (h *ShiftHandler) List(c *fiber.Ctx) error {
	storeID := c.Query("store_id")
	switch {
	case c.Query("date") != "":
		date, err := time.Parse("2006-01-02", c.Query("date"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
		}
		shifts, err := h.uc.ListByStoreAndDate(c.Context(), storeID, date)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShifts(shifts))
	case c.Query("status") != "":
		shifts, err := h.uc.ListByStoreAndStatus(c.Context(), storeID, entity.ShiftStatus(c.Query("status")))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShifts(shifts))
	case c.Query("from") != "" && c.Query("to") != "":
		from, err1 := time.Parse("2006-01-02", c.Query("from"))
		to, err2 := time.Parse("2006-01-02", c.Query("to"))
		if err1 != nil || err2 != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido (YYYY-MM-DD)"})
		}
		shifts, err := h.uc.ListByDateRange(c.Context(), storeID, from, to)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShifts(shifts))
	default:
		shifts, err := h.uc.ListActiveByStore(c.Context(), storeID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShifts(shifts))
	}
}

// RequestSwap godoc
// @Summary      Solicitar intercambio de un turno propio
// @Tags         shift-swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestSwapRequest  true  "turno original, empleado solicitado, fecha"
// @Success      201   {object}  dto.ShiftSwapResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shift-swaps [post]
func (h *ShiftHandler) RequestSwap(c *fiber.Ctx) error {
	var in dto.RequestSwapRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	swap, err := h.uc.RequestSwap(c.Context(), shift.SwapRequestInput{
		OriginalShiftID:   in.OriginalShiftID,
		RequestedToUserID: in.RequestedToUserID,
		SwapShiftDate:     in.SwapShiftDate,
		Reason:            in.Reason,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromShiftSwap(swap))
}

// ApproveSwapByEmployee godoc
// @Summary      Aceptar intercambio como empleado solicitado
// @Tags         shift-swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del intercambio"
// @Success      200  {object}  dto.ShiftSwapResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shift-swaps/{id}/approve [post]
func (h *ShiftHandler) ApproveSwapByEmployee(c *fiber.Ctx) error {
	swap, err := h.uc.ApproveSwapByEmployee(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShiftSwap(swap))
}

// ApproveSwapByManager godoc
// @Summary      Aprobar intercambio como gerente (reasigna el turno)
// @Tags         shift-swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID del intercambio"
// @Param        body  body  dto.SwapDecisionRequest  false  "notas del gerente"
// @Success      200   {object}  dto.ShiftSwapResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shift-swaps/{id}/manager-approve [post]
func (h *ShiftHandler) ApproveSwapByManager(c *fiber.Ctx) error {
	var in dto.SwapDecisionRequest
	_ = c.BodyParser(&in)
	swap, err := h.uc.ApproveSwapByManager(c.Context(), c.Params("id"), GetUserID(c), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShiftSwap(swap))
}

// RejectSwap godoc
// @Summary      Rechazar intercambio
// @Tags         shift-swaps
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID del intercambio"
// @Param        body  body  dto.SwapDecisionRequest  false  "notas"
// @Success      200   {object}  dto.ShiftSwapResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shift-swaps/{id}/reject [post]
func (h *ShiftHandler) RejectSwap(c *fiber.Ctx) error {
	var in dto.SwapDecisionRequest
	_ = c.BodyParser(&in)
	swap, err := h.uc.RejectSwap(c.Context(), c.Params("id"), GetUserID(c), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShiftSwap(swap))
}

// CancelSwap godoc
// @Summary      Cancelar intercambio (solo el solicitante)
// @Tags         shift-swaps
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del intercambio"
// @Success      200  {object}  dto.ShiftSwapResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shift-swaps/{id}/cancel [post]
func (h *ShiftHandler) CancelSwap(c *fiber.Ctx) error {
	swap, err := h.uc.CancelSwap(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromShiftSwap(swap))
}

// ListSwaps godoc
// @Summary      Intercambios (recibidos, enviados o por tienda)
// @Tags         shift-swaps
// @Security     Bearer
// @Produce      json
// @Param        box       query  string  false  "inbox (recibidos) | outbox (enviados)"
// @Param        status    query  string  false  "estado para inbox (default PENDING)"
// @Param        store_id  query  string  false  "tienda (gerencia)"
// @Success      200  {array}  dto.ShiftSwapResponse
// @Router       /api/shift-swaps [get]
func (h *ShiftHandler) ListSwaps(c *fiber.Ctx) error {
	userID := GetUserID(c)
	switch c.Query("box") {
	case "outbox":
		swaps, err := h.uc.ListSwapsByRequestedBy(c.Context(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShiftSwaps(swaps))
	case "inbox", "":
		status := entity.SwapPending
		if s := c.Query("status"); s != "" {
			status = entity.SwapStatus(s)
		}
		if storeID := c.Query("store_id"); storeID != "" {
			swaps, err := h.uc.ListSwapsByStore(c.Context(), storeID)
			if err != nil {
				return respondError(c, err)
			}
			return c.JSON(dto.FromShiftSwaps(swaps))
		}
		swaps, err := h.uc.ListSwapsByRequestedTo(c.Context(), userID, status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FromShiftSwaps(swaps))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "box debe ser inbox u outbox"})
	}
}

func parseDateQuery(c *fiber.Ctx) (time.Time, error) {
	return time.Parse("2006-01-02", c.Query("date"))
}
