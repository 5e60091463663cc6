package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/multitienda-api/internal/application/dto"
	"github.com/jhoicas/multitienda-api/internal/application/ledger"
)

// InventoryHandler maneja las operaciones del libro de inventario (protegido).
type InventoryHandler struct {
	uc *ledger.Usecase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.Usecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar stock para una venta en curso
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LedgerOperationRequest  true  "product_id, location_id, quantity"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var in dto.LedgerOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Reserve(c.Context(), in.ProductID, in.LocationID, in.Quantity, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// Release godoc
// @Summary      Liberar una reserva
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LedgerOperationRequest  true  "product_id, location_id, quantity"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var in dto.LedgerOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Release(c.Context(), in.ProductID, in.LocationID, in.Quantity, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// Commit godoc
// @Summary      Confirmar la salida de stock reservado (cierre de venta)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LedgerOperationRequest  true  "product_id, location_id, quantity"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/commit [post]
func (h *InventoryHandler) Commit(c *fiber.Ctx) error {
	var in dto.LedgerOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Commit(c.Context(), in.ProductID, in.LocationID, in.Quantity, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// Receive godoc
// @Summary      Entrada directa de proveedor con costo promedio ponderado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "product_id, location_id, quantity, unit_cost"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Receive(c.Context(), in.ProductID, in.LocationID, in.Quantity, in.UnitCost, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// Adjust godoc
// @Summary      Ajuste directo de stock con motivo (merma, conteo)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LedgerOperationRequest  true  "product_id, location_id, quantity (delta con signo), reason"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.LedgerOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.Adjust(c.Context(), in.ProductID, in.LocationID, in.Quantity, in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// Transfer godoc
// @Summary      Traslado directo entre ubicaciones (sin flujo de aprobación)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DirectTransferRequest  true  "product_id, from_location_id, to_location_id, quantity"
// @Success      200   {object}  map[string]dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.DirectTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Transfer(c.Context(), in.ProductID, in.FromLocationID, in.ToLocationID, in.Quantity, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"source":      dto.FromInventoryRecord(result.Source),
		"destination": dto.FromInventoryRecord(result.Destination),
	})
}

// GetRecord godoc
// @Summary      Foto actual del registro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true  "producto"
// @Param        location_id  query  string  true  "ubicación"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/record [get]
func (h *InventoryHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.uc.Get(c.Context(), c.Query("product_id"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro no encontrado"})
	}
	return c.JSON(dto.FromInventoryRecord(rec))
}

// ListByLocation godoc
// @Summary      Registros de stock de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true   "ubicación"
// @Param        limit        query  int     false  "máx resultados"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory/records [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	records, err := h.uc.ListByLocation(c.Context(), c.Query("location_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecords(records))
}

// ListByProduct godoc
// @Summary      Stock de un producto en todas las ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "producto"
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory/products/{product_id} [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	records, err := h.uc.ListByProduct(c.Context(), c.Params("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecords(records))
}

// ListMovements godoc
// @Summary      Traza de movimientos de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true   "ubicación"
// @Param        from         query  string  false  "inicio de rango YYYY-MM-DD"
// @Param        to           query  string  false  "fin de rango YYYY-MM-DD"
// @Param        limit        query  int     false  "máx resultados"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
		}
		to = &t
	}
	movements, err := h.uc.ListMovements(c.Context(), c.Query("location_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromStockMovements(movements))
}

// MovementsByTransaction godoc
// @Summary      Movimientos de una misma unidad atómica
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        transaction_id  path  string  true  "ID de transacción del libro"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/inventory/movements/{transaction_id} [get]
func (h *InventoryHandler) MovementsByTransaction(c *fiber.Ctx) error {
	movements, err := h.uc.MovementsByTransaction(c.Context(), c.Params("transaction_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromStockMovements(movements))
}

// ListOutOfStock godoc
// @Summary      Registros agotados de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "ubicación"
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory/out-of-stock [get]
func (h *InventoryHandler) ListOutOfStock(c *fiber.Ctx) error {
	records, err := h.uc.ListOutOfStock(c.Context(), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromInventoryRecords(records))
}
