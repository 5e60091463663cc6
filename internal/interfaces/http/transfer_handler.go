package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/multitienda-api/internal/application/dto"
	"github.com/jhoicas/multitienda-api/internal/application/transfer"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// TransferHandler maneja el workflow de traslados de stock (protegido).
type TransferHandler struct {
	uc *transfer.Usecase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.Usecase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de traslado (PENDING)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "origen, destino e items solicitados"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := transfer.CreateInput{
		FromStoreID:           in.FromStoreID,
		ToStoreID:             in.ToStoreID,
		FromWarehouseID:       in.FromWarehouseID,
		ToWarehouseID:         in.ToWarehouseID,
		Priority:              entity.TransferPriority(in.Priority),
		Notes:                 in.Notes,
		ShippingMethod:        in.ShippingMethod,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
	}
	for _, item := range in.Items {
		input.Items = append(input.Items, transfer.CreateItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	created, err := h.uc.Create(c.Context(), input, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransfer(created))
}

// Approve godoc
// @Summary      Aprobar traslado: reserva el stock en origen (todo o nada)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	result, err := h.uc.Approve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// Ship godoc
// @Summary      Despachar traslado: consume las reservas en origen
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	result, err := h.uc.Ship(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// Receive godoc
// @Summary      Recepcionar traslado con cantidades recibidas y dañadas por línea
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  true  "cantidades por item"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]transfer.ReceiveItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, transfer.ReceiveItemInput{
			ItemID:           item.ItemID,
			ReceivedQuantity: item.ReceivedQuantity,
			DamagedQuantity:  item.DamagedQuantity,
		})
	}
	result, err := h.uc.Receive(c.Context(), c.Params("id"), GetUserID(c), items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// Cancel godoc
// @Summary      Cancelar traslado (PENDING o APPROVED; libera reservas si aplica)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID del traslado"
// @Param        body  body  dto.TerminateTransferRequest  false  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.TerminateTransferRequest
	_ = c.BodyParser(&in)
	result, err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// Reject godoc
// @Summary      Rechazar traslado (PENDING o APPROVED; libera reservas si aplica)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID del traslado"
// @Param        body  body  dto.TerminateTransferRequest  false  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.TerminateTransferRequest
	_ = c.BodyParser(&in)
	result, err := h.uc.Reject(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// GetByID godoc
// @Summary      Detalle de un traslado con sus items
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfer(result))
}

// ListByStore godoc
// @Summary      Traslados donde la tienda participa (origen o destino)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true   "tienda"
// @Param        status    query  string  false  "filtrar por estado"
// @Param        limit     query  int     false  "máx resultados"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) ListByStore(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	var status *entity.TransferStatus
	if s := c.Query("status"); s != "" {
		st := entity.TransferStatus(s)
		status = &st
	}
	transfers, err := h.uc.ListByStore(c.Context(), c.Query("store_id"), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransfers(transfers))
}
