package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/multitienda-api/internal/application/dto"
	"github.com/jhoicas/multitienda-api/internal/application/receiving"
)

// ReceivingHandler maneja la verificación de stock recibido de proveedores (protegido).
type ReceivingHandler struct {
	uc *receiving.Usecase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.Usecase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar una línea de entrega de proveedor (PENDING)
// @Tags         received-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceivedLineRequest  true  "línea de entrega"
// @Success      201   {object}  dto.ReceivedStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/received-stock [post]
func (h *ReceivingHandler) Register(c *fiber.Ctx) error {
	var in dto.ReceivedLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rs, err := h.uc.Register(c.Context(), in.ToLineInput(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromReceivedStock(rs))
}

// RegisterBatch godoc
// @Summary      Carga masiva de líneas de entrega bajo un upload_id
// @Description  Cada fila se procesa de forma independiente: las inválidas se
// @Description  reportan con su número de fila sin descartar el lote.
// @Tags         received-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchUploadRequest  true  "filas de la carga"
// @Success      200   {object}  dto.BatchUploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/received-stock/batch [post]
func (h *ReceivingHandler) RegisterBatch(c *fiber.Ctx) error {
	var in dto.BatchUploadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]receiving.LineInput, 0, len(in.Lines))
	for _, line := range in.Lines {
		lines = append(lines, line.ToLineInput())
	}
	result, err := h.uc.RegisterBatch(c.Context(), lines, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BatchUploadResponse{
		UploadID: result.UploadID,
		Created:  dto.FromReceivedStocks(result.Created),
		Errors:   result.Errors,
	})
}

// Verify godoc
// @Summary      Verificar línea: calcula faltante/sobrante/daños y suma el stock verificado
// @Tags         received-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la línea"
// @Param        body  body  dto.VerifyReceivedRequest  true  "daños y notas"
// @Success      200   {object}  dto.ReceivedStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/received-stock/{id}/verify [post]
func (h *ReceivingHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyReceivedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rs, err := h.uc.Verify(c.Context(), c.Params("id"), receiving.VerifyInput{
		DamageQuantity: in.DamageQuantity,
		QualityIssues:  in.QualityIssues,
		Notes:          in.Notes,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStock(rs))
}

// Reject godoc
// @Summary      Rechazar línea PENDING por calidad (sin efecto en el libro)
// @Tags         received-stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la línea"
// @Param        body  body  dto.RejectReceivedRequest  true  "motivo"
// @Success      200   {object}  dto.ReceivedStockResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/received-stock/{id}/reject [post]
func (h *ReceivingHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectReceivedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rs, err := h.uc.Reject(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStock(rs))
}

// GetByID godoc
// @Summary      Detalle de una línea de stock recibido
// @Tags         received-stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la línea"
// @Success      200  {object}  dto.ReceivedStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/received-stock/{id} [get]
func (h *ReceivingHandler) GetByID(c *fiber.Ctx) error {
	rs, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStock(rs))
}

// ListPending godoc
// @Summary      Líneas pendientes de verificación
// @Tags         received-stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx resultados"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.ReceivedStockResponse
// @Router       /api/received-stock/pending [get]
func (h *ReceivingHandler) ListPending(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	lines, err := h.uc.ListPending(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStocks(lines))
}

// ListDiscrepancies godoc
// @Summary      Líneas verificadas con discrepancia
// @Tags         received-stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx resultados"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.ReceivedStockResponse
// @Router       /api/received-stock/discrepancies [get]
func (h *ReceivingHandler) ListDiscrepancies(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	lines, err := h.uc.ListDiscrepancies(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStocks(lines))
}

// ListByUpload godoc
// @Summary      Líneas de una carga masiva en orden de fila
// @Tags         received-stock
// @Security     Bearer
// @Produce      json
// @Param        upload_id  path  string  true  "ID de la carga"
// @Success      200  {array}  dto.ReceivedStockResponse
// @Router       /api/received-stock/uploads/{upload_id} [get]
func (h *ReceivingHandler) ListByUpload(c *fiber.Ctx) error {
	lines, err := h.uc.ListByUpload(c.Context(), c.Params("upload_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromReceivedStocks(lines))
}
