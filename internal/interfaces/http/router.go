package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/multitienda-api/internal/application/auth"
	"github.com/jhoicas/multitienda-api/internal/application/ledger"
	"github.com/jhoicas/multitienda-api/internal/application/receiving"
	"github.com/jhoicas/multitienda-api/internal/application/shift"
	"github.com/jhoicas/multitienda-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC    *ledger.Usecase
	TransferUC  *transfer.Usecase
	ReceivingUC *receiving.Usecase
	ShiftUC     *shift.Usecase
	AuthUC      *auth.Usecase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público; registro solo admin)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register",
		AuthMiddleware(deps.JWTSecret), RequireRole("admin"), authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de inventario (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/reserve", inventoryHandler.Reserve)
	invGroup.Post("/release", inventoryHandler.Release)
	invGroup.Post("/commit", inventoryHandler.Commit)
	invGroup.Post("/receive", RequireRole("admin", "gerente"), inventoryHandler.Receive)
	invGroup.Post("/adjust", RequireRole("admin", "gerente"), inventoryHandler.Adjust)
	invGroup.Post("/transfer", RequireRole("admin", "gerente"), inventoryHandler.Transfer)
	invGroup.Get("/record", inventoryHandler.GetRecord)
	invGroup.Get("/records", inventoryHandler.ListByLocation)
	invGroup.Get("/out-of-stock", inventoryHandler.ListOutOfStock)
	invGroup.Get("/products/:product_id", inventoryHandler.ListByProduct)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:transaction_id", inventoryHandler.MovementsByTransaction)

	// Traslados con flujo de aprobación (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.ListByStore)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", RequireRole("admin", "gerente"), transferHandler.Approve)
	transfers.Post("/:id/ship", RequireRole("admin", "gerente"), transferHandler.Ship)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	transfers.Post("/:id/reject", RequireRole("admin", "gerente"), transferHandler.Reject)

	// Verificación de stock recibido (protegido)
	received := protected.Group("/received-stock")
	receivingHandler := NewReceivingHandler(deps.ReceivingUC)
	received.Post("/", receivingHandler.Register)
	received.Post("/batch", receivingHandler.RegisterBatch)
	received.Get("/pending", receivingHandler.ListPending)
	received.Get("/discrepancies", receivingHandler.ListDiscrepancies)
	received.Get("/uploads/:upload_id", receivingHandler.ListByUpload)
	received.Get("/:id", receivingHandler.GetByID)
	received.Post("/:id/verify", receivingHandler.Verify)
	received.Post("/:id/reject", RequireRole("admin", "gerente"), receivingHandler.Reject)

	// Turnos de caja (protegido)
	shifts := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.ShiftUC)
	shifts.Post("/schedule", RequireRole("admin", "gerente"), shiftHandler.Schedule)
	shifts.Post("/start", shiftHandler.Start)
	shifts.Post("/start-day", RequireRole("admin", "gerente"), shiftHandler.StartDay)
	shifts.Post("/end-day", RequireRole("admin", "gerente"), shiftHandler.EndDay)
	shifts.Get("/", shiftHandler.List)
	shifts.Get("/active", shiftHandler.ActiveShift)
	shifts.Get("/:id", shiftHandler.GetByID)
	shifts.Post("/:id/activate", shiftHandler.Activate)
	shifts.Post("/:id/end", shiftHandler.End)

	// Intercambios de turno (protegido)
	swaps := protected.Group("/shift-swaps")
	swaps.Post("/", shiftHandler.RequestSwap)
	swaps.Get("/", shiftHandler.ListSwaps)
	swaps.Post("/:id/approve", shiftHandler.ApproveSwapByEmployee)
	swaps.Post("/:id/manager-approve", RequireRole("admin", "gerente"), shiftHandler.ApproveSwapByManager)
	swaps.Post("/:id/reject", shiftHandler.RejectSwap)
	swaps.Post("/:id/cancel", shiftHandler.CancelSwap)
}
