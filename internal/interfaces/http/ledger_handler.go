package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/application/usecase"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// LedgerHandler endpoints del libro de stock: movimientos, reservas,
// reconciliación y consultas de instantáneas.
type LedgerHandler struct {
	ledgerUC *appledger.UseCase
	queryUC  *usecase.StockQueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(ledgerUC *appledger.UseCase, queryUC *usecase.StockQueryUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, queryUC: queryUC}
}

// ApplyMovement maneja POST /api/stock/:articleId/movements.
// El actor sale del token, nunca del body.
func (h *LedgerHandler) ApplyMovement(c *fiber.Ctx) error {
	var req dto.ApplyMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "body inválido"})
	}
	snap, err := h.ledgerUC.ApplyMovement(c.Context(), appledger.MovementInput{
		ArticleID:   c.Params("articleId"),
		Type:        entity.MovementType(req.Type),
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Counterpart: req.Counterpart,
		Actor:       GetActor(c),
		Reason:      req.Reason,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockSnapshotResponse(snap))
}

// Reserve maneja POST /api/stock/:articleId/reserve.
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	return h.adjustReservation(c, h.ledgerUC.Reserve)
}

// Release maneja POST /api/stock/:articleId/release.
func (h *LedgerHandler) Release(c *fiber.Ctx) error {
	return h.adjustReservation(c, h.ledgerUC.Release)
}

func (h *LedgerHandler) adjustReservation(c *fiber.Ctx, op func(context.Context, string, int64) (*entity.Stock, error)) error {
	var req dto.ReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "body inválido"})
	}
	snap, err := op(c.Context(), c.Params("articleId"), req.Quantity)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.NewStockSnapshotResponse(snap))
}

// Reconcile maneja POST /api/stock/:articleId/reconcile.
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	var req dto.ReconcileRequest
	if err := c.BodyParser(&req); err != nil || req.PhysicalCount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "physical_count es obligatorio"})
	}
	res, err := h.ledgerUC.Reconcile(c.Context(), c.Params("articleId"), *req.PhysicalCount, GetActor(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		Snapshot:       dto.NewStockSnapshotResponse(res.Stock),
		SystemQuantity: res.SystemQuantity,
		PhysicalCount:  res.PhysicalCount,
		Variance:       res.Variance,
		MovementID:     res.MovementID,
	})
}

// GetSnapshot maneja GET /api/stock/:articleId.
func (h *LedgerHandler) GetSnapshot(c *fiber.Ctx) error {
	snap, err := h.ledgerUC.GetSnapshot(c.Context(), c.Params("articleId"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.NewStockSnapshotResponse(snap))
}

// InitStock maneja POST /api/articles/:id/stock.
func (h *LedgerHandler) InitStock(c *fiber.Ctx) error {
	snap, err := h.ledgerUC.InitStock(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockSnapshotResponse(snap))
}

// List maneja GET /api/stock.
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	stocks, err := h.queryUC.List(c.Context(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(snapshotList(stocks))
}

// ListAlerts maneja GET /api/stock/alerts (estados FAIBLE y CRITIQUE).
func (h *LedgerHandler) ListAlerts(c *fiber.Ctx) error {
	stocks, err := h.queryUC.ListAlerts(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(snapshotList(stocks))
}

func snapshotList(stocks []*entity.Stock) []dto.StockSnapshotResponse {
	out := make([]dto.StockSnapshotResponse, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.NewStockSnapshotResponse(s))
	}
	return out
}
