package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/usecase"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// JournalHandler consultas del diario de movimientos.
type JournalHandler struct {
	journalUC *usecase.JournalUseCase
}

// NewJournalHandler construye el handler.
func NewJournalHandler(journalUC *usecase.JournalUseCase) *JournalHandler {
	return &JournalHandler{journalUC: journalUC}
}

// ListByArticle maneja GET /api/articles/:id/movements.
// Parámetros opcionales: from, to (RFC 3339), limit, offset.
func (h *JournalHandler) ListByArticle(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "from/to deben ser RFC 3339"})
	}
	movements, err := h.journalUC.ListByArticle(c.Context(), c.Params("id"), from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(movementList(movements))
}

// ListByPeriod maneja GET /api/movements.
func (h *JournalHandler) ListByPeriod(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "from/to deben ser RFC 3339"})
	}
	movements, err := h.journalUC.ListByPeriod(c.Context(), from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(movementList(movements))
}

func parsePeriod(c *fiber.Ctx) (from, to *time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, nil, perr
		}
		to = &t
	}
	return from, to, nil
}

func movementList(movements []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementResponse(m))
	}
	return out
}
