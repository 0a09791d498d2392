package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/usecase"
)

// ArticleHandler endpoints de administración de artículos.
type ArticleHandler struct {
	articleUC *usecase.ArticleUseCase
}

// NewArticleHandler construye el handler.
func NewArticleHandler(articleUC *usecase.ArticleUseCase) *ArticleHandler {
	return &ArticleHandler{articleUC: articleUC}
}

// Create maneja POST /api/articles.
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "body inválido"})
	}
	article, err := h.articleUC.Create(c.Context(), usecase.CreateArticleInput{
		Code:        req.Code,
		Designation: req.Designation,
		UnitMeasure: req.UnitMeasure,
		StockMin:    req.StockMin,
		StockMax:    req.StockMax,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewArticleResponse(article))
}

// GetByID maneja GET /api/articles/:id.
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	article, err := h.articleUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.NewArticleResponse(article))
}

// List maneja GET /api/articles.
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	articles, err := h.articleUC.List(c.Context(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return renderError(c, err)
	}
	out := make([]dto.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, dto.NewArticleResponse(a))
	}
	return c.JSON(out)
}

// Update maneja PUT /api/articles/:id.
func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "body inválido"})
	}
	article, err := h.articleUC.Update(c.Context(), c.Params("id"), usecase.UpdateArticleInput{
		Designation: req.Designation,
		UnitMeasure: req.UnitMeasure,
		StockMin:    req.StockMin,
		StockMax:    req.StockMax,
		Active:      req.Active,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.NewArticleResponse(article))
}
