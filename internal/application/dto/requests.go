package dto

import "github.com/shopspring/decimal"

// CreateArticleRequest body para POST /api/articles.
type CreateArticleRequest struct {
	Code        string `json:"code"`
	Designation string `json:"designation"`
	UnitMeasure string `json:"unit_measure"`
	StockMin    *int64 `json:"stock_min,omitempty"`
	StockMax    *int64 `json:"stock_max,omitempty"`
}

// UpdateArticleRequest body para PUT /api/articles/:id. nil = sin cambio.
type UpdateArticleRequest struct {
	Designation *string `json:"designation,omitempty"`
	UnitMeasure *string `json:"unit_measure,omitempty"`
	StockMin    *int64  `json:"stock_min,omitempty"`
	StockMax    *int64  `json:"stock_max,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// ApplyMovementRequest body para POST /api/stock/:articleId/movements.
// unit_cost es obligatorio en ENTREE; counterpart según el tipo.
type ApplyMovementRequest struct {
	Type        string           `json:"type"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Counterpart string           `json:"counterpart,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// ReservationRequest body para reserve/release.
type ReservationRequest struct {
	Quantity int64 `json:"quantity"`
}

// ReconcileRequest body para POST /api/stock/:articleId/reconcile.
// Puntero para distinguir "conteo cero" de campo ausente.
type ReconcileRequest struct {
	PhysicalCount *int64 `json:"physical_count"`
}
