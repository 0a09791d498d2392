package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ArticleResponse representación HTTP de un artículo.
type ArticleResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Designation string    `json:"designation"`
	UnitMeasure string    `json:"unit_measure"`
	StockMin    *int64    `json:"stock_min,omitempty"`
	StockMax    *int64    `json:"stock_max,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewArticleResponse mapea la entidad al DTO.
func NewArticleResponse(a *entity.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Code:        a.Code,
		Designation: a.Designation,
		UnitMeasure: a.UnitMeasure,
		StockMin:    a.StockMin,
		StockMax:    a.StockMax,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// StockSnapshotResponse instantánea del registro de stock de un artículo.
type StockSnapshotResponse struct {
	ArticleID     string          `json:"article_id"`
	Quantity      int64           `json:"quantity"`
	Reserved      int64           `json:"reserved"`
	Available     int64           `json:"available"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	Value         decimal.Decimal `json:"stock_value"`
	Status        string          `json:"status"`
	OverReserved  bool            `json:"over_reserved"`
	LastEntry     *time.Time      `json:"last_entry,omitempty"`
	LastExit      *time.Time      `json:"last_exit,omitempty"`
	LastCount     *int64          `json:"last_count,omitempty"`
	CountVariance *int64          `json:"count_variance,omitempty"`
	LastCountAt   *time.Time      `json:"last_count_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewStockSnapshotResponse mapea la entidad al DTO.
func NewStockSnapshotResponse(s *entity.Stock) StockSnapshotResponse {
	return StockSnapshotResponse{
		ArticleID:     s.ArticleID,
		Quantity:      s.Quantity,
		Reserved:      s.Reserved,
		Available:     s.Available,
		AverageCost:   s.AverageCost,
		Value:         s.Value,
		Status:        string(s.Status),
		OverReserved:  s.OverReserved(),
		LastEntry:     s.LastEntry,
		LastExit:      s.LastExit,
		LastCount:     s.LastCount,
		CountVariance: s.CountVariance,
		LastCountAt:   s.LastCountAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// MovementResponse asiento del diario con su instantánea antes/después.
type MovementResponse struct {
	ID          string           `json:"id"`
	ArticleID   string           `json:"article_id"`
	Type        string           `json:"type"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Counterpart string           `json:"counterpart,omitempty"`
	StockBefore int64            `json:"stock_before"`
	StockAfter  int64            `json:"stock_after"`
	Actor       string           `json:"actor"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewMovementResponse mapea la entidad al DTO.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ArticleID:   m.ArticleID,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Counterpart: m.Counterpart,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Actor:       m.Actor,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt,
	}
}

// ReconcileResponse resultado de una reconciliación de inventario.
type ReconcileResponse struct {
	Snapshot       StockSnapshotResponse `json:"snapshot"`
	SystemQuantity int64                 `json:"system_quantity"`
	PhysicalCount  int64                 `json:"physical_count"`
	Variance       int64                 `json:"variance"`
	MovementID     string                `json:"movement_id,omitempty"`
}
