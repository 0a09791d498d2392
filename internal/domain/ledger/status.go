package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ClassifyStatus clasifica el nivel de stock frente a los umbrales del
// artículo. El orden de las reglas importa: CRITIQUE domina estrictamente
// sobre FAIBLE (<=0 y <50% del mínimo se evalúan antes que <=mínimo).
func ClassifyStatus(quantity int64, stockMin, stockMax *int64) entity.StockStatus {
	switch {
	case quantity <= 0:
		return entity.StatusCritical
	case stockMin != nil && 2*quantity < *stockMin: // quantity < stockMin * 0.5
		return entity.StatusCritical
	case stockMin != nil && quantity <= *stockMin:
		return entity.StatusLow
	case stockMax != nil && quantity > *stockMax:
		return entity.StatusExcess
	default:
		return entity.StatusNormal
	}
}

// Recompute recalcula los campos derivados del stock (disponible, valorización
// y estado). Debe invocarse explícitamente en toda operación mutadora antes de
// persistir; nada depende de hooks del framework.
func Recompute(s *entity.Stock, stockMin, stockMax *int64, now time.Time) {
	s.Available = s.Quantity - s.Reserved
	s.Value = decimal.NewFromInt(s.Quantity).Mul(s.AverageCost).Round(2)
	s.Status = ClassifyStatus(s.Quantity, stockMin, stockMax)
	s.UpdatedAt = now
}
