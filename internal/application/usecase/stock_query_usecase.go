package usecase

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// StockQueryUseCase lecturas de solo consulta sobre el stock (vista general y
// alertas de reorden). No aplica movimientos ni recalcula nada.
type StockQueryUseCase struct {
	stockRepo repository.StockRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(stockRepo repository.StockRepository) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo}
}

// List instantáneas actuales de stock con paginación.
func (uc *StockQueryUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Stock, error) {
	return uc.stockRepo.List(ctx, clampLimit(limit), maxInt(offset, 0))
}

// ListAlerts registros en estado FAIBLE o CRITIQUE, para alertas de reorden.
func (uc *StockQueryUseCase) ListAlerts(ctx context.Context) ([]*entity.Stock, error) {
	return uc.stockRepo.ListByStatus(ctx, entity.StatusLow, entity.StatusCritical)
}
