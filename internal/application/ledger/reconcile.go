package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ReconcileResult resultado de alinear el sistema con un conteo físico.
type ReconcileResult struct {
	Stock          *entity.Stock
	SystemQuantity int64 // cantidad en sistema antes del ajuste
	PhysicalCount  int64
	Variance       int64  // PhysicalCount - SystemQuantity
	MovementID     string // vacío si la variación fue cero
}

// Reconcile alinea la cantidad del sistema con un conteo físico observado.
// Con variación cero solo registra la fecha y el conteo; en caso contrario
// sintetiza un movimiento INVENTAIRE (excedente) o CORRECTION (faltante) por
// el valor absoluto de la variación, de modo que la cantidad resultante sea
// exactamente el conteo físico. Es la única ruta donde la política de stock
// no negativo se omite: el ajuste fuerza la cantidad a una verdad observada.
func (uc *UseCase) Reconcile(ctx context.Context, articleID string, physicalCount int64, actor string) (*ReconcileResult, error) {
	if physicalCount < 0 {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
			{Field: "physical_count", Code: ledger.CodeNegativeCount},
		}}
	}
	if actor == "" {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{
			{Field: "actor", Code: ledger.CodeRequired},
		}}
	}

	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		res, err := uc.reconcileOnce(ctx, articleID, physicalCount, actor)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return res, err
		}
		uc.log.Debug().
			Str("article_id", articleID).
			Int64("physical_count", physicalCount).
			Int("attempt", attempt).
			Msg("conflicto de versión al reconciliar inventario, reintentando")
	}
	return nil, domain.ErrConcurrencyConflict
}

func (uc *UseCase) reconcileOnce(ctx context.Context, articleID string, physicalCount int64, actor string) (*ReconcileResult, error) {
	now := time.Now()
	var result *ReconcileResult

	err := uc.txRunner.Run(ctx, func(
		stocks repository.StockRepository,
		journal repository.MovementJournalRepository,
		articles repository.ArticleRepository,
	) error {
		article, err := getArticle(ctx, articles, articleID)
		if err != nil {
			return err
		}
		stock, created, version, err := loadOrInitStock(ctx, stocks, article.ID)
		if err != nil {
			return err
		}

		systemQty := stock.Quantity
		variance := physicalCount - systemQty

		count := physicalCount
		v := variance
		t := now
		stock.LastCount = &count
		stock.CountVariance = &v
		stock.LastCountAt = &t

		if variance == 0 {
			// Sin variación: se registra el conteo, no se genera movimiento.
			ledger.Recompute(stock, article.StockMin, article.StockMax, now)
			if err := saveStock(ctx, stocks, stock, created, version); err != nil {
				return err
			}
			result = &ReconcileResult{
				Stock:          stock,
				SystemQuantity: systemQty,
				PhysicalCount:  physicalCount,
				Variance:       0,
			}
			return nil
		}

		mtype := entity.MovementInventaire
		qty := variance
		if variance < 0 {
			mtype = entity.MovementCorrection
			qty = -variance
		}
		m := &entity.Movement{
			ID:        uuid.New().String(),
			ArticleID: article.ID,
			Type:      mtype,
			Quantity:  qty,
			Actor:     actor,
			Reason:    "ajuste por conteo físico de inventario",
			CreatedAt: now,
		}
		if err := applyToStock(article, stock, m, now); err != nil {
			return err
		}
		if err := saveStock(ctx, stocks, stock, created, version); err != nil {
			return err
		}
		if err := journal.Append(ctx, m); err != nil {
			return err
		}
		result = &ReconcileResult{
			Stock:          stock,
			SystemQuantity: systemQty,
			PhysicalCount:  physicalCount,
			Variance:       variance,
			MovementID:     m.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
