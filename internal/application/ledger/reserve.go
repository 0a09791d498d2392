package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Reserve aparta cantidad contra salidas futuras: reduce la disponibilidad
// sin tocar la existencia. La sobre-reserva (reservado > existencia) está
// permitida por política, pero se marca como anomalía para reportes.
func (uc *UseCase) Reserve(ctx context.Context, articleID string, quantity int64) (*entity.Stock, error) {
	if quantity <= 0 {
		return nil, errQuantityNotPositive()
	}
	return uc.adjustReservation(ctx, articleID, quantity)
}

// Release libera cantidad reservada; el reservado nunca baja de cero.
func (uc *UseCase) Release(ctx context.Context, articleID string, quantity int64) (*entity.Stock, error) {
	if quantity <= 0 {
		return nil, errQuantityNotPositive()
	}
	return uc.adjustReservation(ctx, articleID, -quantity)
}

func errQuantityNotPositive() *domain.ValidationError {
	return &domain.ValidationError{Violations: []domain.FieldViolation{
		{Field: "quantity", Code: ledger.CodeNotPositive},
	}}
}

func (uc *UseCase) adjustReservation(ctx context.Context, articleID string, delta int64) (*entity.Stock, error) {
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		snap, err := uc.adjustReservationOnce(ctx, articleID, delta)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return snap, err
		}
		uc.log.Debug().
			Str("article_id", articleID).
			Int64("delta", delta).
			Int("attempt", attempt).
			Msg("conflicto de versión al ajustar reserva, reintentando")
	}
	return nil, domain.ErrConcurrencyConflict
}

func (uc *UseCase) adjustReservationOnce(ctx context.Context, articleID string, delta int64) (*entity.Stock, error) {
	now := time.Now()
	var result *entity.Stock

	err := uc.txRunner.Run(ctx, func(
		stocks repository.StockRepository,
		_ repository.MovementJournalRepository,
		articles repository.ArticleRepository,
	) error {
		article, err := getArticle(ctx, articles, articleID)
		if err != nil {
			return err
		}
		stock, err := stocks.Get(ctx, article.ID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrStockNotFound
		}
		version := stock.Version

		stock.Reserved += delta
		if stock.Reserved < 0 {
			stock.Reserved = 0
		}
		ledger.Recompute(stock, article.StockMin, article.StockMax, now)

		if err := stocks.Update(ctx, stock, version); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.OverReserved() {
		uc.log.Warn().
			Str("article_id", articleID).
			Int64("quantity", result.Quantity).
			Int64("reserved", result.Reserved).
			Msg("sobre-reserva detectada: reservado mayor que existencia")
	}
	return result, nil
}
