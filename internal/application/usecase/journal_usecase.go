package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// JournalUseCase lecturas ordenadas del diario de movimientos para la capa
// de reportes. Nunca muta el diario.
type JournalUseCase struct {
	journalRepo repository.MovementJournalRepository
	articleRepo repository.ArticleRepository
}

// NewJournalUseCase construye el caso de uso.
func NewJournalUseCase(journalRepo repository.MovementJournalRepository, articleRepo repository.ArticleRepository) *JournalUseCase {
	return &JournalUseCase{journalRepo: journalRepo, articleRepo: articleRepo}
}

// ListByArticle historial de movimientos de un artículo en un rango de fechas.
func (uc *JournalUseCase) ListByArticle(ctx context.Context, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	article, err := uc.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}
	return uc.journalRepo.ListByArticle(ctx, articleID, from, to, clampLimit(limit), maxInt(offset, 0))
}

// ListByPeriod movimientos de todos los artículos en un rango de fechas.
func (uc *JournalUseCase) ListByPeriod(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return uc.journalRepo.ListByPeriod(ctx, from, to, clampLimit(limit), maxInt(offset, 0))
}
