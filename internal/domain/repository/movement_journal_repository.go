package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementJournalRepository define el puerto del diario de movimientos.
// Solo agrega: las entradas nunca se actualizan ni se borran. La lectura
// ordenada sirve a la capa de reportes, que jamás muta el diario.
type MovementJournalRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	ListByArticle(ctx context.Context, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByPeriod(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
}
