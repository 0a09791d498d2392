package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// StockRepository define el puerto para el registro de stock por artículo.
// La escritura es condicional por versión: Update compara la versión esperada
// y devuelve domain.ErrConcurrencyConflict si otra operación ganó la carrera.
type StockRepository interface {
	// Get devuelve el stock del artículo, o (nil, nil) si aún no existe.
	Get(ctx context.Context, articleID string) (*entity.Stock, error)
	// Create inserta el registro inicial (versión 1). Devuelve
	// domain.ErrConcurrencyConflict si otro escritor lo creó primero.
	Create(ctx context.Context, stock *entity.Stock) error
	// Update escribe el registro solo si la versión almacenada coincide con
	// expectedVersion; incrementa la versión en uno.
	Update(ctx context.Context, stock *entity.Stock, expectedVersion int64) error
	List(ctx context.Context, limit, offset int) ([]*entity.Stock, error)
	// ListByStatus devuelve los registros cuyo estado está en la lista dada
	// (alertas de reorden: FAIBLE y CRITIQUE).
	ListByStatus(ctx context.Context, statuses ...entity.StockStatus) ([]*entity.Stock, error)
}
