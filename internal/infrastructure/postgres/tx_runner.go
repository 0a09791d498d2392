package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. La
// escritura del stock y el asiento del diario se confirman juntos: un fallo
// en cualquiera de los dos revierte ambos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los fallos de infraestructura (no poder abrir o
// confirmar la tx) se reportan como domain.ErrPersistenceUnavailable para que
// el llamador pueda reintentar con backoff.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stocks repository.StockRepository,
	journal repository.MovementJournalRepository,
	articles repository.ArticleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrPersistenceUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stocks := NewStockRepository(tx)
	journal := NewMovementJournalRepository(tx)
	articles := NewArticleRepository(tx)

	if err := fn(stocks, journal, articles); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}
