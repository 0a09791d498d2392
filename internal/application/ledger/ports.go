package ledger

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la escritura del stock y el
// asiento en el diario se confirmen juntos o no se confirmen: ningún lector
// observa un estado aplicado a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stocks repository.StockRepository,
		journal repository.MovementJournalRepository,
		articles repository.ArticleRepository,
	) error) error
}
