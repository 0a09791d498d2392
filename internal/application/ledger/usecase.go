package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/ledger"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// maxConflictRetries reintentos internos del ciclo leer-calcular-escribir
// cuando la escritura condicional pierde la carrera. Las operaciones son
// aritmética pura y cortas, así que el presupuesto es pequeño.
const maxConflictRetries = 5

// UseCase es el motor del libro de stock: aplica movimientos contra el
// registro de un artículo de forma atómica, recalcula los campos derivados y
// registra cada movimiento en el diario con su instantánea antes/después.
//
// La serialización es por artículo: versión optimista sobre el registro de
// stock más reintento acotado. Operaciones sobre artículos distintos nunca se
// serializan entre sí.
type UseCase struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	articleRepo repository.ArticleRepository
	log         *logger.Logger
}

// NewUseCase construye el motor del libro de stock.
func NewUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	articleRepo repository.ArticleRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		articleRepo: articleRepo,
		log:         log,
	}
}

// MovementInput entrada para aplicar un movimiento contra un artículo.
type MovementInput struct {
	ArticleID   string
	Type        entity.MovementType
	Quantity    int64
	UnitPrice   *decimal.Decimal
	Counterpart string
	Actor       string
	Reason      string
}

// ApplyMovement valida el intento, lo aplica atómicamente contra el stock del
// artículo (creándolo en cero si es el primer movimiento) y registra el
// asiento en el diario. Devuelve la instantánea actualizada.
//
// Los errores de negocio (validación, stock insuficiente, artículo
// inexistente) no se reintentan y nunca dejan estado corrupto. Los conflictos
// de versión se reintentan internamente hasta maxConflictRetries.
func (uc *UseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.Stock, error) {
	if verr := ledger.Validate(ledger.Intent{
		Type:        in.Type,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Counterpart: in.Counterpart,
		Actor:       in.Actor,
	}); verr != nil {
		return nil, verr
	}

	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		snap, err := uc.applyOnce(ctx, in)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return snap, err
		}
		uc.log.Debug().
			Str("article_id", in.ArticleID).
			Str("type", string(in.Type)).
			Int("attempt", attempt).
			Msg("conflicto de versión al aplicar movimiento, reintentando")
	}
	return nil, domain.ErrConcurrencyConflict
}

func (uc *UseCase) applyOnce(ctx context.Context, in MovementInput) (*entity.Stock, error) {
	now := time.Now()
	var result *entity.Stock

	err := uc.txRunner.Run(ctx, func(
		stocks repository.StockRepository,
		journal repository.MovementJournalRepository,
		articles repository.ArticleRepository,
	) error {
		article, err := getArticle(ctx, articles, in.ArticleID)
		if err != nil {
			return err
		}
		stock, created, version, err := loadOrInitStock(ctx, stocks, article.ID)
		if err != nil {
			return err
		}

		m := &entity.Movement{
			ID:          uuid.New().String(),
			ArticleID:   article.ID,
			Type:        in.Type,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Counterpart: in.Counterpart,
			Actor:       in.Actor,
			Reason:      in.Reason,
			CreatedAt:   now,
		}
		if err := applyToStock(article, stock, m, now); err != nil {
			return err
		}
		if err := saveStock(ctx, stocks, stock, created, version); err != nil {
			return err
		}
		// El asiento se confirma en la misma transacción que el stock, así el
		// diario preserva el orden de confirmación por artículo.
		if err := journal.Append(ctx, m); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyToStock ejecuta la rama aritmética que dicta la clasificación del tipo
// y recalcula los campos derivados. Anota StockBefore/StockAfter en el
// movimiento antes de entregarlo al diario.
func applyToStock(article *entity.Article, stock *entity.Stock, m *entity.Movement, now time.Time) error {
	rule, ok := ledger.RuleFor(m.Type)
	if !ok {
		return domain.ErrInvalidInput
	}
	m.StockBefore = stock.Quantity

	if rule.Inbound {
		// El costo promedio solo cambia cuando la entrada trae precio; una
		// entrada sin precio (devolución de cliente, transferencia) reingresa
		// al costo promedio vigente.
		if m.UnitPrice != nil {
			stock.AverageCost = ledger.WeightedAverageCost(stock.Quantity, stock.AverageCost, m.Quantity, *m.UnitPrice)
		}
		stock.Quantity += m.Quantity
		t := now
		stock.LastEntry = &t
	} else {
		// Política de stock no negativo, salvo tipos exentos (CORRECTION).
		if !rule.BypassStockCheck && m.Quantity > stock.Quantity {
			return &domain.InsufficientStockError{
				ArticleID: article.ID,
				Available: stock.Quantity,
				Requested: m.Quantity,
			}
		}
		stock.Quantity -= m.Quantity
		t := now
		stock.LastExit = &t
	}

	m.StockAfter = stock.Quantity
	ledger.Recompute(stock, article.StockMin, article.StockMax, now)
	return nil
}

// GetSnapshot lectura sin efectos del registro de stock de un artículo.
func (uc *UseCase) GetSnapshot(ctx context.Context, articleID string) (*entity.Stock, error) {
	stock, err := uc.stockRepo.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if stock != nil {
		return stock, nil
	}
	article, err := uc.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}
	return nil, domain.ErrStockNotFound
}

// InitStock inicializa explícitamente el registro de stock en cero (antes del
// primer movimiento). Idempotente: si ya existe, devuelve el registro actual.
func (uc *UseCase) InitStock(ctx context.Context, articleID string) (*entity.Stock, error) {
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
		if stock != nil {
			result = stock
			return nil
		}
		stock = newZeroStock(article.ID)
		ledger.Recompute(stock, article.StockMin, article.StockMax, now)
		if err := stocks.Create(ctx, stock); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func getArticle(ctx context.Context, articles repository.ArticleRepository, id string) (*entity.Article, error) {
	article, err := articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrArticleNotFound
	}
	return article, nil
}

// loadOrInitStock carga el registro de stock o lo prepara en cero para la
// creación perezosa (cantidad cero, costo nulo). created indica que el
// registro aún no existe y debe insertarse en lugar de actualizarse.
func loadOrInitStock(ctx context.Context, stocks repository.StockRepository, articleID string) (stock *entity.Stock, created bool, expectedVersion int64, err error) {
	s, err := stocks.Get(ctx, articleID)
	if err != nil {
		return nil, false, 0, err
	}
	if s == nil {
		return newZeroStock(articleID), true, 0, nil
	}
	return s, false, s.Version, nil
}

func newZeroStock(articleID string) *entity.Stock {
	return &entity.Stock{
		ArticleID:   articleID,
		AverageCost: decimal.Zero,
		Value:       decimal.Zero,
		Status:      entity.StatusCritical,
	}
}

func saveStock(ctx context.Context, stocks repository.StockRepository, stock *entity.Stock, created bool, expectedVersion int64) error {
	if created {
		return stocks.Create(ctx, stock)
	}
	return stocks.Update(ctx, stock, expectedVersion)
}
