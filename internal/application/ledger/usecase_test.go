package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func newTestEngine(t *testing.T) (*appledger.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return appledger.NewUseCase(store, store.Stocks(), store.Articles(), log), store
}

func seedArticle(t *testing.T, store *memory.Store, min, max *int64) *entity.Article {
	t.Helper()
	now := time.Now()
	article := &entity.Article{
		ID:          uuid.New().String(),
		Code:        "ART-" + uuid.New().String()[:8],
		Designation: "Tornillo M6",
		UnitMeasure: "unidad",
		StockMin:    min,
		StockMax:    max,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.Articles().Create(context.Background(), article))
	return article
}

func i64(v int64) *int64 { return &v }

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func entree(articleID string, qty int64, price float64) appledger.MovementInput {
	return appledger.MovementInput{
		ArticleID:   articleID,
		Type:        entity.MovementEntree,
		Quantity:    qty,
		UnitPrice:   dec(price),
		Counterpart: "PROV-001",
		Actor:       "jperez",
	}
}

func sortie(articleID string, qty int64) appledger.MovementInput {
	return appledger.MovementInput{
		ArticleID:   articleID,
		Type:        entity.MovementSortie,
		Quantity:    qty,
		Counterpart: "CLI-042",
		Actor:       "jperez",
	}
}

func TestApplyMovement_PrimeraEntradaCreaStock(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, i64(5), nil)
	ctx := context.Background()

	snap, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 5.00))
	require.NoError(t, err)

	assert.Equal(t, int64(10), snap.Quantity)
	assert.Equal(t, int64(10), snap.Available)
	assert.True(t, snap.AverageCost.Equal(decimal.NewFromFloat(5.00)))
	assert.True(t, snap.Value.Equal(decimal.NewFromFloat(50.00)))
	assert.Equal(t, entity.StatusNormal, snap.Status)
	assert.NotNil(t, snap.LastEntry)

	movements, err := store.Journal().ListByArticle(ctx, article.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(0), movements[0].StockBefore)
	assert.Equal(t, int64(10), movements[0].StockAfter)
	assert.Equal(t, "jperez", movements[0].Actor)
}

// 10 unidades a 5.00 más 10 unidades a 7.00 dejan el costo promedio en 6.00.
func TestApplyMovement_CostoPromedioPonderado(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 5.00))
	require.NoError(t, err)
	snap, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 7.00))
	require.NoError(t, err)

	assert.True(t, snap.AverageCost.Equal(decimal.NewFromFloat(6.00)), "esperaba 6.00, obtuvo %s", snap.AverageCost)
	assert.True(t, snap.Value.Equal(decimal.NewFromFloat(120.00)))
}

// Una entrada sin precio (devolución de cliente) reingresa al costo vigente.
func TestApplyMovement_RetourClientNoCambiaCosto(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 5.00))
	require.NoError(t, err)

	snap, err := uc.ApplyMovement(ctx, appledger.MovementInput{
		ArticleID: article.ID,
		Type:      entity.MovementRetourClient,
		Quantity:  2,
		Actor:     "jperez",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), snap.Quantity)
	assert.True(t, snap.AverageCost.Equal(decimal.NewFromFloat(5.00)))
}

func TestApplyMovement_SalidaReduceYMarcaUltimaSalida(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 5.00))
	require.NoError(t, err)
	snap, err := uc.ApplyMovement(ctx, sortie(article.ID, 4))
	require.NoError(t, err)

	assert.Equal(t, int64(6), snap.Quantity)
	assert.NotNil(t, snap.LastExit)
	// La salida no recalcula el costo promedio.
	assert.True(t, snap.AverageCost.Equal(decimal.NewFromFloat(5.00)))
}

// Stock insuficiente: error con datos estructurados y estado intacto, sin
// asiento en el diario.
func TestApplyMovement_StockInsuficiente(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 5.00))
	require.NoError(t, err)

	_, err = uc.ApplyMovement(ctx, sortie(article.ID, 15))
	var serr *domain.InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, int64(10), serr.Available)
	assert.Equal(t, int64(15), serr.Requested)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	snap, err := uc.GetSnapshot(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.Quantity, "el rechazo no debe tocar el estado")

	movements, err := store.Journal().ListByArticle(ctx, article.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "el movimiento rechazado no se asienta")
}

// La pérdida respeta la política de stock no negativo igual que la salida.
func TestApplyMovement_PerteAcotada(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 3, 1.00))
	require.NoError(t, err)

	_, err = uc.ApplyMovement(ctx, appledger.MovementInput{
		ArticleID:   article.ID,
		Type:        entity.MovementPerte,
		Quantity:    5,
		Counterpart: "SINIESTRO-9",
		Actor:       "jperez",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// CORRECTION está exenta de la política: puede dejar la cantidad negativa y el
// estado cae a CRITIQUE.
func TestApplyMovement_CorrectionExenta(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 3, 1.00))
	require.NoError(t, err)

	snap, err := uc.ApplyMovement(ctx, appledger.MovementInput{
		ArticleID: article.ID,
		Type:      entity.MovementCorrection,
		Quantity:  5,
		Actor:     "jperez",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), snap.Quantity)
	assert.Equal(t, entity.StatusCritical, snap.Status)
}

func TestApplyMovement_ArticuloInexistente(t *testing.T) {
	uc, _ := newTestEngine(t)

	_, err := uc.ApplyMovement(context.Background(), entree(uuid.New().String(), 1, 1.00))
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

// Conservación: tras una secuencia mixta, la cantidad final es exactamente la
// suma con signo de los movimientos aplicados y el diario encadena
// StockBefore/StockAfter sin huecos.
func TestApplyMovement_Conservacion(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	inputs := []appledger.MovementInput{
		entree(article.ID, 20, 4.00),
		sortie(article.ID, 5),
		entree(article.ID, 10, 6.00),
		{ArticleID: article.ID, Type: entity.MovementRetourClient, Quantity: 2, Actor: "jperez"},
		{ArticleID: article.ID, Type: entity.MovementPerte, Quantity: 1, Counterpart: "SINIESTRO-1", Actor: "jperez"},
	}
	var want int64
	for _, in := range inputs {
		snap, err := uc.ApplyMovement(ctx, in)
		require.NoError(t, err)
		switch in.Type {
		case entity.MovementEntree, entity.MovementRetourClient:
			want += in.Quantity
		default:
			want -= in.Quantity
		}
		assert.Equal(t, want, snap.Quantity)
	}

	movements, err := store.Journal().ListByArticle(ctx, article.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, movements, len(inputs))
	for i := 1; i < len(movements); i++ {
		assert.Equal(t, movements[i-1].StockAfter, movements[i].StockBefore,
			"el diario debe encadenar sin huecos en la posición %d", i)
	}
	assert.Equal(t, want, movements[len(movements)-1].StockAfter)
}

func TestReserveRelease(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 2.00))
	require.NoError(t, err)

	snap, err := uc.Reserve(ctx, article.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.Quantity, "la reserva no toca la existencia")
	assert.Equal(t, int64(6), snap.Reserved)
	assert.Equal(t, int64(4), snap.Available)

	// Liberar más de lo reservado recorta a cero en lugar de fallar.
	snap, err = uc.Release(ctx, article.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Reserved)
	assert.Equal(t, int64(10), snap.Available)
}

// La sobre-reserva está permitida: queda disponible negativo y la instantánea
// la marca como anomalía.
func TestReserve_SobreReservaPermitida(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 5, 1.00))
	require.NoError(t, err)

	snap, err := uc.Reserve(ctx, article.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8), snap.Reserved)
	assert.Equal(t, int64(-3), snap.Available)
	assert.True(t, snap.OverReserved())
}

func TestReserve_SinStockRegistrado(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)

	_, err := uc.Reserve(context.Background(), article.ID, 1)
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}

func TestReserve_CantidadNoPositiva(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)

	var verr *domain.ValidationError
	_, err := uc.Reserve(context.Background(), article.ID, 0)
	require.ErrorAs(t, err, &verr)
	_, err = uc.Release(context.Background(), article.ID, -2)
	require.ErrorAs(t, err, &verr)
}

func TestReconcile_ExcedenteGeneraInventaire(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 3.00))
	require.NoError(t, err)

	res, err := uc.Reconcile(ctx, article.ID, 13, "auditor")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.SystemQuantity)
	assert.Equal(t, int64(3), res.Variance)
	assert.Equal(t, int64(13), res.Stock.Quantity)
	require.NotEmpty(t, res.MovementID)

	m, err := store.Journal().GetByID(ctx, res.MovementID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.MovementInventaire, m.Type)
	assert.Equal(t, int64(3), m.Quantity)
	assert.Equal(t, "auditor", m.Actor)
}

func TestReconcile_FaltanteGeneraCorrection(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 3.00))
	require.NoError(t, err)

	res, err := uc.Reconcile(ctx, article.ID, 6, "auditor")
	require.NoError(t, err)
	assert.Equal(t, int64(-4), res.Variance)
	assert.Equal(t, int64(6), res.Stock.Quantity)

	m, err := store.Journal().GetByID(ctx, res.MovementID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.MovementCorrection, m.Type)
	assert.Equal(t, int64(4), m.Quantity, "cantidad = valor absoluto de la variación")
}

// Reconciliar dos veces con el mismo conteo es idempotente: la segunda pasada
// tiene variación cero y no genera movimiento.
func TestReconcile_Idempotente(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, entree(article.ID, 10, 3.00))
	require.NoError(t, err)

	first, err := uc.Reconcile(ctx, article.ID, 7, "auditor")
	require.NoError(t, err)
	require.NotEmpty(t, first.MovementID)

	second, err := uc.Reconcile(ctx, article.ID, 7, "auditor")
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Variance)
	assert.Empty(t, second.MovementID)
	assert.Equal(t, int64(7), second.Stock.Quantity)
	require.NotNil(t, second.Stock.LastCount)
	assert.Equal(t, int64(7), *second.Stock.LastCount)

	movements, err := store.Journal().ListByArticle(ctx, article.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 2, "entrada inicial + un solo ajuste")
}

func TestReconcile_ConteoNegativoRechazado(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)

	var verr *domain.ValidationError
	_, err := uc.Reconcile(context.Background(), article.ID, -1, "auditor")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "physical_count", verr.Violations[0].Field)
}

func TestGetSnapshot_Errores(t *testing.T) {
	uc, store := newTestEngine(t)
	ctx := context.Background()

	_, err := uc.GetSnapshot(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)

	article := seedArticle(t, store, nil, nil)
	_, err = uc.GetSnapshot(ctx, article.ID)
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}

func TestInitStock_Idempotente(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, i64(5), nil)
	ctx := context.Background()

	snap, err := uc.InitStock(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Quantity)
	assert.Equal(t, entity.StatusCritical, snap.Status)

	again, err := uc.InitStock(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Version, again.Version, "la segunda llamada no crea ni versiona")
}

// N recepciones concurrentes de una unidad terminan exactamente en N: la
// serialización por artículo no pierde actualizaciones.
func TestApplyMovement_RecepcionesConcurrentes(t *testing.T) {
	uc, store := newTestEngine(t)
	article := seedArticle(t, store, nil, nil)
	ctx := context.Background()

	// Stock preexistente para que ninguna goroutine pase por la creación
	// perezosa: aquí se mide la escritura condicional, no la creación.
	_, err := uc.InitStock(ctx, article.ID)
	require.NoError(t, err)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.ApplyMovement(ctx, entree(article.ID, 1, 2.00))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "goroutine %d", i)
	}
	snap, err := uc.GetSnapshot(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), snap.Quantity)

	movements, err := store.Journal().ListByArticle(ctx, article.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movements, n)
}

// flakyRunner fuerza conflictos de versión antes de delegar, para ejercitar el
// presupuesto de reintentos sin carreras reales.
type flakyRunner struct {
	inner appledger.TxRunner
	mu    sync.Mutex
	fails int
}

func (f *flakyRunner) Run(ctx context.Context, fn func(
	stocks repository.StockRepository,
	journal repository.MovementJournalRepository,
	articles repository.ArticleRepository,
) error) error {
	f.mu.Lock()
	if f.fails > 0 {
		f.fails--
		f.mu.Unlock()
		return domain.ErrConcurrencyConflict
	}
	f.mu.Unlock()
	return f.inner.Run(ctx, fn)
}

func TestApplyMovement_ReintentaTrasConflicto(t *testing.T) {
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	runner := &flakyRunner{inner: store, fails: 2}
	uc := appledger.NewUseCase(runner, store.Stocks(), store.Articles(), log)
	article := seedArticle(t, store, nil, nil)

	snap, err := uc.ApplyMovement(context.Background(), entree(article.ID, 3, 1.00))
	require.NoError(t, err, "dos conflictos caben en el presupuesto de reintentos")
	assert.Equal(t, int64(3), snap.Quantity)
}

func TestApplyMovement_AgotaReintentos(t *testing.T) {
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	runner := &flakyRunner{inner: store, fails: 100}
	uc := appledger.NewUseCase(runner, store.Stocks(), store.Articles(), log)
	article := seedArticle(t, store, nil, nil)

	_, err := uc.ApplyMovement(context.Background(), entree(article.ID, 3, 1.00))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}
