// Package memory implementa los puertos de persistencia en memoria
// (tests y desarrollo). La escritura condicional por versión se respeta igual
// que en PostgreSQL, así el motor ejercita el mismo ciclo de reintentos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appledger "github.com/jhoicas/kardex-api/internal/application/ledger"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ appledger.TxRunner = (*Store)(nil)

// Store almacén en memoria compartido por los tres repositorios.
type Store struct {
	mu       sync.RWMutex
	articles map[string]entity.Article
	codes    map[string]string // code -> id
	stocks   map[string]entity.Stock
	journal  []entity.Movement
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		articles: make(map[string]entity.Article),
		codes:    make(map[string]string),
		stocks:   make(map[string]entity.Stock),
	}
}

// Run implementa el TxRunner del ledger. No hay transacción real: la
// atomicidad la da el orden de escritura del motor (el stock se escribe con
// versión condicional antes del asiento) y cada operación toma el lock.
func (s *Store) Run(_ context.Context, fn func(
	stocks repository.StockRepository,
	journal repository.MovementJournalRepository,
	articles repository.ArticleRepository,
) error) error {
	return fn(s.Stocks(), s.Journal(), s.Articles())
}

// Articles devuelve el repositorio de artículos.
func (s *Store) Articles() repository.ArticleRepository { return &articleRepo{s} }

// Stocks devuelve el repositorio de stock.
func (s *Store) Stocks() repository.StockRepository { return &stockRepo{s} }

// Journal devuelve el diario de movimientos.
func (s *Store) Journal() repository.MovementJournalRepository { return &journalRepo{s} }

// ── Artículos ────────────────────────────────────────────────────────────────

type articleRepo struct{ s *Store }

func (r *articleRepo) Create(_ context.Context, a *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.codes[a.Code]; ok {
		return domain.ErrDuplicateCode
	}
	r.s.articles[a.ID] = copyArticle(a)
	r.s.codes[a.Code] = a.ID
	return nil
}

func (r *articleRepo) GetByID(_ context.Context, id string) (*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.articles[id]
	if !ok {
		return nil, nil
	}
	out := copyArticle(&a)
	return &out, nil
}

func (r *articleRepo) GetByCode(ctx context.Context, code string) (*entity.Article, error) {
	r.s.mu.RLock()
	id, ok := r.s.codes[code]
	r.s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *articleRepo) List(_ context.Context, limit, offset int) ([]*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Article, 0, len(r.s.articles))
	for id := range r.s.articles {
		a := copyArticle(ptr(r.s.articles[id]))
		all = append(all, &a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

func (r *articleRepo) Update(_ context.Context, a *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.articles[a.ID]; !ok {
		return domain.ErrArticleNotFound
	}
	r.s.articles[a.ID] = copyArticle(a)
	return nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stockRepo struct{ s *Store }

func (r *stockRepo) Get(_ context.Context, articleID string) (*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stocks[articleID]
	if !ok {
		return nil, nil
	}
	out := copyStock(&st)
	return &out, nil
}

func (r *stockRepo) Create(_ context.Context, stock *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stocks[stock.ArticleID]; ok {
		// Otro escritor creó el registro primero; el ledger recarga y reintenta.
		return domain.ErrConcurrencyConflict
	}
	stock.Version = 1
	r.s.stocks[stock.ArticleID] = copyStock(stock)
	return nil
}

func (r *stockRepo) Update(_ context.Context, stock *entity.Stock, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.stocks[stock.ArticleID]
	if !ok || current.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	stock.Version = expectedVersion + 1
	r.s.stocks[stock.ArticleID] = copyStock(stock)
	return nil
}

func (r *stockRepo) List(_ context.Context, limit, offset int) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Stock, 0, len(r.s.stocks))
	for id := range r.s.stocks {
		st := copyStock(ptr(r.s.stocks[id]))
		all = append(all, &st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ArticleID < all[j].ArticleID })
	return page(all, limit, offset), nil
}

func (r *stockRepo) ListByStatus(_ context.Context, statuses ...entity.StockStatus) ([]*entity.Stock, error) {
	wanted := make(map[entity.StockStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Stock
	for id := range r.s.stocks {
		if st := r.s.stocks[id]; wanted[st.Status] {
			c := copyStock(&st)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out, nil
}

// ── Diario ───────────────────────────────────────────────────────────────────

type journalRepo struct{ s *Store }

func (r *journalRepo) Append(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.journal = append(r.s.journal, copyMovement(m))
	return nil
}

func (r *journalRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.journal {
		if r.s.journal[i].ID == id {
			m := copyMovement(&r.s.journal[i])
			return &m, nil
		}
	}
	return nil, nil
}

func (r *journalRepo) ListByArticle(_ context.Context, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool {
		return m.ArticleID == articleID && inPeriod(m, from, to)
	}, limit, offset)
}

func (r *journalRepo) ListByPeriod(_ context.Context, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool {
		return inPeriod(m, from, to)
	}, limit, offset)
}

func (r *journalRepo) list(match func(*entity.Movement) bool, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	for i := range r.s.journal {
		if match(&r.s.journal[i]) {
			m := copyMovement(&r.s.journal[i])
			out = append(out, &m)
		}
	}
	return page(out, limit, offset), nil
}

func inPeriod(m *entity.Movement, from, to *time.Time) bool {
	if from != nil && m.CreatedAt.Before(*from) {
		return false
	}
	if to != nil && m.CreatedAt.After(*to) {
		return false
	}
	return true
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func ptr[T any](v T) *T { return &v }

func copyArticle(a *entity.Article) entity.Article {
	out := *a
	out.StockMin = copyInt64(a.StockMin)
	out.StockMax = copyInt64(a.StockMax)
	return out
}

func copyStock(s *entity.Stock) entity.Stock {
	out := *s
	out.LastEntry = copyTime(s.LastEntry)
	out.LastExit = copyTime(s.LastExit)
	out.LastCount = copyInt64(s.LastCount)
	out.CountVariance = copyInt64(s.CountVariance)
	out.LastCountAt = copyTime(s.LastCountAt)
	return out
}

func copyMovement(m *entity.Movement) entity.Movement {
	out := *m
	if m.UnitPrice != nil {
		p := *m.UnitPrice
		out.UnitPrice = &p
	}
	return out
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
