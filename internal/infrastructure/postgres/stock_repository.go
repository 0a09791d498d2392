package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx). La escritura condicional por versión materializa la
// serialización optimista por artículo: no hay bloqueo global.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `article_id, quantity, reserved, available, average_cost, stock_value,
	last_entry, last_exit, last_count, count_variance, last_count_at, status, version, updated_at`

// Get obtiene el registro de stock de un artículo; (nil, nil) si no existe.
func (r *StockRepo) Get(ctx context.Context, articleID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE article_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, articleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// Create inserta el registro inicial con versión 1. Si otro escritor creó la
// fila primero, la violación de unicidad se reporta como conflicto de
// concurrencia para que el ledger recargue y reintente.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13)`
	_, err := r.q.Exec(ctx, query,
		stock.ArticleID, stock.Quantity, stock.Reserved, stock.Available,
		stock.AverageCost, stock.Value,
		stock.LastEntry, stock.LastExit, stock.LastCount, stock.CountVariance, stock.LastCountAt,
		string(stock.Status), stock.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("create stock: %w", err)
	}
	stock.Version = 1
	return nil
}

// Update escribe el registro solo si la versión almacenada coincide; cero
// filas afectadas significa que otra operación ganó la carrera.
func (r *StockRepo) Update(ctx context.Context, stock *entity.Stock, expectedVersion int64) error {
	query := `
		UPDATE stock SET
			quantity = $2, reserved = $3, available = $4, average_cost = $5, stock_value = $6,
			last_entry = $7, last_exit = $8, last_count = $9, count_variance = $10, last_count_at = $11,
			status = $12, updated_at = $13, version = version + 1
		WHERE article_id = $1 AND version = $14`
	tag, err := r.q.Exec(ctx, query,
		stock.ArticleID, stock.Quantity, stock.Reserved, stock.Available,
		stock.AverageCost, stock.Value,
		stock.LastEntry, stock.LastExit, stock.LastCount, stock.CountVariance, stock.LastCountAt,
		string(stock.Status), stock.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	stock.Version = expectedVersion + 1
	return nil
}

// List instantáneas actuales con paginación, ordenadas por artículo.
func (r *StockRepo) List(ctx context.Context, limit, offset int) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock ORDER BY article_id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	return collectStocks(rows)
}

// ListByStatus registros cuyo estado está en la lista dada.
func (r *StockRepo) ListByStatus(ctx context.Context, statuses ...entity.StockStatus) ([]*entity.Stock, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE status = ANY($1) ORDER BY article_id`
	rows, err := r.q.Query(ctx, query, values)
	if err != nil {
		return nil, fmt.Errorf("list stock by status: %w", err)
	}
	defer rows.Close()
	return collectStocks(rows)
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	var status string
	err := row.Scan(
		&s.ArticleID, &s.Quantity, &s.Reserved, &s.Available, &s.AverageCost, &s.Value,
		&s.LastEntry, &s.LastExit, &s.LastCount, &s.CountVariance, &s.LastCountAt,
		&status, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = entity.StockStatus(status)
	return &s, nil
}

func collectStocks(rows pgx.Rows) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
