package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementJournalRepository = (*MovementJournalRepo)(nil)

// MovementJournalRepo diario de movimientos sobre PostgreSQL. Solo inserta y
// lee; no existe UPDATE ni DELETE sobre movements.
type MovementJournalRepo struct {
	q Querier
}

// NewMovementJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementJournalRepository(q Querier) *MovementJournalRepo {
	return &MovementJournalRepo{q: q}
}

const movementColumns = `id, article_id, type, quantity, unit_price, counterpart,
	stock_before, stock_after, actor, reason, created_at`

// Append persiste un asiento con su instantánea antes/después.
func (r *MovementJournalRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ArticleID, string(m.Type), m.Quantity, m.UnitPrice, nullIfEmpty(m.Counterpart),
		m.StockBefore, m.StockAfter, m.Actor, nullIfEmpty(m.Reason), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID; (nil, nil) si no existe.
func (r *MovementJournalRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByArticle asientos de un artículo en orden de aplicación (cronológico).
func (r *MovementJournalRepo) ListByArticle(ctx context.Context, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE article_id = $1`
	args := []any{articleID}
	query, args = appendPeriod(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by article: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByPeriod asientos de todos los artículos en un rango de fechas.
func (r *MovementJournalRepo) ListByPeriod(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE 1=1`
	var args []any
	query, args = appendPeriod(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by period: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func appendPeriod(query string, args []any, from, to *time.Time) (string, []any) {
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	return query, args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var mtype string
	var counterpart, reason *string
	err := row.Scan(
		&m.ID, &m.ArticleID, &mtype, &m.Quantity, &m.UnitPrice, &counterpart,
		&m.StockBefore, &m.StockAfter, &m.Actor, &reason, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(mtype)
	if counterpart != nil {
		m.Counterpart = *counterpart
	}
	if reason != nil {
		m.Reason = *reason
	}
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
