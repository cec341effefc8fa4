package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.NCFSequenceRepository = (*NCFSequenceRepo)(nil)

// NCFSequenceRepo contadores NCF en ncf_sequences (una fila por prefijo).
type NCFSequenceRepo struct {
	q Querier
}

// NewNCFSequenceRepository construye el adaptador.
func NewNCFSequenceRepository(q Querier) *NCFSequenceRepo {
	return &NCFSequenceRepo{q: q}
}

const sequenceColumns = `prefix, next_number, range_start, range_end, created_at, updated_at`

func scanSequence(row pgxScanner) (*entity.NCFSequence, error) {
	var s entity.NCFSequence
	var start, end *int64
	if err := row.Scan(&s.Prefix, &s.NextNumber, &start, &end, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if start != nil {
		s.RangeStart = *start
	}
	if end != nil {
		s.RangeEnd = *end
	}
	return &s, nil
}

func nullIfZero(n int64) *int64 {
	if n == 0 {
		return nil
	}
	return &n
}

// GetForUpdate crea el contador si no existe (ON CONFLICT DO NOTHING) y lo bloquea hasta el commit.
// Dos facturas concurrentes del mismo prefijo esperan una a la otra en este SELECT.
func (r *NCFSequenceRepo) GetForUpdate(ctx context.Context, prefix string) (*entity.NCFSequence, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO ncf_sequences (prefix, next_number, created_at, updated_at)
		VALUES ($1, 1, now(), now())
		ON CONFLICT (prefix) DO NOTHING`, prefix); err != nil {
		return nil, fmt.Errorf("ensure ncf sequence: %w", err)
	}
	query := `SELECT ` + sequenceColumns + ` FROM ncf_sequences WHERE prefix = $1 FOR UPDATE`
	s, err := scanSequence(r.q.QueryRow(ctx, query, prefix))
	if err != nil {
		return nil, fmt.Errorf("lock ncf sequence: %w", err)
	}
	return s, nil
}

// GetByPrefix lee el contador sin bloquear.
func (r *NCFSequenceRepo) GetByPrefix(ctx context.Context, prefix string) (*entity.NCFSequence, error) {
	query := `SELECT ` + sequenceColumns + ` FROM ncf_sequences WHERE prefix = $1`
	s, err := scanSequence(r.q.QueryRow(ctx, query, prefix))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ncf sequence: %w", err)
	}
	return s, nil
}

// Advance fija el próximo número. Solo visible para otras transacciones tras el commit.
func (r *NCFSequenceRepo) Advance(ctx context.Context, prefix string, nextNumber int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE ncf_sequences SET next_number = $2, updated_at = now() WHERE prefix = $1`,
		prefix, nextNumber)
	if err != nil {
		return fmt.Errorf("advance ncf sequence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert configura rango y número inicial.
func (r *NCFSequenceRepo) Upsert(ctx context.Context, s *entity.NCFSequence) error {
	query := `
		INSERT INTO ncf_sequences (prefix, next_number, range_start, range_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (prefix) DO UPDATE
		SET next_number = EXCLUDED.next_number,
		    range_start = EXCLUDED.range_start,
		    range_end   = EXCLUDED.range_end,
		    updated_at  = now()`
	if _, err := r.q.Exec(ctx, query, s.Prefix, s.NextNumber, nullIfZero(s.RangeStart), nullIfZero(s.RangeEnd)); err != nil {
		return fmt.Errorf("upsert ncf sequence: %w", err)
	}
	return nil
}

// List devuelve todos los contadores ordenados por prefijo.
func (r *NCFSequenceRepo) List(ctx context.Context) ([]*entity.NCFSequence, error) {
	rows, err := r.q.Query(ctx, `SELECT `+sequenceColumns+` FROM ncf_sequences ORDER BY prefix`)
	if err != nil {
		return nil, fmt.Errorf("list ncf sequences: %w", err)
	}
	defer rows.Close()
	var list []*entity.NCFSequence
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ncf sequence: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
