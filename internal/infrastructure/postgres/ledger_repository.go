package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/repository"
)

var (
	_ repository.LedgerRepository   = (*LedgerRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

const ledgerColumns = `id, product_id, location_id, transaction_type, quantity, balance_before, balance_after,
	document_id, document_reference, reason, created_by, created_at`

// LedgerRepo ledger append-only sobre PostgreSQL. Un trigger rechaza UPDATE y DELETE sobre la tabla.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del ledger.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create inserta un asiento.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.LocationID, string(e.Type), e.Quantity, e.BalanceBefore, e.BalanceAfter,
		nullable(e.DocumentID), e.DocumentReference, e.Reason, nullable(e.CreatedBy), e.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List historial filtrado, en orden de escritura.
func (r *LedgerRepo) List(ctx context.Context, f entity.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.LocationID != "" {
		add("location_id = $%d", f.LocationID)
	}
	if f.DocumentID != "" {
		add("document_id = $%d", f.DocumentID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, seq"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var out []*entity.LedgerEntry
	for rows.Next() {
		var (
			e       entity.LedgerEntry
			txType  string
			doc, by *string
		)
		err := rows.Scan(&e.ID, &e.ProductID, &e.LocationID, &txType, &e.Quantity, &e.BalanceBefore, &e.BalanceAfter,
			&doc, &e.DocumentReference, &e.Reason, &by, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Type = entity.TransactionType(txType)
		e.DocumentID = deref(doc)
		e.CreatedBy = deref(by)
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Sum saldo del ledger para el producto, opcionalmente por ubicación y hasta asOf.
func (r *LedgerRepo) Sum(ctx context.Context, productID, locationID string, asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0) FROM ledger_entries
		WHERE product_id = $1
		  AND ($2::text = '' OR location_id::text = $2::text)
		  AND ($3::timestamptz IS NULL OR created_at <= $3::timestamptz)`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, locationID, asOf).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger: %w", err)
	}
	return total, nil
}

// SumByLocation saldo del ledger por ubicación.
func (r *LedgerRepo) SumByLocation(ctx context.Context, productID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT location_id, SUM(quantity) FROM ledger_entries
		WHERE product_id = $1 GROUP BY location_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("sum ledger by location: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			loc   string
			total decimal.Decimal
		)
		if err := rows.Scan(&loc, &total); err != nil {
			return nil, fmt.Errorf("scan ledger sum: %w", err)
		}
		out[loc] = total
	}
	return out, rows.Err()
}

// SequenceRepo contador de referencias sobre la tabla document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador de secuencias.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el contador en una sola sentencia; la fila queda bloqueada
// hasta el fin de la transacción, así que dos documentos nunca comparten número.
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO document_sequences (name, last_value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var v int64
	if err := r.q.QueryRow(ctx, query, name).Scan(&v); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return v, nil
}
