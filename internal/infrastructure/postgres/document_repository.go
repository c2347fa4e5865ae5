package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, reference, kind, source_location_id, destination_location_id,
	partner, notes, scheduled_date, status, created_by, created_at, updated_at`

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador de documentos de movimiento.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create inserta la cabecera del documento. Las líneas se agregan con AddLine.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.MovementDocument) error {
	query := `INSERT INTO movement_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Reference, string(d.Kind), nullable(d.SourceLocationID), nullable(d.DestinationLocationID),
		d.Partner, d.Notes, nullableTime(d.ScheduledDate), string(d.Status), nullable(d.CreatedBy),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene el documento con sus líneas. (nil, nil) si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.MovementDocument, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM movement_documents WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.MovementDocument, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM movement_documents WHERE id = $1 FOR UPDATE`, id)
}

func (r *DocumentRepo) getOne(ctx context.Context, query, id string) (*entity.MovementDocument, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	lines, err := r.linesOf(ctx, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Lines = lines[d.ID]
	return d, nil
}

// Update persiste cabecera y estado.
func (r *DocumentRepo) Update(ctx context.Context, d *entity.MovementDocument) error {
	query := `
		UPDATE movement_documents SET
			source_location_id = $2, destination_location_id = $3, partner = $4, notes = $5,
			scheduled_date = $6, status = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		d.ID, nullable(d.SourceLocationID), nullable(d.DestinationLocationID), d.Partner, d.Notes,
		nullableTime(d.ScheduledDate), string(d.Status), d.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el documento; las líneas caen por ON DELETE CASCADE.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movement_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista documentos (más recientes primero) con filtros opcionales por tipo y estado.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.MovementDocument, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM movement_documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, reference DESC"
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
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var (
		docs []*entity.MovementDocument
		ids  []string
	)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
		ids = append(ids, d.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return docs, nil
	}

	lines, err := r.linesOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Lines = lines[d.ID]
	}
	return docs, nil
}

// AddLine inserta una línea. Documento o producto inexistente -> ErrNotFound.
func (r *DocumentRepo) AddLine(ctx context.Context, l *entity.LineItem) error {
	query := `
		INSERT INTO line_items (id, document_id, position, product_id, quantity, reserved_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, l.ID, l.DocumentID, l.Position, l.ProductID, l.Quantity, l.ReservedQuantity)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// DeleteLine borra una línea del documento indicado.
func (r *DocumentRepo) DeleteLine(ctx context.Context, documentID, lineID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM line_items WHERE id = $1 AND document_id = $2`, lineID, documentID)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetReserved fija reserved_quantity de una línea. El CHECK de la tabla impide superar quantity.
func (r *DocumentRepo) SetReserved(ctx context.Context, lineID string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE line_items SET reserved_quantity = $2 WHERE id = $1`, lineID, quantity)
	if err != nil {
		return fmt.Errorf("set reserved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReservedQuantity suma lo reservado por documentos activos con origen en locationID.
func (r *DocumentRepo) ReservedQuantity(ctx context.Context, productID, locationID, excludeDocumentID string) (decimal.Decimal, error) {
	active := make([]string, 0, len(entity.ActiveStatuses))
	for _, s := range entity.ActiveStatuses {
		active = append(active, string(s))
	}
	query := `
		SELECT COALESCE(SUM(l.reserved_quantity), 0)
		FROM line_items l
		JOIN movement_documents d ON d.id = l.document_id
		WHERE l.product_id = $1
		  AND d.status = ANY($2)
		  AND ($3::text = '' OR d.source_location_id::text = $3::text)
		  AND ($4::text = '' OR d.id::text <> $4::text)`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, active, locationID, excludeDocumentID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum reserved: %w", err)
	}
	return total, nil
}

func (r *DocumentRepo) linesOf(ctx context.Context, documentIDs []string) (map[string][]entity.LineItem, error) {
	query := `
		SELECT id, document_id, position, product_id, quantity, reserved_quantity
		FROM line_items WHERE document_id = ANY($1)
		ORDER BY document_id, position`
	rows, err := r.q.Query(ctx, query, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.LineItem, len(documentIDs))
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Position, &l.ProductID, &l.Quantity, &l.ReservedQuantity); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		out[l.DocumentID] = append(out[l.DocumentID], l)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row) (*entity.MovementDocument, error) {
	var (
		d                entity.MovementDocument
		kind, status     string
		source, dest, by *string
		scheduled        *time.Time
	)
	err := row.Scan(&d.ID, &d.Reference, &kind, &source, &dest,
		&d.Partner, &d.Notes, &scheduled, &status, &by, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Kind = entity.DocumentKind(kind)
	d.Status = entity.DocumentStatus(status)
	d.SourceLocationID = deref(source)
	d.DestinationLocationID = deref(dest)
	d.CreatedBy = deref(by)
	if scheduled != nil {
		d.ScheduledDate = *scheduled
	}
	return &d, nil
}
