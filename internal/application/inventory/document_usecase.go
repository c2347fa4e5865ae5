package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/movement"
	"github.com/jhoicas/stockmaster/internal/domain/repository"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// DocumentUseCase ciclo de vida de recepciones, entregas y traslados.
// Cada operación es una sola transacción: bloqueo del documento, verificación de disponible,
// escritura de reservas o ledger y cambio de estado. Cualquier error revierte todo.
type DocumentUseCase struct {
	tx           TxRunner
	refs         *ReferenceGenerator
	reservations *ReservationManager
	ledger       *Ledger
	metrics      Metrics
	log          *logger.Logger
	now          func() time.Time
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(tx TxRunner, refs *ReferenceGenerator, reservations *ReservationManager, ledger *Ledger, metrics Metrics, log *logger.Logger) *DocumentUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &DocumentUseCase{
		tx:           tx,
		refs:         refs,
		reservations: reservations,
		ledger:       ledger,
		metrics:      metrics,
		log:          log.Component("documents"),
		now:          time.Now,
	}
}

// Create crea un documento en draft con su referencia y sus líneas iniciales.
func (uc *DocumentUseCase) Create(ctx context.Context, userID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	now := uc.now()
	doc := &entity.MovementDocument{
		ID:                    uuid.New().String(),
		Kind:                  entity.DocumentKind(in.Kind),
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Partner:               in.Partner,
		Notes:                 in.Notes,
		ScheduledDate:         now,
		Status:                entity.StatusDraft,
		CreatedBy:             userID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if in.ScheduledDate != nil {
		doc.ScheduledDate = *in.ScheduledDate
	}
	if err := movement.ValidateLocations(doc); err != nil {
		return nil, err
	}

	err := uc.tx.Run(ctx, func(r Repos) error {
		if err := checkLocationsExist(ctx, r, doc); err != nil {
			return err
		}
		ref, err := uc.refs.NextReference(ctx, r, doc.Kind)
		if err != nil {
			return err
		}
		doc.Reference = ref
		if err := r.Documents.Create(ctx, doc); err != nil {
			return err
		}
		for _, l := range in.Lines {
			if _, err := addLine(ctx, r, doc, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("reference", doc.Reference).
		Str("kind", string(doc.Kind)).
		Int("lines", len(doc.Lines)).
		Msg("documento creado")
	return toDocumentResponse(doc), nil
}

// Get obtiene un documento con sus líneas. Devuelve (nil, nil) si no existe.
func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	var doc *entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = r.Documents.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// List lista documentos filtrando por tipo y estado.
func (uc *DocumentUseCase) List(ctx context.Context, in dto.DocumentFilterRequest) (*dto.DocumentListResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	in.DefaultPage()
	filter := repository.DocumentFilter{
		Kind:   entity.DocumentKind(in.Kind),
		Status: entity.DocumentStatus(in.Status),
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	var list []*entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		list, err = r.Documents.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDocumentResponse(d))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Update modifica la cabecera de un borrador (ubicaciones, fecha, socio, notas).
func (uc *DocumentUseCase) Update(ctx context.Context, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	var doc *entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = lockEditable(ctx, r, id, movement.ActionEdit)
		if err != nil {
			return err
		}
		if in.SourceLocationID != nil {
			doc.SourceLocationID = *in.SourceLocationID
		}
		if in.DestinationLocationID != nil {
			doc.DestinationLocationID = *in.DestinationLocationID
		}
		if in.Partner != nil {
			doc.Partner = *in.Partner
		}
		if in.Notes != nil {
			doc.Notes = *in.Notes
		}
		if in.ScheduledDate != nil {
			doc.ScheduledDate = *in.ScheduledDate
		}
		if err := movement.ValidateLocations(doc); err != nil {
			return err
		}
		if err := checkLocationsExist(ctx, r, doc); err != nil {
			return err
		}
		doc.UpdatedAt = uc.now()
		return r.Documents.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// AddLine agrega una línea a un borrador.
func (uc *DocumentUseCase) AddLine(ctx context.Context, documentID string, in dto.LineRequest) (*dto.DocumentResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	var doc *entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = lockEditable(ctx, r, documentID, movement.ActionEdit)
		if err != nil {
			return err
		}
		_, err = addLine(ctx, r, doc, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// RemoveLine quita una línea de un borrador.
func (uc *DocumentUseCase) RemoveLine(ctx context.Context, documentID, lineID string) (*dto.DocumentResponse, error) {
	var doc *entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = lockEditable(ctx, r, documentID, movement.ActionEdit)
		if err != nil {
			return err
		}
		idx := -1
		for i, l := range doc.Lines {
			if l.ID == lineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.ErrNotFound
		}
		if err := r.Documents.DeleteLine(ctx, documentID, lineID); err != nil {
			return err
		}
		doc.Lines = append(doc.Lines[:idx], doc.Lines[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// Delete borra un borrador y sus líneas. Sus reservas, si las hubiera, se liberan antes.
func (uc *DocumentUseCase) Delete(ctx context.Context, id string) error {
	var doc *entity.MovementDocument
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = lockEditable(ctx, r, id, movement.ActionDelete)
		if err != nil {
			return err
		}
		if err := uc.reservations.Release(ctx, r, doc); err != nil {
			return err
		}
		return r.Documents.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("document_id", doc.ID).Str("reference", doc.Reference).Msg("documento eliminado")
	return nil
}

// ApplyAction interpreta el nombre de la acción y ejecuta la transición.
func (uc *DocumentUseCase) ApplyAction(ctx context.Context, id, action, userID string) (*dto.TransitionResponse, error) {
	a, err := movement.ParseAction(action)
	if err != nil {
		return nil, err
	}
	return uc.Apply(ctx, id, a, userID)
}

// Apply ejecuta una transición de la tabla de estados junto con su efecto (reserva, commit o liberación).
// Si el efecto falla el documento queda en su estado anterior.
func (uc *DocumentUseCase) Apply(ctx context.Context, id string, action movement.Action, userID string) (*dto.TransitionResponse, error) {
	var (
		doc     *entity.MovementDocument
		tr      movement.Transition
		entries []*entity.LedgerEntry
	)
	err := uc.tx.Run(ctx, func(r Repos) error {
		var err error
		doc, err = r.Documents.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		tr, err = movement.Next(doc.Kind, doc.Status, action)
		if err != nil {
			return err
		}
		if err := movement.CheckLines(doc, tr); err != nil {
			return err
		}

		switch tr.Effect {
		case movement.EffectReserve:
			err = uc.reservations.Reserve(ctx, r, doc)
		case movement.EffectCommit:
			entries, err = uc.commit(ctx, r, doc, userID)
		case movement.EffectRelease:
			err = uc.reservations.Release(ctx, r, doc)
		}
		if err != nil {
			return err
		}

		doc.Status = tr.To
		doc.UpdatedAt = uc.now()
		return r.Documents.Update(ctx, doc)
	})

	kind := ""
	if doc != nil {
		kind = string(doc.Kind)
	}
	uc.metrics.TransitionObserved(kind, string(action), transitionResult(err))
	if err != nil {
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			uc.metrics.StockShortage(kind, len(short.Shortages))
		}
		return nil, err
	}

	uc.ledger.RecordWritten(entries...)
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("reference", doc.Reference).
		Str("action", string(action)).
		Str("from", string(tr.From)).
		Str("to", string(tr.To)).
		Str("effect", tr.Effect.String()).
		Int("ledger_entries", len(entries)).
		Msg("transición aplicada")

	return &dto.TransitionResponse{
		Action:   string(action),
		From:     string(tr.From),
		To:       string(tr.To),
		Document: *toDocumentResponse(doc),
		Entries:  toLedgerEntryResponses(entries),
	}, nil
}

// Submit confirma un borrador (entregas a waiting, recepciones a ready).
func (uc *DocumentUseCase) Submit(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionSubmit, userID)
}

// Validate reserva el stock de una entrega en waiting.
func (uc *DocumentUseCase) Validate(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionValidate, userID)
}

// Process aplica una entrega o recepción al ledger.
func (uc *DocumentUseCase) Process(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionProcess, userID)
}

// Start reserva el stock de origen de un traslado y lo pone en tránsito.
func (uc *DocumentUseCase) Start(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionStart, userID)
}

// Complete aplica un traslado en tránsito al ledger.
func (uc *DocumentUseCase) Complete(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionComplete, userID)
}

// Cancel cancela un documento no terminado y libera sus reservas.
func (uc *DocumentUseCase) Cancel(ctx context.Context, id, userID string) (*dto.TransitionResponse, error) {
	return uc.Apply(ctx, id, movement.ActionCancel, userID)
}

// commit bloquea primero los productos y luego las filas de stock afectadas, ambos en orden,
// vuelve a verificar el disponible de origen, escribe los asientos y libera las reservas del documento.
func (uc *DocumentUseCase) commit(ctx context.Context, r Repos, doc *entity.MovementDocument, userID string) ([]*entity.LedgerEntry, error) {
	entries := movement.CommitEntries(doc, userID)
	productIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		productIDs = append(productIDs, e.ProductID)
	}
	if err := uc.ledger.LockProducts(ctx, r, productIDs); err != nil {
		return nil, err
	}
	for _, k := range movement.LockOrder(entries) {
		if _, err := r.Stock.GetForUpdate(ctx, k.ProductID, k.LocationID); err != nil {
			return nil, err
		}
	}
	if doc.ReservesStock() {
		if err := uc.reservations.Check(ctx, r, doc); err != nil {
			return nil, err
		}
	}
	for _, e := range entries {
		if err := uc.ledger.Append(ctx, r, e); err != nil {
			return nil, err
		}
	}
	if err := uc.reservations.Release(ctx, r, doc); err != nil {
		return nil, err
	}
	return entries, nil
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrDocumentAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// lockEditable bloquea el documento y exige que siga en draft.
func lockEditable(ctx context.Context, r Repos, id string, action movement.Action) (*entity.MovementDocument, error) {
	doc, err := r.Documents.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if err := movement.CheckEditable(doc.Status, action); err != nil {
		return nil, err
	}
	return doc, nil
}

func addLine(ctx context.Context, r Repos, doc *entity.MovementDocument, in dto.LineRequest) (*entity.LineItem, error) {
	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewValidationError("product_id", "producto no existe: "+in.ProductID)
	}
	position := 1
	for _, l := range doc.Lines {
		if l.Position >= position {
			position = l.Position + 1
		}
	}
	line := entity.LineItem{
		ID:               uuid.New().String(),
		DocumentID:       doc.ID,
		Position:         position,
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		ReservedQuantity: decimal.Zero,
	}
	if err := r.Documents.AddLine(ctx, &line); err != nil {
		return nil, err
	}
	doc.Lines = append(doc.Lines, line)
	return &line, nil
}

func checkLocationsExist(ctx context.Context, r Repos, doc *entity.MovementDocument) error {
	check := func(field, id string) error {
		if id == "" {
			return nil
		}
		loc, err := r.Locations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NewValidationError(field, "ubicación no existe: "+id)
		}
		return nil
	}
	if err := check("source_location_id", doc.SourceLocationID); err != nil {
		return err
	}
	return check("destination_location_id", doc.DestinationLocationID)
}
