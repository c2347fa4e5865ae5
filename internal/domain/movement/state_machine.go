// Package movement define la máquina de estados de los documentos de movimiento
// (recepciones, entregas y traslados) como una tabla explícita (tipo, estado, acción) -> (estado, efecto).
package movement

import (
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// Action acción solicitada sobre un documento.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionValidate Action = "validate"
	ActionProcess  Action = "process"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
)

// Effect categoría única de efecto colateral que dispara una transición.
type Effect int

const (
	EffectNone    Effect = iota
	EffectReserve        // reserva stock en origen
	EffectCommit         // escribe el ledger y limpia reservas
	EffectRelease        // libera reservas
)

func (e Effect) String() string {
	switch e {
	case EffectReserve:
		return "reserve"
	case EffectCommit:
		return "commit"
	case EffectRelease:
		return "release"
	default:
		return "none"
	}
}

// Transition una fila de la tabla.
type Transition struct {
	Kind   entity.DocumentKind
	From   entity.DocumentStatus
	Action Action
	To     entity.DocumentStatus
	Effect Effect
}

type key struct {
	kind   entity.DocumentKind
	from   entity.DocumentStatus
	action Action
}

var transitions = []Transition{
	// Entregas: draft -> waiting -> ready -> done
	{entity.KindDelivery, entity.StatusDraft, ActionSubmit, entity.StatusWaiting, EffectNone},
	{entity.KindDelivery, entity.StatusWaiting, ActionValidate, entity.StatusReady, EffectReserve},
	{entity.KindDelivery, entity.StatusReady, ActionProcess, entity.StatusDone, EffectCommit},
	{entity.KindDelivery, entity.StatusDraft, ActionCancel, entity.StatusCanceled, EffectRelease},
	{entity.KindDelivery, entity.StatusWaiting, ActionCancel, entity.StatusCanceled, EffectRelease},
	{entity.KindDelivery, entity.StatusReady, ActionCancel, entity.StatusCanceled, EffectRelease},

	// Recepciones: draft -> ready -> done
	{entity.KindReceipt, entity.StatusDraft, ActionSubmit, entity.StatusReady, EffectNone},
	{entity.KindReceipt, entity.StatusReady, ActionProcess, entity.StatusDone, EffectCommit},
	{entity.KindReceipt, entity.StatusDraft, ActionCancel, entity.StatusCanceled, EffectNone},
	{entity.KindReceipt, entity.StatusReady, ActionCancel, entity.StatusCanceled, EffectNone},

	// Traslados: draft -> in_transit -> completed
	{entity.KindTransfer, entity.StatusDraft, ActionStart, entity.StatusInTransit, EffectReserve},
	{entity.KindTransfer, entity.StatusInTransit, ActionComplete, entity.StatusCompleted, EffectCommit},
	{entity.KindTransfer, entity.StatusDraft, ActionCancel, entity.StatusCanceled, EffectRelease},
	{entity.KindTransfer, entity.StatusInTransit, ActionCancel, entity.StatusCanceled, EffectRelease},
}

var table = func() map[key]Transition {
	m := make(map[key]Transition, len(transitions))
	for _, t := range transitions {
		m[key{t.Kind, t.From, t.Action}] = t
	}
	return m
}()

// Next resuelve la transición para (kind, from, action).
// Repetir la acción terminal sobre un documento ya terminado devuelve ErrDocumentAlreadyProcessed;
// cualquier otra combinación ausente de la tabla devuelve InvalidStatusTransitionError.
func Next(kind entity.DocumentKind, from entity.DocumentStatus, action Action) (Transition, error) {
	if t, ok := table[key{kind, from, action}]; ok {
		return t, nil
	}
	if target, ok := commitTarget(kind, action); ok && target == from {
		return Transition{}, domain.ErrDocumentAlreadyProcessed
	}
	return Transition{}, &domain.InvalidStatusTransitionError{
		From:   string(from),
		To:     string(targetOf(kind, action)),
		Action: string(action),
	}
}

// CheckEditable solo los borradores admiten edición o borrado.
func CheckEditable(status entity.DocumentStatus, action Action) error {
	if status == entity.StatusDraft {
		return nil
	}
	return &domain.InvalidStatusTransitionError{From: string(status), Action: string(action)}
}

// Available acciones de transición permitidas desde un estado.
func Available(kind entity.DocumentKind, from entity.DocumentStatus) []Action {
	var out []Action
	for _, t := range transitions {
		if t.Kind == kind && t.From == from {
			out = append(out, t.Action)
		}
	}
	return out
}

// commitTarget estado terminal alcanzado por la acción de commit del tipo.
func commitTarget(kind entity.DocumentKind, action Action) (entity.DocumentStatus, bool) {
	for _, t := range transitions {
		if t.Kind == kind && t.Action == action && t.Effect == EffectCommit {
			return t.To, true
		}
	}
	return "", false
}

func targetOf(kind entity.DocumentKind, action Action) entity.DocumentStatus {
	for _, t := range transitions {
		if t.Kind == kind && t.Action == action {
			return t.To
		}
	}
	return ""
}
