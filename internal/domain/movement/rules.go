package movement

import (
	"strings"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

var knownActions = map[Action]bool{
	ActionSubmit:   true,
	ActionValidate: true,
	ActionProcess:  true,
	ActionStart:    true,
	ActionComplete: true,
	ActionCancel:   true,
}

// ParseAction convierte el texto recibido en una acción de transición.
// edit y delete no son transiciones y se rechazan aquí.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !knownActions[a] {
		return "", domain.NewValidationError("action", "acción desconocida: "+s)
	}
	return a, nil
}

// ValidateLocations exige las ubicaciones que cada tipo necesita:
// entregas origen, recepciones destino, traslados ambos y distintos.
func ValidateLocations(doc *entity.MovementDocument) error {
	switch doc.Kind {
	case entity.KindDelivery:
		if doc.SourceLocationID == "" {
			return domain.NewValidationError("source_location_id", "requerido en entregas")
		}
	case entity.KindReceipt:
		if doc.DestinationLocationID == "" {
			return domain.NewValidationError("destination_location_id", "requerido en recepciones")
		}
	case entity.KindTransfer:
		if doc.SourceLocationID == "" {
			return domain.NewValidationError("source_location_id", "requerido en traslados")
		}
		if doc.DestinationLocationID == "" {
			return domain.NewValidationError("destination_location_id", "requerido en traslados")
		}
		if doc.SourceLocationID == doc.DestinationLocationID {
			return domain.NewValidationError("destination_location_id", "debe ser distinta del origen")
		}
	default:
		return domain.NewValidationError("kind", "tipo de documento desconocido")
	}
	return nil
}

// CheckLines un documento necesita al menos una línea para salir de draft, salvo para cancelarse.
func CheckLines(doc *entity.MovementDocument, t Transition) error {
	if t.From != entity.StatusDraft || t.To == entity.StatusCanceled {
		return nil
	}
	if len(doc.Lines) == 0 {
		return domain.NewValidationError("lines", "el documento no tiene líneas")
	}
	return nil
}
