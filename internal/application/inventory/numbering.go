package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// ReferenceGenerator asigna referencias legibles {BODEGA}/{IN|OUT|INT}/{secuencia}.
// La secuencia sale de un contador atómico por tipo; los números borrados no se reutilizan.
type ReferenceGenerator struct {
	warehouseCode string
}

// NewReferenceGenerator construye el generador con el código de bodega (p. ej. "WH").
func NewReferenceGenerator(warehouseCode string) *ReferenceGenerator {
	return &ReferenceGenerator{warehouseCode: warehouseCode}
}

// NextReference reserva el siguiente número para el tipo de documento dentro de la tx del llamador.
func (g *ReferenceGenerator) NextReference(ctx context.Context, r Repos, kind entity.DocumentKind) (string, error) {
	n, err := r.Sequences.Next(ctx, sequenceName(kind))
	if err != nil {
		return "", fmt.Errorf("next reference: %w", err)
	}
	return FormatReference(g.warehouseCode, kind, n), nil
}

// FormatReference arma la referencia con la secuencia rellenada a 4 dígitos.
func FormatReference(warehouseCode string, kind entity.DocumentKind, seq int64) string {
	return fmt.Sprintf("%s/%s/%04d", warehouseCode, kind.ReferenceCode(), seq)
}

func sequenceName(kind entity.DocumentKind) string {
	return "document:" + string(kind)
}
