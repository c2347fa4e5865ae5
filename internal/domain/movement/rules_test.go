package movement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/movement"
)

func TestParseAction(t *testing.T) {
	a, err := movement.ParseAction(" Validate ")
	require.NoError(t, err)
	assert.Equal(t, movement.ActionValidate, a)

	_, err = movement.ParseAction("edit")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = movement.ParseAction("ship")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateLocations(t *testing.T) {
	cases := []struct {
		name string
		doc  entity.MovementDocument
		ok   bool
	}{
		{"entrega con origen", entity.MovementDocument{Kind: entity.KindDelivery, SourceLocationID: "a"}, true},
		{"entrega sin origen", entity.MovementDocument{Kind: entity.KindDelivery, DestinationLocationID: "a"}, false},
		{"recepcion con destino", entity.MovementDocument{Kind: entity.KindReceipt, DestinationLocationID: "a"}, true},
		{"recepcion sin destino", entity.MovementDocument{Kind: entity.KindReceipt}, false},
		{"traslado completo", entity.MovementDocument{Kind: entity.KindTransfer, SourceLocationID: "a", DestinationLocationID: "b"}, true},
		{"traslado misma ubicacion", entity.MovementDocument{Kind: entity.KindTransfer, SourceLocationID: "a", DestinationLocationID: "a"}, false},
		{"traslado sin destino", entity.MovementDocument{Kind: entity.KindTransfer, SourceLocationID: "a"}, false},
		{"tipo desconocido", entity.MovementDocument{Kind: "scrap"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := movement.ValidateLocations(&tc.doc)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			}
		})
	}
}

func TestCheckLines_SalirDeDraftRequiereLineas(t *testing.T) {
	doc := &entity.MovementDocument{Kind: entity.KindDelivery, Status: entity.StatusDraft}

	submit, err := movement.Next(doc.Kind, doc.Status, movement.ActionSubmit)
	require.NoError(t, err)
	assert.ErrorIs(t, movement.CheckLines(doc, submit), domain.ErrInvalidInput)

	cancel, err := movement.Next(doc.Kind, doc.Status, movement.ActionCancel)
	require.NoError(t, err)
	assert.NoError(t, movement.CheckLines(doc, cancel))

	doc.Lines = []entity.LineItem{{ProductID: "p", Quantity: decimal.NewFromInt(1)}}
	assert.NoError(t, movement.CheckLines(doc, submit))
}
