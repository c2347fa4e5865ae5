package movement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/movement"
)

func TestCommitEntries_Traslado(t *testing.T) {
	doc := &entity.MovementDocument{
		ID:                    "doc-1",
		Reference:             "WH/INT/0001",
		Kind:                  entity.KindTransfer,
		SourceLocationID:      "loc-b",
		DestinationLocationID: "loc-a",
		Lines: []entity.LineItem{
			{ProductID: "p2", Quantity: decimal.NewFromInt(4)},
			{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
		},
	}

	entries := movement.CommitEntries(doc, "user-1")
	require.Len(t, entries, 4)
	assert.Equal(t, entity.TransactionTransferOut, entries[0].Type)
	assert.Equal(t, "loc-b", entries[0].LocationID)
	assert.True(t, entries[0].Quantity.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, entity.TransactionTransferIn, entries[1].Type)
	assert.Equal(t, "loc-a", entries[1].LocationID)
	assert.True(t, entries[1].Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "WH/INT/0001", entries[3].DocumentReference)
	assert.Equal(t, "user-1", entries[3].CreatedBy)

	keys := movement.LockOrder(entries)
	assert.Equal(t, []entity.StockKey{
		{ProductID: "p1", LocationID: "loc-a"},
		{ProductID: "p1", LocationID: "loc-b"},
		{ProductID: "p2", LocationID: "loc-a"},
		{ProductID: "p2", LocationID: "loc-b"},
	}, keys)
}

func TestCommitEntries_EntregaYRecepcion(t *testing.T) {
	lines := []entity.LineItem{{ProductID: "p1", Quantity: decimal.NewFromInt(5)}}

	out := movement.CommitEntries(&entity.MovementDocument{Kind: entity.KindDelivery, SourceLocationID: "s", Lines: lines}, "")
	require.Len(t, out, 1)
	assert.Equal(t, entity.TransactionDelivery, out[0].Type)
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(-5)))

	in := movement.CommitEntries(&entity.MovementDocument{Kind: entity.KindReceipt, DestinationLocationID: "d", Lines: lines}, "")
	require.Len(t, in, 1)
	assert.Equal(t, entity.TransactionReceipt, in[0].Type)
	assert.Equal(t, "d", in[0].LocationID)
	assert.True(t, in[0].Quantity.Equal(decimal.NewFromInt(5)))
}
