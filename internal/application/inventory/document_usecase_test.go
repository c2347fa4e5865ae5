package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/internal/domain/movement"
)

func TestEntrega_RoundTripMenosCinco(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "20", "0")

	d := f.delivery(line(a, "5"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	res, err := f.docs.Process(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, "delivery", e.Type)
	assert.Equal(t, "-5", e.Quantity.String())
	assert.Equal(t, "20", e.BalanceBefore.String())
	assert.Equal(t, "15", e.BalanceAfter.String())
	assert.Equal(t, d.Reference, e.DocumentReference)
	assert.Equal(t, testUser, e.CreatedBy)

	assert.Equal(t, "done", res.Document.Status)
	assert.True(t, res.Document.Lines[0].ReservedQuantity.IsZero())
	assert.Equal(t, "15", f.onHand(a).String())

	hist, err := f.stock.History(f.ctx, dto.HistoryRequest{DocumentID: d.ID})
	require.NoError(t, err)
	assert.Len(t, hist.Items, 1)
	f.mustReconcile()
}

func TestSteelRods_EntregaDeTreinta(t *testing.T) {
	f := newFixture(t)
	rods := f.product("STEEL-RODS", "100", "20")

	d := f.delivery(line(rods, "30"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	v, err := f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "ready", v.Document.Status)
	assert.Equal(t, "30", v.Document.Lines[0].ReservedQuantity.String())
	assert.Equal(t, "70", f.available(rods, f.shelf).String())

	_, err = f.docs.Process(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	p, err := f.products.GetByID(f.ctx, rods)
	require.NoError(t, err)
	assert.Equal(t, "70", p.OnHand.String())
	assert.Equal(t, entity.ProductStatusInStock, p.Status)
	f.mustReconcile()
}

func TestSteelRods_StockInsuficienteQuedaEnWaiting(t *testing.T) {
	f := newFixture(t)
	rods := f.product("STEEL-RODS", "25", "20")

	d := f.delivery(line(rods, "30"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, rods, short.Shortages[0].ProductID)
	assert.Equal(t, "30", short.Shortages[0].Requested.String())
	assert.Equal(t, "25", short.Shortages[0].Available.String())

	got, err := f.docs.Get(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "waiting", got.Status)
	assert.True(t, got.Lines[0].ReservedQuantity.IsZero())
	assert.Equal(t, 1, f.metrics.shortages)
	assert.Equal(t, 1, f.metrics.transitions["delivery/validate/insufficient_stock"])
	f.mustReconcile()
}

func TestReserva_LimiteExacto(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	b := f.product("B-001", "10", "0")

	exacto := f.delivery(line(a, "10"))
	_, err := f.docs.Submit(f.ctx, exacto.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, exacto.ID, testUser)
	assert.NoError(t, err)
	assert.True(t, f.available(a, f.shelf).IsZero())

	excede := f.delivery(line(b, "10.01"))
	_, err = f.docs.Submit(f.ctx, excede.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, excede.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReserva_SinAutoBloqueo(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "10"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	err = f.store.Run(f.ctx, func(r inventory.Repos) error {
		doc, err := r.Documents.GetByID(f.ctx, d.ID)
		require.NoError(t, err)
		ajeno, err := f.avail.Availability(f.ctx, r, a, f.shelf, d.ID)
		require.NoError(t, err)
		assert.True(t, doc.TotalReserved().LessThanOrEqual(ajeno.Available))
		// volver a verificar con sus propias reservas vigentes no debe fallar
		return f.res.Check(f.ctx, r, doc)
	})
	require.NoError(t, err)

	_, err = f.docs.Process(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assert.True(t, f.onHand(a).IsZero())
	f.mustReconcile()
}

func TestReserva_SumaLineasDelMismoProducto(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "6"), line(a, "5"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, "11", short.Shortages[0].Requested.String())
}

func TestReserva_ReportaTodosLosFaltantes(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "1", "0")
	b := f.product("B-001", "2", "0")
	c := f.product("C-001", "50", "0")

	d := f.delivery(line(a, "3"), line(c, "5"), line(b, "4"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Len(t, short.Shortages, 2)

	// todo o nada: la línea con stock tampoco quedó reservada
	assert.Equal(t, "50", f.available(c, f.shelf).String())
}

func TestConcurrencia_UltimasDiezUnidades(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d1 := f.delivery(line(a, "10"))
	d2 := f.delivery(line(a, "10"))
	for _, d := range []*dto.DocumentResponse{d1, d2} {
		_, err := f.docs.Submit(f.ctx, d.ID, testUser)
		require.NoError(t, err)
	}

	results := make([]error, 2)
	var g errgroup.Group
	for i, d := range []*dto.DocumentResponse{d1, d2} {
		i, id := i, d.ID
		g.Go(func() error {
			_, results[i] = f.docs.Validate(f.ctx, id, testUser)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var winner string
	failures := 0
	for i, err := range results {
		if err == nil {
			winner = []string{d1.ID, d2.ID}[i]
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		failures++
	}
	require.Equal(t, 1, failures)
	require.NotEmpty(t, winner)

	_, err := f.docs.Process(f.ctx, winner, testUser)
	require.NoError(t, err)
	assert.True(t, f.onHand(a).IsZero())
	f.mustReconcile()
}

func TestRelease_Idempotente(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	tr := f.transfer(line(a, "4"))
	started, err := f.docs.Start(f.ctx, tr.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "in_transit", started.Document.Status)
	assert.Equal(t, "6", f.available(a, f.shelf).String())

	_, err = f.docs.Cancel(f.ctx, tr.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "10", f.available(a, f.shelf).String())

	err = f.store.Run(f.ctx, func(r inventory.Repos) error {
		doc, err := r.Documents.GetByID(f.ctx, tr.ID)
		require.NoError(t, err)
		require.NoError(t, f.res.Release(f.ctx, r, doc))
		require.NoError(t, f.res.Release(f.ctx, r, doc))
		assert.True(t, doc.TotalReserved().IsZero())
		return nil
	})
	require.NoError(t, err)

	borrador := f.delivery(line(a, "2"))
	err = f.store.Run(f.ctx, func(r inventory.Repos) error {
		doc, err := r.Documents.GetByID(f.ctx, borrador.ID)
		require.NoError(t, err)
		require.NoError(t, f.res.Release(f.ctx, r, doc))
		return f.res.Release(f.ctx, r, doc)
	})
	require.NoError(t, err)
	f.mustReconcile()
}

func TestTraslado_MueveEntreUbicaciones(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	tr := f.transfer(line(a, "4"))
	_, err := f.docs.Start(f.ctx, tr.ID, testUser)
	require.NoError(t, err)
	res, err := f.docs.Complete(f.ctx, tr.ID, testUser)
	require.NoError(t, err)

	assert.Equal(t, "completed", res.Document.Status)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "transfer_out", res.Entries[0].Type)
	assert.Equal(t, "transfer_in", res.Entries[1].Type)
	assert.Equal(t, "0", res.Entries[1].BalanceBefore.String())
	assert.Equal(t, "4", res.Entries[1].BalanceAfter.String())

	assert.Equal(t, "6", f.available(a, f.shelf).String())
	assert.Equal(t, "4", f.available(a, f.dock).String())
	assert.Equal(t, "10", f.onHand(a).String())
	assert.Equal(t, "10", f.available(a, "").String())

	_, err = f.docs.Complete(f.ctx, tr.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyProcessed)
	f.mustReconcile()
}

func TestRecepcion_SumaStockYNoSeProcesaDosVeces(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "0", "5")

	r := f.receipt(line(a, "50"), line(a, "2.5"))
	s, err := f.docs.Submit(f.ctx, r.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "ready", s.Document.Status)

	res, err := f.docs.Process(f.ctx, r.ID, testUser)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, "52.5", f.onHand(a).String())

	_, err = f.docs.Process(f.ctx, r.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyProcessed)
	assert.Equal(t, "52.5", f.onHand(a).String())
	f.mustReconcile()
}

func TestCancelar_LiberaYEsTerminal(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "7"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	_, err = f.docs.Validate(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "3", f.available(a, f.shelf).String())

	res, err := f.docs.Cancel(f.ctx, d.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "canceled", res.Document.Status)
	assert.Empty(t, res.Document.AvailableActions)
	assert.Equal(t, "10", f.available(a, f.shelf).String())

	_, err = f.docs.Cancel(f.ctx, d.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	_, err = f.docs.Process(f.ctx, d.ID, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	f.mustReconcile()
}

func TestTransicionInvalida_ProcesarSinValidar(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "1"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.docs.Process(f.ctx, d.ID, testUser)
	var inv *domain.InvalidStatusTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "waiting", inv.From)
	assert.Equal(t, "done", inv.To)

	_, err = f.docs.ApplyAction(f.ctx, d.ID, "teleport", testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.docs.Apply(f.ctx, "no-existe", movement.ActionSubmit, testUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_SinLineasEsValidationError(t *testing.T) {
	f := newFixture(t)
	d := f.delivery()

	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "lines", ve.Field)

	got, err := f.docs.Get(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)

	_, err = f.docs.Cancel(f.ctx, d.ID, testUser)
	assert.NoError(t, err)
}

func TestBorrador_EdicionYBorrado(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")
	b := f.product("B-001", "10", "0")

	d := f.delivery(line(a, "1"))
	d, err := f.docs.AddLine(f.ctx, d.ID, line(b, "2"))
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, 2, d.Lines[1].Position)

	d, err = f.docs.RemoveLine(f.ctx, d.ID, d.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, b, d.Lines[0].ProductID)

	partner := "Acme"
	d, err = f.docs.Update(f.ctx, d.ID, dto.UpdateDocumentRequest{Partner: &partner})
	require.NoError(t, err)
	assert.Equal(t, "Acme", d.Partner)

	_, err = f.docs.AddLine(f.ctx, d.ID, line("5b1e0a4c-2d43-4a37-9d7c-4b3c1f0e9a11", "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	_, err = f.docs.AddLine(f.ctx, d.ID, line(a, "1"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	_, err = f.docs.Update(f.ctx, d.ID, dto.UpdateDocumentRequest{Partner: &partner})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, f.docs.Delete(f.ctx, d.ID), domain.ErrInvalidStatusTransition)

	borrador := f.delivery(line(a, "1"))
	require.NoError(t, f.docs.Delete(f.ctx, borrador.ID))
	got, err := f.docs.Get(f.ctx, borrador.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTraslado_UbicacionesIgualesEsInvalido(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	_, err := f.docs.Create(f.ctx, testUser, dto.CreateDocumentRequest{
		Kind: "transfer", SourceLocationID: f.shelf, DestinationLocationID: f.shelf, Lines: []dto.LineRequest{line(a, "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReferencias_MonotonicasPorTipo(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d1 := f.delivery(line(a, "1"))
	d2 := f.delivery(line(a, "1"))
	r1 := f.receipt(line(a, "1"))
	t1 := f.transfer(line(a, "1"))
	assert.Equal(t, "WH/OUT/0001", d1.Reference)
	assert.Equal(t, "WH/OUT/0002", d2.Reference)
	assert.Equal(t, "WH/IN/0001", r1.Reference)
	assert.Equal(t, "WH/INT/0001", t1.Reference)

	require.NoError(t, f.docs.Delete(f.ctx, d2.ID))
	d3 := f.delivery(line(a, "1"))
	assert.Equal(t, "WH/OUT/0003", d3.Reference)
}

func TestListar_FiltraPorTipoYEstado(t *testing.T) {
	f := newFixture(t)
	a := f.product("A-001", "10", "0")

	d := f.delivery(line(a, "1"))
	f.receipt(line(a, "1"))
	_, err := f.docs.Submit(f.ctx, d.ID, testUser)
	require.NoError(t, err)

	list, err := f.docs.List(f.ctx, dto.DocumentFilterRequest{Kind: "delivery", Status: "waiting"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, d.ID, list.Items[0].ID)
	assert.Equal(t, []string{"validate", "cancel"}, list.Items[0].AvailableActions)

	_, err = f.docs.List(f.ctx, dto.DocumentFilterRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
