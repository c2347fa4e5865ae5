package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// Available implementa Disponible = OnHand - Reservado (servicio de dominio).
// Puede ser negativo solo si hubo sobre-reserva; ver Usable.
func Available(onHand, reserved decimal.Decimal) decimal.Decimal {
	return onHand.Sub(reserved)
}

// Usable trata un disponible negativo como cero utilizable.
func Usable(available decimal.Decimal) decimal.Decimal {
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// Request cantidad solicitada de un producto en una ubicación.
type Request struct {
	Key      entity.StockKey
	Quantity decimal.Decimal
}

// AggregateLines suma lo solicitado por (producto, ubicación) y devuelve las claves ordenadas
// para bloquear filas siempre en el mismo orden.
func AggregateLines(lines []entity.LineItem, locationID string) []Request {
	sums := make(map[entity.StockKey]decimal.Decimal)
	for _, l := range lines {
		k := entity.StockKey{ProductID: l.ProductID, LocationID: locationID}
		sums[k] = sums[k].Add(l.Quantity)
	}
	out := make([]Request, 0, len(sums))
	for k, q := range sums {
		out = append(out, Request{Key: k, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// CheckRequests compara cada solicitud con su disponible y devuelve un InsufficientStockError
// con todos los faltantes, o nil si todo alcanza. requested == available es suficiente.
func CheckRequests(reqs []Request, available map[entity.StockKey]decimal.Decimal) error {
	var shortages []domain.Shortage
	for _, r := range reqs {
		avail := Usable(available[r.Key])
		if r.Quantity.GreaterThan(avail) {
			shortages = append(shortages, domain.Shortage{
				ProductID:  r.Key.ProductID,
				LocationID: r.Key.LocationID,
				Requested:  r.Quantity,
				Available:  avail,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// Balance pliega todos los asientos.
func Balance(entries []*entity.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// BalanceAsOf pliega los asientos con CreatedAt <= asOf. El orden de entrada no importa.
func BalanceAsOf(entries []*entity.LedgerEntry, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.CreatedAt.After(asOf) {
			continue
		}
		total = total.Add(e.Quantity)
	}
	return total
}

// ConsistentEntry verifica BalanceAfter = BalanceBefore + Quantity.
func ConsistentEntry(e *entity.LedgerEntry) bool {
	return e.BalanceBefore.Add(e.Quantity).Equal(e.BalanceAfter)
}
