package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	dominv "github.com/jhoicas/stockmaster/internal/domain/inventory"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// Ledger registro append-only de cada cambio de stock. Es la fuente de verdad:
// stock.quantity y products.on_hand son cachés que se actualizan en la misma transacción que el asiento.
type Ledger struct {
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewLedger construye el ledger.
func NewLedger(metrics Metrics, log *logger.Logger) *Ledger {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Ledger{metrics: metrics, log: log.Component("ledger"), now: time.Now}
}

// Append bloquea la fila del producto y luego la de stock, calcula BalanceBefore/BalanceAfter,
// actualiza stock y on_hand y persiste el asiento. Un saldo resultante negativo se rechaza con
// InsufficientStockError. Los escritores siempre bloquean producto antes que stock; quien escribe
// varios asientos debe bloquear antes con LockProducts.
// No emite métricas: el llamador usa RecordWritten una vez confirmada la transacción.
func (l *Ledger) Append(ctx context.Context, r Repos, entry *entity.LedgerEntry) error {
	if entry.ProductID == "" || entry.LocationID == "" {
		return domain.NewValidationError("ledger_entry", "producto y ubicación requeridos")
	}
	if entry.Quantity.IsZero() {
		return domain.NewValidationError("quantity", "el asiento no puede ser cero")
	}

	product, err := r.Products.GetForUpdate(ctx, entry.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	stock, err := r.Stock.GetForUpdate(ctx, entry.ProductID, entry.LocationID)
	if err != nil {
		return err
	}
	before := stock.Quantity
	after := before.Add(entry.Quantity)
	if after.IsNegative() {
		return &domain.InsufficientStockError{Shortages: []domain.Shortage{{
			ProductID:  entry.ProductID,
			LocationID: entry.LocationID,
			Requested:  entry.Quantity.Neg(),
			Available:  before,
		}}}
	}

	now := l.now()
	stock.Quantity = after
	stock.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, stock); err != nil {
		return err
	}
	if err := r.Products.AddOnHand(ctx, entry.ProductID, entry.Quantity); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.BalanceBefore = before
	entry.BalanceAfter = after
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if !dominv.ConsistentEntry(entry) {
		return fmt.Errorf("asiento inconsistente para %s/%s", entry.ProductID, entry.LocationID)
	}
	return r.Ledger.Create(ctx, entry)
}

// LockProducts bloquea las filas de producto en orden de ID. Con varios asientos en una misma
// transacción, dos commits concurrentes toman los bloqueos en el mismo orden y no se interbloquean.
func (l *Ledger) LockProducts(ctx context.Context, r Repos, productIDs []string) error {
	ids := make([]string, 0, len(productIDs))
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		p, err := r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// RecordWritten cuenta asientos ya confirmados.
func (l *Ledger) RecordWritten(entries ...*entity.LedgerEntry) {
	for _, e := range entries {
		l.metrics.LedgerEntryWritten(string(e.Type))
	}
}

// BalanceAsOf saldo reconstruido desde el ledger hasta asOf (todas las ubicaciones si locationID está vacío).
func (l *Ledger) BalanceAsOf(ctx context.Context, r Repos, productID, locationID string, asOf time.Time) (decimal.Decimal, error) {
	return r.Ledger.Sum(ctx, productID, locationID, &asOf)
}

// Reconcile reproduce el ledger del producto y lo compara con products.on_hand y con cada fila de stock.
// Nunca corrige: devuelve todas las diferencias, vacío si cuadra.
// La fila del producto queda bloqueada, así que ningún commit sobre ese producto se intercala
// entre las lecturas y todas ven el mismo estado confirmado.
func (l *Ledger) Reconcile(ctx context.Context, r Repos, productID string) ([]*domain.ReconciliationMismatchError, error) {
	product, err := r.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var mismatches []*domain.ReconciliationMismatchError

	total, err := r.Ledger.Sum(ctx, productID, "", nil)
	if err != nil {
		return nil, err
	}
	if !total.Equal(product.OnHand) {
		mismatches = append(mismatches, &domain.ReconciliationMismatchError{
			ProductID: productID, Ledger: total, Cached: product.OnHand,
		})
	}

	byLocation, err := r.Ledger.SumByLocation(ctx, productID)
	if err != nil {
		return nil, err
	}
	stocks, err := r.Stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cached := make(map[string]decimal.Decimal, len(stocks))
	for _, s := range stocks {
		cached[s.LocationID] = s.Quantity
	}
	locations := make([]string, 0, len(byLocation)+len(cached))
	seen := make(map[string]bool)
	for loc := range byLocation {
		locations = append(locations, loc)
		seen[loc] = true
	}
	for loc := range cached {
		if !seen[loc] {
			locations = append(locations, loc)
		}
	}
	sort.Strings(locations)
	for _, loc := range locations {
		if !byLocation[loc].Equal(cached[loc]) {
			mismatches = append(mismatches, &domain.ReconciliationMismatchError{
				ProductID: productID, LocationID: loc, Ledger: byLocation[loc], Cached: cached[loc],
			})
		}
	}

	return mismatches, nil
}

// ReportMismatches registra y cuenta las diferencias de una conciliación ya terminada.
func (l *Ledger) ReportMismatches(mismatches []*domain.ReconciliationMismatchError) {
	for _, m := range mismatches {
		l.metrics.ReconciliationMismatch()
		l.log.Error().
			Str("product_id", m.ProductID).
			Str("location_id", m.LocationID).
			Str("ledger", m.Ledger.String()).
			Str("cached", m.Cached.String()).
			Msg("conciliación: el ledger no cuadra")
	}
}
