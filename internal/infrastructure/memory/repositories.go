package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	dominv "github.com/jhoicas/stockmaster/internal/domain/inventory"
	"github.com/jhoicas/stockmaster/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*productRepo)(nil)
	_ repository.WarehouseRepository = (*warehouseRepo)(nil)
	_ repository.LocationRepository  = (*locationRepo)(nil)
	_ repository.StockRepository     = (*stockRepo)(nil)
	_ repository.DocumentRepository  = (*documentRepo)(nil)
	_ repository.LedgerRepository    = (*ledgerRepo)(nil)
	_ repository.SequenceRepository  = (*sequenceRepo)(nil)
	_ repository.UserRepository      = (*userRepo)(nil)
)

// --- productos ---

type productRepo struct{ st *state }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.st.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.st.products {
		if p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) AddOnHand(_ context.Context, id string, delta decimal.Decimal) error {
	p, ok := r.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.OnHand = p.OnHand.Add(delta)
	p.UpdatedAt = time.Now()
	r.st.products[id] = p
	return nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	return page(r.sorted(func(*entity.Product) bool { return true }), limit, offset), nil
}

func (r *productRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	return r.sorted(func(p *entity.Product) bool { return p.OnHand.LessThanOrEqual(p.ReorderLevel) }), nil
}

func (r *productRepo) sorted(keep func(*entity.Product) bool) []*entity.Product {
	out := make([]*entity.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		p := p
		if keep(&p) {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// --- bodegas y ubicaciones ---

type warehouseRepo struct{ st *state }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	for _, existing := range r.st.warehouses {
		if existing.ID == w.ID || existing.Code == w.Code {
			return domain.ErrDuplicate
		}
	}
	r.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.st.warehouses))
	for _, w := range r.st.warehouses {
		w := w
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

type locationRepo struct{ st *state }

func (r *locationRepo) Create(_ context.Context, l *entity.Location) error {
	if _, ok := r.st.locations[l.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.st.warehouses[l.WarehouseID]; !ok {
		return domain.ErrNotFound
	}
	r.st.locations[l.ID] = *l
	return nil
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := r.st.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *locationRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.st.locations {
		if l.WarehouseID == warehouseID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- stock ---

type stockRepo struct{ st *state }

func (r *stockRepo) Get(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	k := entity.StockKey{ProductID: productID, LocationID: locationID}
	if s, ok := r.st.stock[k]; ok {
		return &s, nil
	}
	return &entity.Stock{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, productID, locationID string) (*entity.Stock, error) {
	if _, ok := r.st.products[productID]; !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := r.st.locations[locationID]; !ok {
		return nil, domain.ErrNotFound
	}
	k := entity.StockKey{ProductID: productID, LocationID: locationID}
	s, ok := r.st.stock[k]
	if !ok {
		s = entity.Stock{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		r.st.stock[k] = s
	}
	return &s, nil
}

func (r *stockRepo) Upsert(_ context.Context, s *entity.Stock) error {
	r.st.stock[entity.StockKey{ProductID: s.ProductID, LocationID: s.LocationID}] = *s
	return nil
}

func (r *stockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Stock, error) {
	out := r.filter(func(s entity.Stock) bool { return s.ProductID == productID })
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func (r *stockRepo) ListByLocation(_ context.Context, locationID string) ([]*entity.Stock, error) {
	out := r.filter(func(s entity.Stock) bool { return s.LocationID == locationID })
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *stockRepo) filter(keep func(entity.Stock) bool) []*entity.Stock {
	var out []*entity.Stock
	for _, s := range r.st.stock {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	return out
}

// --- documentos ---

type documentRepo struct{ st *state }

func (r *documentRepo) Create(_ context.Context, d *entity.MovementDocument) error {
	if _, ok := r.st.documents[d.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.documents {
		if existing.Reference == d.Reference {
			return domain.ErrDuplicate
		}
	}
	header := *d
	header.Lines = nil
	r.st.documents[d.ID] = header
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entity.MovementDocument, error) {
	d, ok := r.st.documents[id]
	if !ok {
		return nil, nil
	}
	d.Lines = r.linesOf(id)
	return &d, nil
}

func (r *documentRepo) GetForUpdate(ctx context.Context, id string) (*entity.MovementDocument, error) {
	return r.GetByID(ctx, id)
}

func (r *documentRepo) Update(_ context.Context, d *entity.MovementDocument) error {
	if _, ok := r.st.documents[d.ID]; !ok {
		return domain.ErrNotFound
	}
	header := *d
	header.Lines = nil
	r.st.documents[d.ID] = header
	return nil
}

func (r *documentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.documents, id)
	for lid, l := range r.st.lines {
		if l.DocumentID == id {
			delete(r.st.lines, lid)
		}
	}
	return nil
}

func (r *documentRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.MovementDocument, error) {
	var out []*entity.MovementDocument
	for _, d := range r.st.documents {
		if f.Kind != "" && d.Kind != f.Kind {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		d := d
		d.Lines = r.linesOf(d.ID)
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Reference > out[j].Reference
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *documentRepo) AddLine(_ context.Context, l *entity.LineItem) error {
	if _, ok := r.st.documents[l.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.st.products[l.ProductID]; !ok {
		return domain.ErrNotFound
	}
	r.st.lines[l.ID] = *l
	return nil
}

func (r *documentRepo) DeleteLine(_ context.Context, documentID, lineID string) error {
	l, ok := r.st.lines[lineID]
	if !ok || l.DocumentID != documentID {
		return domain.ErrNotFound
	}
	delete(r.st.lines, lineID)
	return nil
}

func (r *documentRepo) SetReserved(_ context.Context, lineID string, quantity decimal.Decimal) error {
	l, ok := r.st.lines[lineID]
	if !ok {
		return domain.ErrNotFound
	}
	l.ReservedQuantity = quantity
	r.st.lines[lineID] = l
	return nil
}

func (r *documentRepo) ReservedQuantity(_ context.Context, productID, locationID, excludeDocumentID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range r.st.lines {
		if l.ProductID != productID || l.DocumentID == excludeDocumentID {
			continue
		}
		d, ok := r.st.documents[l.DocumentID]
		if !ok || !d.Status.IsActive() {
			continue
		}
		if locationID != "" && d.SourceLocationID != locationID {
			continue
		}
		total = total.Add(l.ReservedQuantity)
	}
	return total, nil
}

func (r *documentRepo) linesOf(documentID string) []entity.LineItem {
	var out []entity.LineItem
	for _, l := range r.st.lines {
		if l.DocumentID == documentID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// --- ledger ---

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	for _, existing := range r.st.ledger {
		if existing.ID == e.ID {
			return domain.ErrDuplicate
		}
	}
	r.st.ledger = append(r.st.ledger, *e)
	return nil
}

func (r *ledgerRepo) List(_ context.Context, f entity.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.st.ledger {
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.LocationID != "" && e.LocationID != f.LocationID {
			continue
		}
		if f.DocumentID != "" && e.DocumentID != f.DocumentID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *ledgerRepo) Sum(_ context.Context, productID, locationID string, asOf *time.Time) (decimal.Decimal, error) {
	var entries []*entity.LedgerEntry
	for i := range r.st.ledger {
		e := &r.st.ledger[i]
		if e.ProductID != productID || (locationID != "" && e.LocationID != locationID) {
			continue
		}
		entries = append(entries, e)
	}
	if asOf == nil {
		return dominv.Balance(entries), nil
	}
	return dominv.BalanceAsOf(entries, *asOf), nil
}

func (r *ledgerRepo) SumByLocation(_ context.Context, productID string) (map[string]decimal.Decimal, error) {
	grouped := make(map[string][]*entity.LedgerEntry)
	for i := range r.st.ledger {
		e := &r.st.ledger[i]
		if e.ProductID == productID {
			grouped[e.LocationID] = append(grouped[e.LocationID], e)
		}
	}
	out := make(map[string]decimal.Decimal, len(grouped))
	for loc, entries := range grouped {
		out[loc] = dominv.Balance(entries)
	}
	return out, nil
}

// --- secuencias ---

type sequenceRepo struct{ st *state }

func (r *sequenceRepo) Next(_ context.Context, name string) (int64, error) {
	r.st.sequences[name]++
	return r.st.sequences[name], nil
}

// --- usuarios ---

type userRepo struct{ st *state }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.st.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	r.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Count(context.Context) (int, error) {
	return len(r.st.users), nil
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}
