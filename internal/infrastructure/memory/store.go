// Package memory implementa los repositorios del motor de inventario en memoria.
// Cada Run trabaja sobre una copia del estado y la publica solo si fn no devuelve error,
// así que las transacciones son atómicas y serializadas por un único mutex.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store almacén en memoria con semántica transaccional.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn con repos atados a una copia del estado; si fn falla la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(work.repos()); err != nil {
		return err
	}
	s.state = work
	return nil
}

type state struct {
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	locations  map[string]entity.Location
	stock      map[entity.StockKey]entity.Stock
	documents  map[string]entity.MovementDocument
	lines      map[string]entity.LineItem
	ledger     []entity.LedgerEntry
	sequences  map[string]int64
	users      map[string]entity.User
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		locations:  make(map[string]entity.Location),
		stock:      make(map[entity.StockKey]entity.Stock),
		documents:  make(map[string]entity.MovementDocument),
		lines:      make(map[string]entity.LineItem),
		sequences:  make(map[string]int64),
		users:      make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		locations:  make(map[string]entity.Location, len(s.locations)),
		stock:      make(map[entity.StockKey]entity.Stock, len(s.stock)),
		documents:  make(map[string]entity.MovementDocument, len(s.documents)),
		lines:      make(map[string]entity.LineItem, len(s.lines)),
		ledger:     make([]entity.LedgerEntry, len(s.ledger)),
		sequences:  make(map[string]int64, len(s.sequences)),
		users:      make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.documents {
		v.Lines = nil
		c.documents[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	copy(c.ledger, s.ledger)
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) repos() inventory.Repos {
	return inventory.Repos{
		Products:   &productRepo{st: s},
		Warehouses: &warehouseRepo{st: s},
		Locations:  &locationRepo{st: s},
		Stock:      &stockRepo{st: s},
		Documents:  &documentRepo{st: s},
		Ledger:     &ledgerRepo{st: s},
		Sequences:  &sequenceRepo{st: s},
		Users:      &userRepo{st: s},
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
