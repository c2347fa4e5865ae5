package inventory

import (
	"context"

	"github.com/jhoicas/stockmaster/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Locations  repository.LocationRepository
	Stock      repository.StockRepository
	Documents  repository.DocumentRepository
	Ledger     repository.LedgerRepository
	Sequences  repository.SequenceRepository
	Users      repository.UserRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// Metrics observador de métricas del motor (Prometheus en producción).
type Metrics interface {
	TransitionObserved(kind, action, result string)
	StockShortage(kind string, lines int)
	LedgerEntryWritten(txType string)
	ReconciliationMismatch()
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) TransitionObserved(string, string, string) {}
func (NopMetrics) StockShortage(string, int)                 {}
func (NopMetrics) LedgerEntryWritten(string)                 {}
func (NopMetrics) ReconciliationMismatch()                   {}
