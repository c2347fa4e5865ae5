package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de asiento del ledger.
type TransactionType string

const (
	TransactionReceipt     TransactionType = "receipt"
	TransactionDelivery    TransactionType = "delivery"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionAdjustment  TransactionType = "adjustment"
)

// LedgerEntry asiento inmutable de un cambio de stock.
// BalanceBefore/BalanceAfter son el saldo de la fila (producto, ubicación): BalanceAfter = BalanceBefore + Quantity.
type LedgerEntry struct {
	ID                string
	ProductID         string
	LocationID        string
	Type              TransactionType
	Quantity          decimal.Decimal // con signo
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	DocumentID        string // vacío en ajustes
	DocumentReference string
	Reason            string
	CreatedBy         string
	CreatedAt         time.Time
}

// LedgerFilter filtros para el historial de movimientos.
type LedgerFilter struct {
	ProductID  string
	LocationID string
	DocumentID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
