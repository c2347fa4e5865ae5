package movement

import (
	"sort"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// CommitEntries asientos que escribe el commit de un documento, en orden de línea:
// entregas restan en origen, recepciones suman en destino y traslados hacen ambas cosas.
func CommitEntries(doc *entity.MovementDocument, userID string) []*entity.LedgerEntry {
	entries := make([]*entity.LedgerEntry, 0, len(doc.Lines)*2)
	newEntry := func(line entity.LineItem, loc string, typ entity.TransactionType, out bool) *entity.LedgerEntry {
		qty := line.Quantity
		if out {
			qty = qty.Neg()
		}
		return &entity.LedgerEntry{
			ProductID:         line.ProductID,
			LocationID:        loc,
			Type:              typ,
			Quantity:          qty,
			DocumentID:        doc.ID,
			DocumentReference: doc.Reference,
			CreatedBy:         userID,
		}
	}
	for _, line := range doc.Lines {
		switch doc.Kind {
		case entity.KindDelivery:
			entries = append(entries, newEntry(line, doc.SourceLocationID, entity.TransactionDelivery, true))
		case entity.KindReceipt:
			entries = append(entries, newEntry(line, doc.DestinationLocationID, entity.TransactionReceipt, false))
		case entity.KindTransfer:
			entries = append(entries,
				newEntry(line, doc.SourceLocationID, entity.TransactionTransferOut, true),
				newEntry(line, doc.DestinationLocationID, entity.TransactionTransferIn, false),
			)
		}
	}
	return entries
}

// LockOrder claves de stock distintas que tocan los asientos, ordenadas por producto y ubicación.
func LockOrder(entries []*entity.LedgerEntry) []entity.StockKey {
	seen := make(map[entity.StockKey]bool, len(entries))
	keys := make([]entity.StockKey, 0, len(entries))
	for _, e := range entries {
		k := entity.StockKey{ProductID: e.ProductID, LocationID: e.LocationID}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
