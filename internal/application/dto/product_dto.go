package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock no se fija aquí: entra por recepciones o ajustes.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitMeasure  string          `json:"unit_measure"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SKU, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.UnitMeasure, validation.Length(0, 20)),
		validation.Field(&r.ReorderLevel, notNegative, fitsNumeric),
	)
}

// ProductResponse salida de un producto con su estado de stock derivado.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitMeasure  string          `json:"unit_measure"`
	OnHand       decimal.Decimal `json:"on_hand"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
