package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// ProductUseCase catálogo de productos. On-hand no se edita aquí: solo cambia vía ledger.
type ProductUseCase struct {
	tx inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{tx: tx}
}

// Create crea un nuevo producto con on-hand en 0. El SKU es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unit"
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		UnitMeasure:  in.UnitMeasure,
		OnHand:       decimal.Zero,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		existing, err := r.Products.GetBySKU(ctx, in.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return r.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var list []*entity.Product
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Products.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListLowStock productos con on-hand en o por debajo de su punto de reorden.
func (uc *ProductUseCase) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	var list []*entity.Product
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Products.ListLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		UnitMeasure:  p.UnitMeasure,
		OnHand:       p.OnHand,
		ReorderLevel: p.ReorderLevel,
		Status:       p.Status(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
