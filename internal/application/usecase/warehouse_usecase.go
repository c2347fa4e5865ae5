package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// WarehouseUseCase alta y consulta de bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	tx inventory.TxRunner
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(tx inventory.TxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{tx: tx}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(in.Code),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		return r.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID. Devuelve (nil, nil) si no existe.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	var list []*entity.Warehouse
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Warehouses.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CreateLocation crea una ubicación dentro de la bodega.
func (uc *WarehouseUseCase) CreateLocation(ctx context.Context, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	location := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: warehouseID,
		Name:        in.Name,
		CreatedAt:   time.Now(),
	}
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		w, err := r.Warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		return r.Locations.Create(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// ListLocations ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, warehouseID string) ([]dto.LocationResponse, error) {
	var list []*entity.Location
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		w, err := r.Warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		list, err = r.Locations.ListByWarehouse(ctx, warehouseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return items, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Name:        l.Name,
		CreatedAt:   l.CreatedAt,
	}
}
