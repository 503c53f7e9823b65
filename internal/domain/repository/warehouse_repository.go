package repository

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// WarehouseRepository catálogo de bodegas (referencia de solo lectura).
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
	List() ([]*entity.Warehouse, error)
}
