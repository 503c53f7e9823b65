package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ProductResponse producto del catálogo. Sin stock: el stock se consulta
// por bodega en /api/kardex/stock.
type ProductResponse struct {
	ID     string          `json:"id"`
	SKU    string          `json:"sku"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Active bool            `json:"active"`
}

// FromProduct mapea la entidad a su representación JSON.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.Price, Active: p.Active}
}

// WarehouseResponse bodega del catálogo.
type WarehouseResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Active  bool   `json:"active"`
}

// FromWarehouse mapea la entidad a su representación JSON.
func FromWarehouse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{ID: w.ID, Name: w.Name, Address: w.Address, Active: w.Active}
}

// MovementTypeResponse tipo de movimiento del catálogo cerrado.
type MovementTypeResponse struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	Description           string `json:"description,omitempty"`
	Operation             string `json:"operation"`
	AffectsStock          bool   `json:"affects_stock"`
	RequiresDocument      bool   `json:"requires_document"`
	RequiresAuthorization bool   `json:"requires_authorization"`
	Active                bool   `json:"active"`
}

// FromMovementType mapea la entidad a su representación JSON.
func FromMovementType(t *entity.MovementType) MovementTypeResponse {
	return MovementTypeResponse{
		Code:                  t.Code,
		Name:                  t.Name,
		Description:           t.Description,
		Operation:             t.Operation,
		AffectsStock:          t.AffectsStock,
		RequiresDocument:      t.RequiresDocument,
		RequiresAuthorization: t.RequiresAuthorization,
		Active:                t.Active,
	}
}

// StockBalanceResponse saldo vivo de un producto en una bodega.
type StockBalanceResponse struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// FromBalance mapea la entidad a su representación JSON.
func FromBalance(b *entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		ProductID:       b.ProductID,
		WarehouseID:     b.WarehouseID,
		Quantity:        b.Quantity,
		AverageUnitCost: b.AverageUnitCost,
		UpdatedAt:       b.UpdatedAt,
	}
}
