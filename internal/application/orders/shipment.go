package orders

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// ProcessShipment despacha un pedido PAGADO: crea la venta que espeja las
// líneas a sus precios congelados y asienta una salida VENTA_OUT por línea,
// todo en una sola transacción. Si alguna línea no tiene stock suficiente la
// transacción revierte completa y el pedido sigue PAGADO.
//
// Idempotente ante reintentos: si el pedido ya tiene venta asociada se
// devuelve tal cual, sin asientos duplicados.
func (uc *UseCase) ProcessShipment(ctx context.Context, staffID, orderID string) (*entity.Order, error) {
	ventaType, err := uc.typeRepo.GetByCode(entity.TypeVentaOut)
	if err != nil {
		return nil, err
	}
	if ventaType == nil || !ventaType.Active {
		return nil, domain.ErrUnknownMovementType
	}

	var result *entity.Order
	var sale *entity.Sale

	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.ResultingSaleID != nil {
			// Reintento: el despacho ya ocurrió, devolver el resultado previo.
			result = o
			return nil
		}
		if o.Status != entity.OrderPagado {
			return domain.ErrInvalidState
		}

		now := time.Now()
		sale = buildSale(o, staffID, now)
		if err := saleRepo.Create(sale); err != nil {
			return err
		}

		// Bloqueo de saldos en orden estable de producto para no
		// interbloquearse con otro despacho o compra multi-producto.
		lines := make([]entity.OrderLine, len(o.Lines))
		copy(lines, o.Lines)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		for _, line := range lines {
			_, err := uc.poster.PostSaleOutInTx(
				movRepo, balRepo, ventaType,
				line.ProductID, o.WarehouseID, staffID,
				line.Quantity, sale.SaleNumber, sale.ID, now,
			)
			if err != nil {
				return err
			}
		}

		o.Status = entity.OrderProcesado
		o.ShipmentDate = &now
		o.ResultingSaleID = &sale.ID
		o.UpdatedAt = now
		if err := orderRepo.Update(o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sale != nil {
		log.Info().
			Str("order_id", result.ID).
			Str("sale_id", sale.ID).
			Str("sale_number", sale.SaleNumber).
			Msg("pedido despachado")
	}
	return result, nil
}

// buildSale materializa la venta a partir del pedido, a los precios
// congelados en las líneas.
func buildSale(o *entity.Order, staffID string, now time.Time) *entity.Sale {
	saleID := uuid.New().String()
	sale := &entity.Sale{
		ID:         saleID,
		SaleNumber: documentNumber("VEN"),
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		CreatedBy:  staffID,
		Subtotal:   o.Subtotal,
		Discount:   o.Discount,
		Tax:        o.Tax,
		Total:      o.Total,
		SaleDate:   now,
	}
	for _, l := range o.Lines {
		sale.Lines = append(sale.Lines, entity.SaleLine{
			ID:           uuid.New().String(),
			SaleID:       saleID,
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Discount:     l.Discount,
			LineSubtotal: l.LineSubtotal,
		})
	}
	return sale
}
