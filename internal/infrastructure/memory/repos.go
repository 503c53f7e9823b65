package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Compile-time checks contra los puertos.
var _ repository.MovementRepository = (*MovementRepo)(nil)
var _ repository.BalanceRepository = (*BalanceRepo)(nil)
var _ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
var _ repository.OrderRepository = (*OrderRepo)(nil)
var _ repository.SaleRepository = (*SaleRepo)(nil)
var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// MovementRepo kardex en memoria.
type MovementRepo struct{ s *Store }

// NewMovementRepository repo de movimientos atado al store (para lecturas
// fuera de transacción).
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Create(m *entity.StockMovement) error {
	r.s.movements[m.ID] = cloneMovement(m)
	r.s.nextSeq++
	r.s.seq[m.ID] = r.s.nextSeq
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(m), nil
}

// GetForUpdate en memoria equivale a Get: el mutex del TxRunner ya
// serializa la transacción completa.
func (r *MovementRepo) GetForUpdate(id string) (*entity.StockMovement, error) {
	return r.GetByID(id)
}

func (r *MovementRepo) Update(m *entity.StockMovement) error {
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.movements[m.ID] = cloneMovement(m)
	return nil
}

func (r *MovementRepo) List(f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.TypeCode != "" && m.TypeCode != f.TypeCode {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.From != nil && m.MovementDate.Before(*f.From) {
			continue
		}
		if f.To != nil && m.MovementDate.After(*f.To) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MovementDate.Equal(out[j].MovementDate) {
			return out[i].MovementDate.After(out[j].MovementDate)
		}
		return r.s.seq[out[i].ID] > r.s.seq[out[j].ID]
	})
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MovementRepo) ListApproved(productID, warehouseID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID || m.WarehouseID != warehouseID || m.Status != entity.MovementAprobado {
			continue
		}
		if from != nil && m.MovementDate.Before(*from) {
			continue
		}
		if to != nil && m.MovementDate.After(*to) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MovementDate.Equal(out[j].MovementDate) {
			return out[i].MovementDate.Before(out[j].MovementDate)
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r *MovementRepo) SumApprovedBefore(productID, warehouseID string, before time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.ProductID != productID || m.WarehouseID != warehouseID || m.Status != entity.MovementAprobado {
			continue
		}
		if !m.MovementDate.Before(before) {
			continue
		}
		sum = sum.Add(m.Quantity)
	}
	return sum, nil
}

// BalanceRepo saldos en memoria.
type BalanceRepo struct{ s *Store }

// NewBalanceRepository repo de saldos atado al store.
func NewBalanceRepository(s *Store) *BalanceRepo { return &BalanceRepo{s: s} }

func (r *BalanceRepo) Get(productID, warehouseID string) (*entity.StockBalance, error) {
	b, ok := r.s.balances[balanceKey(productID, warehouseID)]
	if !ok {
		return &entity.StockBalance{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Quantity:        decimal.Zero,
			AverageUnitCost: decimal.Zero,
		}, nil
	}
	return cloneBalance(b), nil
}

// GetForUpdate materializa la fila en cero al primer uso, igual que el
// adaptador SQL; el mutex del TxRunner hace las veces del bloqueo de fila.
func (r *BalanceRepo) GetForUpdate(productID, warehouseID string) (*entity.StockBalance, error) {
	key := balanceKey(productID, warehouseID)
	if _, ok := r.s.balances[key]; !ok {
		r.s.balances[key] = &entity.StockBalance{
			ProductID:       productID,
			WarehouseID:     warehouseID,
			Quantity:        decimal.Zero,
			AverageUnitCost: decimal.Zero,
		}
	}
	return r.Get(productID, warehouseID)
}

func (r *BalanceRepo) Upsert(b *entity.StockBalance) error {
	r.s.balances[balanceKey(b.ProductID, b.WarehouseID)] = cloneBalance(b)
	return nil
}

// MovementTypeRepo catálogo de tipos en memoria (sembrado, inmutable).
type MovementTypeRepo struct{ s *Store }

// NewMovementTypeRepository repo del catálogo de tipos.
func NewMovementTypeRepository(s *Store) *MovementTypeRepo { return &MovementTypeRepo{s: s} }

func (r *MovementTypeRepo) GetByCode(code string) (*entity.MovementType, error) {
	t, ok := r.s.types[code]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *MovementTypeRepo) List(onlyActive bool) ([]*entity.MovementType, error) {
	var out []*entity.MovementType
	for _, t := range r.s.types {
		if onlyActive && !t.Active {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// OrderRepo pedidos en memoria.
type OrderRepo struct{ s *Store }

// NewOrderRepository repo de pedidos atado al store.
func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) Create(o *entity.Order) error {
	if _, ok := r.s.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

// Update aplica el chequeo optimista de versión, igual que el adaptador SQL.
func (r *OrderRepo) Update(o *entity.Order) error {
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != o.Version {
		return domain.ErrConflict
	}
	o.Version++
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepo) List(f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if f.ClientID != "" && o.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// SaleRepo ventas en memoria.
type SaleRepo struct{ s *Store }

// NewSaleRepository repo de ventas atado al store.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) Create(s *entity.Sale) error {
	for _, existing := range r.s.sales {
		if existing.OrderID == s.OrderID {
			return domain.ErrDuplicate
		}
	}
	r.s.sales[s.ID] = cloneSale(s)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

// ProductRepo catálogo de productos en memoria (sembrado, inmutable).
type ProductRepo struct{ s *Store }

// NewProductRepository repo del catálogo de productos.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// WarehouseRepo catálogo de bodegas en memoria (sembrado, inmutable).
type WarehouseRepo struct{ s *Store }

// NewWarehouseRepository repo del catálogo de bodegas.
func NewWarehouseRepository(s *Store) *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *WarehouseRepo) List() ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		c := *w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
