// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Se usa en los tests de los casos de uso: mismo contrato que los
// adaptadores PostgreSQL, incluida la atomicidad del TxRunner (snapshot y
// restauración ante error) y la serialización de transacciones (mutex, el
// equivalente del bloqueo de fila).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/kardex-api/internal/application/kardex"
	"github.com/jhoicas/kardex-api/internal/application/orders"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// Ensure Store implements both transactional ports.
var _ kardex.TxRunner = (*Store)(nil)
var _ orders.TxRunner = (*Store)(nil)

// Store estado compartido de los repositorios en memoria.
// Los catálogos (tipos, productos, bodegas) se siembran antes de usar y no
// mutan después; el resto solo muta dentro de Run/RunOrder bajo el mutex.
type Store struct {
	mu sync.Mutex

	movements  map[string]*entity.StockMovement
	seq        map[string]int // orden de inserción, desempate del replay
	nextSeq    int
	balances   map[string]*entity.StockBalance
	types      map[string]*entity.MovementType
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	orders     map[string]*entity.Order
	sales      map[string]*entity.Sale
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		movements:  map[string]*entity.StockMovement{},
		seq:        map[string]int{},
		balances:   map[string]*entity.StockBalance{},
		types:      map[string]*entity.MovementType{},
		products:   map[string]*entity.Product{},
		warehouses: map[string]*entity.Warehouse{},
		orders:     map[string]*entity.Order{},
		sales:      map[string]*entity.Sale{},
	}
}

// Run ejecuta fn como una transacción: serializada por el mutex y revertida
// por snapshot si fn devuelve error.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balRepo repository.BalanceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&MovementRepo{s: s}, &BalanceRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunOrder igual que Run, con los repos que necesita el despacho de pedidos.
func (s *Store) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.MovementRepository,
	balRepo repository.BalanceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&OrderRepo{s: s}, &SaleRepo{s: s}, &MovementRepo{s: s}, &BalanceRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────
// Siembra y acceso directo para tests
// ──────────────────────────────────────────────────────────────────────────

// AddProduct siembra un producto.
func (s *Store) AddProduct(p *entity.Product) { s.products[p.ID] = p }

// AddWarehouse siembra una bodega.
func (s *Store) AddWarehouse(w *entity.Warehouse) { s.warehouses[w.ID] = w }

// AddMovementType siembra un tipo de movimiento.
func (s *Store) AddMovementType(t *entity.MovementType) { s.types[t.Code] = t }

// SeedDefaultTypes siembra el catálogo estándar: compras y ventas
// auto-aprobadas, ajustes con autorización, traslados auto-aprobados.
func (s *Store) SeedDefaultTypes() {
	for _, t := range []*entity.MovementType{
		{Code: entity.TypeCompraIn, Name: "Compra", Operation: entity.OperationEntrada, AffectsStock: true, RequiresDocument: true, Active: true},
		{Code: entity.TypeVentaOut, Name: "Venta", Operation: entity.OperationSalida, AffectsStock: true, RequiresDocument: true, Active: true},
		{Code: entity.TypeAjusteIn, Name: "Ajuste entrada", Operation: entity.OperationEntrada, AffectsStock: true, RequiresDocument: true, RequiresAuthorization: true, Active: true},
		{Code: entity.TypeAjusteOut, Name: "Ajuste salida", Operation: entity.OperationSalida, AffectsStock: true, RequiresDocument: true, RequiresAuthorization: true, Active: true},
		{Code: entity.TypeTrasladoOut, Name: "Traslado salida", Operation: entity.OperationTransferencia, AffectsStock: true, Active: true},
		{Code: entity.TypeTrasladoIn, Name: "Traslado entrada", Operation: entity.OperationTransferencia, AffectsStock: true, Active: true},
	} {
		s.AddMovementType(t)
	}
}

// Sales devuelve las ventas registradas (para aserciones).
func (s *Store) Sales() []*entity.Sale {
	out := make([]*entity.Sale, 0, len(s.sales))
	for _, v := range s.sales {
		out = append(out, cloneSale(v))
	}
	return out
}

// MovementsByType devuelve los asientos de un tipo (para aserciones).
func (s *Store) MovementsByType(code string) []*entity.StockMovement {
	var out []*entity.StockMovement
	for _, m := range s.movements {
		if m.TypeCode == code {
			out = append(out, cloneMovement(m))
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────
// Snapshot / restore (rollback)
// ──────────────────────────────────────────────────────────────────────────

type storeSnapshot struct {
	movements map[string]*entity.StockMovement
	seq       map[string]int
	nextSeq   int
	balances  map[string]*entity.StockBalance
	orders    map[string]*entity.Order
	sales     map[string]*entity.Sale
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		movements: make(map[string]*entity.StockMovement, len(s.movements)),
		seq:       make(map[string]int, len(s.seq)),
		nextSeq:   s.nextSeq,
		balances:  make(map[string]*entity.StockBalance, len(s.balances)),
		orders:    make(map[string]*entity.Order, len(s.orders)),
		sales:     make(map[string]*entity.Sale, len(s.sales)),
	}
	for k, v := range s.movements {
		snap.movements[k] = cloneMovement(v)
	}
	for k, v := range s.seq {
		snap.seq[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = cloneBalance(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.sales {
		snap.sales[k] = cloneSale(v)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.movements = snap.movements
	s.seq = snap.seq
	s.nextSeq = snap.nextSeq
	s.balances = snap.balances
	s.orders = snap.orders
	s.sales = snap.sales
}

func balanceKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func cloneBalance(b *entity.StockBalance) *entity.StockBalance {
	c := *b
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = make([]entity.OrderLine, len(o.Lines))
	copy(c.Lines, o.Lines)
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Lines = make([]entity.SaleLine, len(s.Lines))
	copy(c.Lines, s.Lines)
	return &c
}
