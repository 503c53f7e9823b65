package entity

// Clases de operación de un tipo de movimiento.
const (
	OperationEntrada       = "ENTRADA"       // incrementa stock
	OperationSalida        = "SALIDA"        // decrementa stock
	OperationTransferencia = "TRANSFERENCIA" // mueve stock entre bodegas (dos asientos)
)

// Códigos del catálogo sembrado por migración. El catálogo es cerrado:
// los movimientos solo referencian códigos existentes y activos.
const (
	TypeCompraIn    = "COMPRA_IN"
	TypeVentaOut    = "VENTA_OUT"
	TypeAjusteIn    = "AJUSTE_IN"
	TypeAjusteOut   = "AJUSTE_OUT"
	TypeTrasladoOut = "TRASLADO_OUT"
	TypeTrasladoIn  = "TRASLADO_IN"
)

// MovementType define un tipo de movimiento del kardex.
// Un tipo puede existir solo para auditoría (AffectsStock=false) y un tipo
// con RequiresAuthorization=true queda PENDIENTE hasta aprobación manual.
type MovementType struct {
	Code                  string
	Name                  string
	Description           string
	Operation             string // ENTRADA | SALIDA | TRANSFERENCIA
	AffectsStock          bool
	RequiresDocument      bool
	RequiresAuthorization bool
	Active                bool
}

// IsInbound indica si el tipo incrementa stock en la bodega del movimiento.
// Los traslados comparten clase TRANSFERENCIA; el asiento destino es entrada.
func (t *MovementType) IsInbound() bool {
	return t.Operation == OperationEntrada || t.Code == TypeTrasladoIn
}

// IsOutbound indica si el tipo decrementa stock en la bodega del movimiento.
func (t *MovementType) IsOutbound() bool {
	return t.Operation == OperationSalida || t.Code == TypeTrasladoOut
}
