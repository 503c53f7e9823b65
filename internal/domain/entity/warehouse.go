package entity

import "time"

// Warehouse bodega o almacén. Dato de referencia de solo lectura.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
}
