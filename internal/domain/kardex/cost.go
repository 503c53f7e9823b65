package kardex

import "github.com/shopspring/decimal"

// AverageCost calcula el costo promedio ponderado tras una entrada
// (servicio de dominio, función pura).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Caso degenerado: si el divisor queda en cero o negativo se toma el costo
// de la entrada tal cual.
func AverageCost(currentQty, currentAvg, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return incomingCost
	}
	num := currentQty.Mul(currentAvg).Add(incomingQty.Mul(incomingCost))
	return num.Div(sum)
}
