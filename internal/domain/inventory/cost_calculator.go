package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost calcula el costo promedio ponderado tras una entrada (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(currentQty int, currentCost decimal.Decimal, inQty int, inCost decimal.Decimal) decimal.Decimal {
	cur := decimal.NewFromInt(int64(currentQty))
	in := decimal.NewFromInt(int64(inQty))
	sum := cur.Add(in)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := cur.Mul(currentCost).Add(in.Mul(inCost))
	return num.Div(sum)
}
