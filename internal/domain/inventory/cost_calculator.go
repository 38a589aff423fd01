package inventory

import "github.com/shopspring/decimal"

// CostCalculator costo promedio ponderado móvil de un grupo de stock.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Un stock actual negativo o nulo no aporta al promedio.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.LessThan(decimal.Zero) {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// foldCost aplica una entrada de qty unidades a costo unitCost sobre un grupo con available unidades.
func foldCost(available int64, current decimal.Decimal, qty int64, unitCost decimal.Decimal) decimal.Decimal {
	return CostCalculator(decimal.NewFromInt(available), current, decimal.NewFromInt(qty), unitCost)
}
