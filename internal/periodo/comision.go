package periodo

import "github.com/shopspring/decimal"

// DecimalesMoneda is the display precision of amounts; all derived money is rounded to it.
const DecimalesMoneda = 2

var cien = decimal.NewFromInt(100)

// Redondear rounds to currency precision, half away from zero.
func Redondear(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalesMoneda)
}

// Porcentaje returns monto * pct / 100 rounded to currency precision.
func Porcentaje(monto, pct decimal.Decimal) decimal.Decimal {
	return Redondear(monto.Mul(pct).Div(cien))
}

// EsMontoFijo reports whether a commission setting is a flat amount per credit.
// There is no explicit mode flag: values above 100 are amounts, the rest percentages.
func EsMontoFijo(valor decimal.Decimal) bool {
	return valor.GreaterThan(cien)
}

// Comision is the commission earned on one credit of the given amount.
func Comision(montoCredito, valor decimal.Decimal) decimal.Decimal {
	if EsMontoFijo(valor) {
		return Redondear(valor)
	}
	return Porcentaje(montoCredito, valor)
}
