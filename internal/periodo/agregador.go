package periodo

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Entrada is the slice of a payment the aggregator looks at.
// A zero Fecha means the date was missing or unparseable.
type Entrada struct {
	Fecha time.Time
	Monto decimal.Decimal
}

// Bucket accumulates the payments of one period.
type Bucket struct {
	Clave         string
	Modo          Modo
	CantidadPagos int
	TotalCobrado  decimal.Decimal
	Comision      decimal.Decimal
}

// Agregar groups entradas into period buckets sorted by key, most recent first.
// Entries without a date are skipped. Comision per bucket is
// TotalCobrado * tasaPct / 100 rounded to currency precision.
func Agregar(entradas []Entrada, modo Modo, tasaPct decimal.Decimal, loc *time.Location) []Bucket {
	byClave := make(map[string]*Bucket)
	for _, e := range entradas {
		if e.Fecha.IsZero() {
			continue
		}
		clave, err := ClaveBucket(e.Fecha, modo, loc)
		if err != nil {
			continue
		}
		b, ok := byClave[clave]
		if !ok {
			b = &Bucket{Clave: clave, Modo: modo, TotalCobrado: decimal.Zero}
			byClave[clave] = b
		}
		b.CantidadPagos++
		b.TotalCobrado = b.TotalCobrado.Add(e.Monto)
	}

	buckets := make([]Bucket, 0, len(byClave))
	for _, b := range byClave {
		b.Comision = Porcentaje(b.TotalCobrado, tasaPct)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Clave > buckets[j].Clave })
	return buckets
}

// BuscarBucket returns the bucket with the given key, or an empty one.
func BuscarBucket(buckets []Bucket, clave string) Bucket {
	for _, b := range buckets {
		if b.Clave == clave {
			return b
		}
	}
	return Bucket{Clave: clave, TotalCobrado: decimal.Zero, Comision: decimal.Zero}
}
