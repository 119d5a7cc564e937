// Package periodo holds the calendar rules of the settlement engine: local calendar
// days, Sunday-aligned weeks, bucket keys per aggregation mode and commission math.
// Everything here is pure: callers pass the reference date and location explicitly.
package periodo

import (
	"fmt"
	"time"
)

// FormatoFecha is the calendar-date layout used for day keys and week keys.
const FormatoFecha = "2006-01-02"

// Modo is the aggregation granularity of the payment summary.
type Modo string

const (
	ModoSemanal   Modo = "weekly"
	ModoQuincenal Modo = "biweekly"
	ModoMensual   Modo = "monthly"
)

// ParseModo accepts the wire names ("weekly", "biweekly", "monthly") and their Spanish aliases.
func ParseModo(s string) (Modo, error) {
	switch s {
	case "weekly", "semanal":
		return ModoSemanal, nil
	case "biweekly", "quincenal":
		return ModoQuincenal, nil
	case "monthly", "mensual":
		return ModoMensual, nil
	}
	return "", fmt.Errorf("modo de agrupacion desconocido: %q", s)
}

// InicioDelDia returns midnight of t's calendar day in loc.
func InicioDelDia(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// ClaveDia is the YYYY-MM-DD key of t's calendar day in loc.
func ClaveDia(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(FormatoFecha)
}

// Semana is a Sunday..Saturday calendar week.
type Semana struct {
	Inicio time.Time // Sunday 00:00 local
	Fin    time.Time // Saturday 00:00 local
}

// SemanaDe returns the week containing ref in loc.
func SemanaDe(ref time.Time, loc *time.Location) Semana {
	dia := InicioDelDia(ref, loc)
	inicio := dia.AddDate(0, 0, -int(dia.Weekday()))
	return Semana{Inicio: inicio, Fin: inicio.AddDate(0, 0, 6)}
}

// Hasta is the exclusive upper bound of the week (next Sunday 00:00).
func (s Semana) Hasta() time.Time { return s.Inicio.AddDate(0, 0, 7) }

// Clave is the week key: its Sunday as YYYY-MM-DD.
func (s Semana) Clave() string { return s.Inicio.Format(FormatoFecha) }

// ClaveFin is the Saturday of the week as YYYY-MM-DD.
func (s Semana) ClaveFin() string { return s.Fin.Format(FormatoFecha) }

// Contiene reports whether t falls in [Inicio, Hasta).
func (s Semana) Contiene(t time.Time) bool {
	return !t.Before(s.Inicio) && t.Before(s.Hasta())
}

// Desplazar moves the week n weeks forward (negative = backwards).
func (s Semana) Desplazar(n int) Semana {
	inicio := s.Inicio.AddDate(0, 0, 7*n)
	return Semana{Inicio: inicio, Fin: inicio.AddDate(0, 0, 6)}
}

// ClaveBucket maps a date to its bucket key:
//
//	monthly:  2025-10
//	biweekly: 2025-10-1Q (day <= 15) | 2025-10-2Q
//	weekly:   date of the week's Sunday, 2025-10-12
func ClaveBucket(fecha time.Time, modo Modo, loc *time.Location) (string, error) {
	f := fecha.In(loc)
	switch modo {
	case ModoMensual:
		return fmt.Sprintf("%04d-%02d", f.Year(), int(f.Month())), nil
	case ModoQuincenal:
		q := "1Q"
		if f.Day() > 15 {
			q = "2Q"
		}
		return fmt.Sprintf("%04d-%02d-%s", f.Year(), int(f.Month()), q), nil
	case ModoSemanal:
		return SemanaDe(f, loc).Clave(), nil
	}
	return "", fmt.Errorf("modo de agrupacion desconocido: %q", modo)
}

var formatosFecha = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	FormatoFecha,
}

// ParseFecha parses a payment date as sent by clients. Dates without offset are
// read in loc. ok is false for empty or unparseable input.
func ParseFecha(s string, loc *time.Location) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range formatosFecha {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
