package service

import (
	"time"

	"cobranzas/internal/periodo"
)

// Reloj supplies "now" and the business time zone. Services never call time.Now directly.
type Reloj struct {
	Now func() time.Time
	Loc *time.Location
}

func NewReloj(loc *time.Location) Reloj {
	if loc == nil {
		loc = time.Local
	}
	return Reloj{Now: time.Now, Loc: loc}
}

func (r Reloj) Ahora() time.Time {
	if r.Now == nil {
		return time.Now().In(r.loc())
	}
	return r.Now().In(r.loc())
}

// Hoy is the current local calendar day, YYYY-MM-DD.
func (r Reloj) Hoy() string {
	return periodo.ClaveDia(r.Ahora(), r.loc())
}

func (r Reloj) loc() *time.Location {
	if r.Loc == nil {
		return time.Local
	}
	return r.Loc
}
