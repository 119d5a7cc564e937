package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNoEncontrado is returned when the requested row does not exist.
	ErrNoEncontrado = errors.New("registro no encontrado")
	// ErrDuplicado is returned when an insert hits a unique constraint.
	ErrDuplicado = errors.New("registro duplicado")
)

// traducir maps driver errors onto the repository sentinels; other errors pass through.
func traducir(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNoEncontrado
	case esDuplicado(err):
		return errors.Join(ErrDuplicado, err)
	}
	return err
}

func esDuplicado(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// conn returns tx when the caller runs inside a transaction, the base handle otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
