package postgres

import (
	"errors"
	"strings"

	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

// observer wraps store calls with the prometheus DB metrics when configured.
type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error, ignore ...error) error {
	if o.prom != nil {
		return o.prom.ObserveDB(op, fn, ignore...)
	}
	return fn()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q literally anywhere.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
