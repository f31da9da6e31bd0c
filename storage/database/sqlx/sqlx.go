// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
)

const uniqueViolation = "23505"

// trapNoRowsErr replaces sql.ErrNoRows with the repository's not found error.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// rollback is deferred after BeginTxx; it is a no-op once the transaction is committed.
func rollback(tx core.DBTransactor) {
	_ = tx.Rollback()
}

// where accumulates AND-ed conditions. `?` placeholders in a condition all bind the same argument.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders orderings whose fields are already mapped to columns, falling back to the id.
func orderBy(ordering []core.DBOrdering, alias string) string {
	parts := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		parts = append(parts, alias+ord.String())
	}
	parts = append(parts, alias+"id ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

func toStrings[T ~string](values []T) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func fromStrings[T ~string](values pq.StringArray) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, T(v))
	}
	return out
}
