package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/thinkwise/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=-nome,id`. Only the fields of allowed are kept, renamed to their storage column.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		column, ok := allowed[field]
		if !ok {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: column, Ascending: !descending})
	}
}

// paramID reads an integer path parameter; anything else cannot match a resource.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(ctx echo.Context, name string, def int) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewFieldError(name, "must be an integer")
	}
	return n, nil
}

// queryYear reads `?anno=`, defaulting to the current year.
func queryYear(ctx echo.Context) (int, error) {
	return queryInt(ctx, "anno", time.Now().Year())
}
