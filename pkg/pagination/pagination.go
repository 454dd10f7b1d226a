package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// DefaultLimit is used when the request carries no limit.
const DefaultLimit = 10

// Params holds the result limit extracted from a request.
type Params struct {
	Limit int
}

// FromContext reads the "limit" query parameter, falling back to the FHIR
// "_count" parameter and then to DefaultLimit. Zero and negative limits are
// kept as given; callers treat them as "no results".
func FromContext(c echo.Context) (Params, error) {
	for _, name := range []string{"limit", "_count"} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%s must be an integer, got %q", name, raw)
		}
		return Params{Limit: limit}, nil
	}
	return Params{Limit: DefaultLimit}, nil
}

// Apply returns at most p.Limit leading items.
func Apply[T any](items []T, p Params) []T {
	if p.Limit <= 0 {
		return items[:0:0]
	}
	if p.Limit >= len(items) {
		return items
	}
	return items[:p.Limit]
}
