package core

import (
	"context"
	"strings"
)

// Transactor runs fn as one atomic unit against the record store.
// Repository calls made with the ctx passed to fn join the unit; any error rolls it back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrderings parses a `name,-created_at` style ordering param.
// Fields not in allowed are dropped.
func ParseOrderings(param string, allowed ...string) []DBOrdering {
	param = strings.TrimSpace(param)
	if param == "" {
		return nil
	}

	var orderings []DBOrdering
	for _, field := range strings.Split(param, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		for _, a := range allowed {
			if a == field {
				orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
				break
			}
		}
	}
	return orderings
}
