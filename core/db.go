package core

import "strings"

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

// CleanOrderings drops the orderings whose field is not in `allowed`.
func CleanOrderings(ords []DBOrdering, allowed ...string) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		for _, fld := range allowed {
			if strings.EqualFold(ord.Field, fld) {
				ord.Field = fld
				cleaned = append(cleaned, ord)
				break
			}
		}
	}
	return cleaned
}

// OrderByClause renders `ords` as an SQL ORDER BY clause, or `fallback` if there are none.
func OrderByClause(ords []DBOrdering, fallback string) string {
	if len(ords) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(ords))
	for _, ord := range ords {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
