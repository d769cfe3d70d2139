package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xraph/eventdesk/event"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(s)) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("listing: invalid direction %q", s)
}

// Defaults for a fresh query.
const (
	DefaultOrderBy   = "id"
	DefaultDirection = Descending
	DefaultPerPage   = 25
)

// Query holds the list axes.
type Query struct {
	Search         string
	Type           event.Type // empty means no filter
	OrderBy        string
	OrderDirection Direction
	Page           int // 1-based
	PerPage        int
}

// DefaultQuery returns the query a new controller starts with.
func DefaultQuery() Query {
	return Query{
		OrderBy:        DefaultOrderBy,
		OrderDirection: DefaultDirection,
		Page:           1,
		PerPage:        DefaultPerPage,
	}
}

// Encode renders the query string sent to GET /events. Keys appear in a
// fixed order; type and search are omitted when unset.
func (q Query) Encode() string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	add("page", strconv.Itoa(q.Page))
	add("perPage", strconv.Itoa(q.PerPage))
	add("orderDirection", string(q.OrderDirection))
	add("orderBy", q.OrderBy)
	if q.Type != "" {
		add("type", string(q.Type))
	}
	if q.Search != "" {
		add("search", q.Search)
	}
	return b.String()
}
