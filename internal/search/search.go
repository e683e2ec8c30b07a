// Package search filters comandas for the dashboard.
package search

import (
	"strconv"
	"strings"

	"comanda/internal/core"
)

// StatusFilter selects comandas by kitchen status.
type StatusFilter string

const (
	All       StatusFilter = "all"
	Preparing StatusFilter = "preparing"
	Ready     StatusFilter = "ready"
)

// Filters lists the dashboard filter buttons in display order.
func Filters() []StatusFilter {
	return []StatusFilter{All, Preparing, Ready}
}

// ParseStatus maps a query value onto a filter; unknown values mean All.
func ParseStatus(s string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case Preparing:
		return Preparing
	case Ready:
		return Ready
	}
	return All
}

// Query is what the dashboard search box and filter buttons send.
type Query struct {
	Term   string
	Status StatusFilter
}

// Normalized trims and lower-cases the term and resolves the status.
func (q Query) Normalized() Query {
	return Query{
		Term:   strings.ToLower(strings.TrimSpace(q.Term)),
		Status: ParseStatus(string(q.Status)),
	}
}

// Key identifies the query for caching.
func (q Query) Key() string {
	n := q.Normalized()
	return string(n.Status) + "|" + n.Term
}

// Result holds the visible comandas in input order.
type Result struct {
	Query    Query
	Comandas []core.Comanda
}

// Count is the number of visible comandas.
func (r Result) Count() int {
	return len(r.Comandas)
}

// Filter returns the comandas matching q. An empty term matches every comanda;
// otherwise the term must appear in the number, table, customer or item names.
func Filter(comandas []core.Comanda, q Query) Result {
	q = q.Normalized()
	out := make([]core.Comanda, 0, len(comandas))
	for _, c := range comandas {
		if matchesStatus(c, q.Status) && Matches(c, q.Term) {
			out = append(out, c)
		}
	}
	return Result{Query: q, Comandas: out}
}

// Matches reports whether an already lower-cased term appears in c's text.
func Matches(c core.Comanda, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(haystack(c), term)
}

func haystack(c core.Comanda) string {
	return strings.ToLower(strings.Join([]string{
		strconv.Itoa(c.Number),
		c.Mesa,
		c.Cliente,
		c.ItemNames(),
	}, " "))
}

func matchesStatus(c core.Comanda, s StatusFilter) bool {
	switch s {
	case Preparing:
		return c.Status == core.StatusPreparing
	case Ready:
		return c.Status == core.StatusReady
	}
	return true
}
