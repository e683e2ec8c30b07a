package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"comanda/internal/core"
	applog "comanda/internal/log"
	"comanda/internal/search"
)

type comandaCard struct {
	Number      int
	Label       string
	Mesa        string
	Cliente     string
	Status      string
	StatusLabel string
	Items       []string
	Total       string
}

type filterButton struct {
	Value  string
	Label  string
	Active bool
}

type comandasView struct {
	Term     string
	Status   string
	Count    int
	Comandas []comandaCard
}

type dashboardView struct {
	List      comandasView
	Filters   []filterButton
	Open      int
	Preparing int
	Ready     int
	OpenTotal string
}

var statusLabels = map[core.ComandaStatus]string{
	core.StatusPreparing: "Em preparo",
	core.StatusReady:     "Pronta",
	core.StatusClosed:    "Fechada",
}

var filterLabels = map[search.StatusFilter]string{
	search.All:       "Todas",
	search.Preparing: "Em preparo",
	search.Ready:     "Prontas",
}

// handleDashboard renders the open comandas with the search box and filters.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	q := ParseSearchQuery(r.URL.Query())
	open, err := s.openComandas(r.Context())
	if err != nil {
		s.slogger.LogError(r.Context(), "List comandas failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar as comandas").Write(w)
		return
	}
	res := s.filterComandas(r.Context(), open, q)
	sum := core.Summarize(open)

	view := dashboardView{
		List:      newComandasView(res),
		Open:      sum.Open,
		Preparing: sum.Preparing,
		Ready:     sum.Ready,
		OpenTotal: sum.OpenTotal.Currency(),
	}
	for _, f := range search.Filters() {
		view.Filters = append(view.Filters, filterButton{Value: string(f), Label: filterLabels[f], Active: f == q.Status})
	}
	s.render(w, r, "dashboard_page", view)
}

// handleComandas renders the filtered list partial. The HX-Trigger header
// carries the result count for the counter outside the swapped region.
func (s *Server) handleComandas(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	q := ParseSearchQuery(r.URL.Query())
	open, err := s.openComandas(r.Context())
	if err != nil {
		s.slogger.LogError(r.Context(), "List comandas failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar as comandas").Write(w)
		return
	}
	res := s.filterComandas(r.Context(), open, q)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "comandas_list", newComandasView(res)); err != nil {
		s.slogger.LogError(r.Context(), "Template execution failed", err, applog.ComponentHTTP, applog.OpRender, nil)
		InternalServerError("Erro ao renderizar as comandas").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerComandasFiltered(res.Count()).
		BodyHTML(buf.String()).
		Write(w)
}

// openComandas lists every comanda that is not closed.
func (s *Server) openComandas(ctx context.Context) ([]core.Comanda, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	all, err := s.store.ListComandas(cctx)
	if err != nil {
		return nil, fmt.Errorf("list comandas: %w", err)
	}
	open := make([]core.Comanda, 0, len(all))
	for _, c := range all {
		if c.Status != core.StatusClosed {
			open = append(open, c)
		}
	}
	return open, nil
}

// filterComandas applies q to open, consulting the search cache first.
func (s *Server) filterComandas(ctx context.Context, open []core.Comanda, q search.Query) search.Result {
	key := q.Key()
	if s.searchCache != nil {
		if res, ok := s.searchCache.Get(key); ok {
			applog.FromContext(ctx).DebugContext(ctx, "Search cache hit", applog.FieldSearchTerm, q.Term, applog.FieldResults, res.Count())
			return res
		}
	}
	res := search.Filter(open, q)
	if s.searchCache != nil {
		s.searchCache.Set(key, res)
	}
	s.slogger.LogSearch(ctx, res.Query.Term, string(res.Query.Status), res.Count())
	return res
}

func newComandasView(res search.Result) comandasView {
	v := comandasView{
		Term:   res.Query.Term,
		Status: string(res.Query.Status),
		Count:  res.Count(),
	}
	for _, c := range res.Comandas {
		card := comandaCard{
			Number:      c.Number,
			Label:       c.Label(),
			Mesa:        c.Mesa,
			Cliente:     c.Cliente,
			Status:      string(c.Status),
			StatusLabel: statusLabels[c.Status],
			Total:       c.Total().Currency(),
		}
		for _, item := range c.Items {
			card.Items = append(card.Items, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}
		v.Comandas = append(v.Comandas, card)
	}
	return v
}
