package memory

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"comanda/internal/core"
	"comanda/internal/store"
)

// Store keeps the catalog, the comandas and the till movements in process
// memory.
type Store struct {
	mu            sync.Mutex
	nextID        int64
	nextSangriaID int64
	products      []core.Product
	combos        []core.Combo
	comandas      []core.Comanda
	checkouts     []core.Checkout
	sangrias      []core.Sangria
	now           func() time.Time
}

func New(products []core.Product, combos []core.Combo, comandas []core.Comanda) *Store {
	s := &Store{now: time.Now}
	for _, p := range products {
		s.nextID++
		p.ID = s.nextID
		s.products = append(s.products, p)
	}
	s.addCombos(combos)
	s.comandas = append(s.comandas, comandas...)
	return s
}

func (s *Store) addCombos(combos []core.Combo) {
	for _, c := range combos {
		c.ID = int64(len(s.combos) + 1)
		s.combos = append(s.combos, c)
	}
}

// NewFromFiles seeds the store from the plain-text files in base:
//
//	seed_products.txt  category|name|price|description
//	seed_combos.txt    name|product:qty:price;product:qty:price
//	seed_comandas.txt  number|mesa|cliente|status|item:qty:price;...
//
// Blank lines and lines starting with # are skipped. Malformed lines are
// logged and skipped. Missing product files fall back to a small default menu.
func NewFromFiles(base string) *Store {
	products := parseProducts(readLines(filepath.Join(base, "seed_products.txt")))
	if len(products) == 0 {
		products = defaultProducts()
	}
	s := New(products, nil, parseComandas(readLines(filepath.Join(base, "seed_comandas.txt"))))
	// Combo items point at the stored products, IDs included.
	s.addCombos(parseCombos(readLines(filepath.Join(base, "seed_combos.txt")), s.products))
	return s
}

// Create stores the product and returns it with its ID.
func (s *Store) Create(_ context.Context, p core.Product) (core.Product, error) {
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.products = append(s.products, p)
	return p, nil
}

// ListProducts returns a copy of the catalog ordered by category, then name.
func (s *Store) ListProducts(_ context.Context) ([]core.Product, error) {
	s.mu.Lock()
	out := append([]core.Product(nil), s.products...)
	s.mu.Unlock()

	rank := map[core.Category]int{}
	for i, c := range core.Categories() {
		rank[c] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return rank[out[i].Category] < rank[out[j].Category]
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Product{}, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

func (s *Store) ListCombos(_ context.Context) ([]core.Combo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Combo(nil), s.combos...), nil
}

func (s *Store) ListComandas(_ context.Context) ([]core.Comanda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Comanda(nil), s.comandas...), nil
}

func (s *Store) GetComanda(_ context.Context, number int) (core.Comanda, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comandas {
		if c.Number == number {
			return c, nil
		}
	}
	return core.Comanda{}, fmt.Errorf("comanda %d: %w", number, store.ErrNotFound)
}

// CloseComanda validates co against the stored comanda, marks it closed and
// records the checkout.
func (s *Store) CloseComanda(_ context.Context, co core.Checkout) (core.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.comandas {
		if c.Number != co.ComandaNumber {
			continue
		}
		if c.Status == core.StatusClosed {
			return core.Checkout{}, fmt.Errorf("comanda %d: %w", c.Number, core.ErrComandaClosed)
		}
		co.Subtotal = c.Total()
		if err := co.Validate(); err != nil {
			return core.Checkout{}, err
		}
		co.ClosedAt = s.now()
		s.comandas[i].Status = core.StatusClosed
		s.checkouts = append(s.checkouts, co)
		return co, nil
	}
	return core.Checkout{}, fmt.Errorf("comanda %d: %w", co.ComandaNumber, store.ErrNotFound)
}

func (s *Store) ListCheckouts(_ context.Context) ([]core.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Checkout(nil), s.checkouts...), nil
}

// CreateSangria records a withdrawal, stamping it with the current time
// unless one is given.
func (s *Store) CreateSangria(_ context.Context, sg core.Sangria) (core.Sangria, error) {
	if err := sg.Validate(); err != nil {
		return core.Sangria{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSangriaID++
	sg.ID = s.nextSangriaID
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = s.now()
	}
	s.sangrias = append(s.sangrias, sg)
	return sg, nil
}

// ListSangrias returns the withdrawals, newest first.
func (s *Store) ListSangrias(_ context.Context) ([]core.Sangria, error) {
	s.mu.Lock()
	out := append([]core.Sangria(nil), s.sangrias...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func defaultProducts() []core.Product {
	return []core.Product{
		{Name: "Café expresso", Category: core.Bebidas, Price: core.Money{Cents: 600}, ShowInMenu: true},
		{Name: "Cappuccino", Category: core.Bebidas, Price: core.Money{Cents: 1200}, ShowInMenu: true},
		{Name: "Pão de queijo", Category: core.Salgados, Price: core.Money{Cents: 700}, ShowInMenu: true},
		{Name: "Bolo de cenoura", Category: core.Doces, Price: core.Money{Cents: 1150}, ShowInMenu: true},
	}
}

func parseProducts(lines []string) []core.Product {
	var out []core.Product
	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			slog.Warn("Skipping malformed product seed line", "line", line)
			continue
		}
		cents, err := parsePrice(parts[2])
		if err != nil {
			slog.Warn("Skipping product seed line with invalid price", "line", line, "error", err)
			continue
		}
		p := core.Product{
			Category:   core.Category(strings.TrimSpace(parts[0])),
			Name:       strings.TrimSpace(parts[1]),
			Price:      core.Money{Cents: cents},
			ShowInMenu: true,
		}
		if len(parts) > 3 {
			p.Description = strings.TrimSpace(parts[3])
		}
		if err := p.Validate(); err != nil {
			slog.Warn("Skipping invalid product seed line", "line", line, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseCombos(lines []string, products []core.Product) []core.Combo {
	byName := map[string]core.Product{}
	for _, p := range products {
		byName[strings.ToLower(p.Name)] = p
	}
	var out []core.Combo
	for _, line := range lines {
		name, rest, ok := strings.Cut(line, "|")
		if !ok {
			slog.Warn("Skipping malformed combo seed line", "line", line)
			continue
		}
		combo := core.Combo{Name: strings.TrimSpace(name), ShowInMenu: true}
		items, err := parseItems(rest)
		if err != nil {
			slog.Warn("Skipping combo seed line", "line", line, "error", err)
			continue
		}
		for _, it := range items {
			p, found := byName[strings.ToLower(it.Name)]
			if !found {
				err = fmt.Errorf("unknown product %q", it.Name)
				break
			}
			combo.Items = append(combo.Items, core.ComboItem{Product: p, Quantity: it.Quantity, ComboPrice: it.UnitPrice})
		}
		if err == nil {
			err = combo.Validate()
		}
		if err != nil {
			slog.Warn("Skipping invalid combo seed line", "line", line, "error", err)
			continue
		}
		out = append(out, combo)
	}
	return out
}

func parseComandas(lines []string) []core.Comanda {
	var out []core.Comanda
	for _, line := range lines {
		parts := strings.Split(line, "|")
		if len(parts) != 5 {
			slog.Warn("Skipping malformed comanda seed line", "line", line)
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			slog.Warn("Skipping comanda seed line with invalid number", "line", line, "error", err)
			continue
		}
		items, err := parseItems(parts[4])
		if err != nil {
			slog.Warn("Skipping comanda seed line", "line", line, "error", err)
			continue
		}
		c := core.Comanda{
			Number:  number,
			Mesa:    strings.TrimSpace(parts[1]),
			Cliente: strings.TrimSpace(parts[2]),
			Status:  core.ComandaStatus(strings.TrimSpace(parts[3])),
			Items:   items,
		}
		if err := c.Validate(); err != nil {
			slog.Warn("Skipping invalid comanda seed line", "line", line, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

// parseItems reads "name:qty:price;name:qty:price".
func parseItems(s string) ([]core.ComandaItem, error) {
	var items []core.ComandaItem
	for _, raw := range strings.Split(s, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("item %q: want name:qty:price", raw)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("item %q quantity: %w", raw, err)
		}
		cents, err := parsePrice(fields[2])
		if err != nil {
			return nil, fmt.Errorf("item %q price: %w", raw, err)
		}
		items = append(items, core.ComandaItem{
			Name:      strings.TrimSpace(fields[0]),
			Quantity:  qty,
			UnitPrice: core.Money{Cents: cents},
		})
	}
	return items, nil
}

func parsePrice(s string) (int64, error) {
	return core.ParseDecimalToCents(strings.TrimSpace(s))
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
