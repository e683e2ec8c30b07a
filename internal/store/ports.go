package store

import (
	"context"
	"errors"

	"comanda/internal/core"
)

var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	ProductWriter interface {
		// Create validates and stores p, returning it with its assigned ID.
		Create(ctx context.Context, p core.Product) (core.Product, error)
	}

	ProductReader interface {
		// ListProducts returns the catalog ordered by category, then name.
		ListProducts(ctx context.Context) ([]core.Product, error)
		GetProduct(ctx context.Context, id int64) (core.Product, error)
	}

	ComboReader interface {
		ListCombos(ctx context.Context) ([]core.Combo, error)
	}

	// ComandaReader lists every known comanda, closed ones included.
	ComandaReader interface {
		ListComandas(ctx context.Context) ([]core.Comanda, error)
		GetComanda(ctx context.Context, number int) (core.Comanda, error)
	}

	CheckoutWriter interface {
		// CloseComanda settles the comanda named by co. The subtotal is taken
		// from the stored comanda. Unknown comandas yield ErrNotFound and
		// settled ones core.ErrComandaClosed.
		CloseComanda(ctx context.Context, co core.Checkout) (core.Checkout, error)
	}

	CheckoutReader interface {
		ListCheckouts(ctx context.Context) ([]core.Checkout, error)
	}

	SangriaWriter interface {
		CreateSangria(ctx context.Context, s core.Sangria) (core.Sangria, error)
	}

	// SangriaReader lists withdrawals, newest first.
	SangriaReader interface {
		ListSangrias(ctx context.Context) ([]core.Sangria, error)
	}
)
