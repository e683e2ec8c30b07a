package log

import "comanda/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldProductID   = "product_id"
	FieldProductName = "product_name"
	FieldCategory    = "category"
	FieldPriceCents  = "price_cents"
	FieldSearchTerm  = "search_term"
	FieldStatus      = "status"
	FieldResults     = "results"
	FieldComanda     = "comanda"
	FieldMethodPay   = "payment_method"
	FieldAmountCents = "amount_cents"
	FieldTotalCents  = "total_cents"
	FieldSangriaID   = "sangria_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentProduct = "product"
	ComponentSearch  = "search"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentConfig  = "config"
	ComponentCashier = "cashier"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpSearch   = "search"
	OpClose    = "close"
	OpValidate = "validate"
	OpParse    = "parse"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithProduct adds the product identity and its price in centavos.
func (f LogFields) WithProduct(p core.Product) LogFields {
	f[FieldProductID] = p.ID
	f[FieldProductName] = p.Name
	f[FieldCategory] = string(p.Category)
	f[FieldPriceCents] = p.Price.Cents
	return f
}

// WithCheckout adds the settled comanda, the payment method and the totals.
func (f LogFields) WithCheckout(co core.Checkout) LogFields {
	f[FieldComanda] = co.ComandaNumber
	f[FieldMethodPay] = string(co.Method)
	f[FieldAmountCents] = co.Subtotal.Cents
	f[FieldTotalCents] = co.Total().Cents
	return f
}

func (f LogFields) WithSangria(s core.Sangria) LogFields {
	f[FieldSangriaID] = s.ID
	f[FieldAmountCents] = s.Amount.Cents
	return f
}

// WithSearch adds the dashboard query and how many comandas matched.
func (f LogFields) WithSearch(term, status string, results int) LogFields {
	f[FieldSearchTerm] = term
	f[FieldStatus] = status
	f[FieldResults] = results
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
