package commerce

// Line is a single cart line as reported by the upstream cart API. Lines are
// read-only on this side; quantity changes go through ChangeLine.
type Line struct {
	Key       string `json:"key"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	LinePrice int64  `json:"line_price"`
	Title     string `json:"title,omitempty"`
}

// Snapshot mirrors the upstream cart state payload. Totals are authoritative
// upstream; this service only reflects them.
type Snapshot struct {
	Token      string `json:"token,omitempty"`
	ItemCount  int    `json:"item_count"`
	TotalPrice int64  `json:"total_price"`
	Currency   string `json:"currency,omitempty"`
	Items      []Line `json:"items,omitempty"`
}

// Routes carries the upstream cart endpoints. They are injected at client
// construction rather than read from ambient globals.
type Routes struct {
	CartAddPath    string `yaml:"cart_add_path"`
	CartChangePath string `yaml:"cart_change_path"`
	CartPath       string `yaml:"cart_path"`
}

// DefaultRoutes returns the conventional cart endpoint paths.
func DefaultRoutes() Routes {
	return Routes{
		CartAddPath:    "/cart/add.js",
		CartChangePath: "/cart/change.js",
		CartPath:       "/cart",
	}
}

type addPayload struct {
	ID         int64             `json:"id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

type changePayload struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}
