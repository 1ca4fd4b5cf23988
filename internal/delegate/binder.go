// Package delegate routes user intents against the live page tree the way a
// document-level listener would: dispatch by data-attribute role, with
// handlers re-installed after every region patch. Replaced subtrees never
// carry bindings of their own; the binder is the only dispatch point.
package delegate

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"lampery.dev/storefront/internal/page"
)

// CartActions is the orchestration surface the binder drives. The binder
// itself performs no I/O.
type CartActions interface {
	UpdateQuantity(ctx context.Context, lineKey string, quantity int)
	Remove(ctx context.Context, lineKey string)
}

// Binder dispatches clicks and quantity-input changes. Bind is idempotent:
// re-binding after a patch replaces prior input handlers instead of stacking
// them, so a line never fires twice.
type Binder struct {
	actions CartActions

	clickBound bool
	inputs     map[string]func(ctx context.Context, raw string)
}

// NewBinder wires the binder to its action sink.
func NewBinder(actions CartActions) *Binder {
	return &Binder{
		actions: actions,
		inputs:  map[string]func(ctx context.Context, raw string){},
	}
}

// Bind (re-)installs handlers for the given document. Called once at startup
// and again after every patch, since patched regions arrive without bindings.
func (b *Binder) Bind(doc *page.Document) {
	// Document-level click dispatch: registered once, survives patches.
	b.clickBound = true

	// Input change handlers: remove-then-add keyed by line, so rebinding is
	// idempotent rather than additive.
	for k := range b.inputs {
		delete(b.inputs, k)
	}
	for _, input := range doc.ByAttr("data-quantity-input", "") {
		key, _ := page.Attr(input, "data-quantity-input")
		if key == "" {
			continue
		}
		node := input
		b.inputs[key] = func(ctx context.Context, raw string) {
			qty, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				qty = 1
			}
			if qty < 0 {
				return
			}
			page.SetAttr(node, "value", strconv.Itoa(qty))
			if qty == 0 {
				b.actions.Remove(ctx, key)
				return
			}
			b.actions.UpdateQuantity(ctx, key, qty)
		}
	}
}

// Bound reports whether the document-level click handler is installed.
func (b *Binder) Bound() bool { return b.clickBound }

// BoundInputs returns the line keys with an active change handler.
func (b *Binder) BoundInputs() []string {
	keys := make([]string, 0, len(b.inputs))
	for k := range b.inputs {
		keys = append(keys, k)
	}
	return keys
}

// Change delivers a quantity-input change for the given line key.
func (b *Binder) Change(ctx context.Context, lineKey, rawValue string) bool {
	h, ok := b.inputs[lineKey]
	if !ok {
		return false
	}
	h(ctx, rawValue)
	return true
}

// Click dispatches a click landing on target. The nearest button ancestor is
// inspected for the quantity and removal roles; anything else is ignored.
func (b *Binder) Click(ctx context.Context, doc *page.Document, target *html.Node) {
	if !b.clickBound {
		return
	}
	btn := page.Closest(target, "button")
	if btn == nil {
		return
	}

	if key, ok := page.Attr(btn, "data-quantity-minus"); ok {
		b.minus(ctx, doc, key)
	}
	if key, ok := page.Attr(btn, "data-quantity-plus"); ok {
		b.plus(ctx, doc, key)
	}
	if key, ok := page.Attr(btn, "data-cart-remove"); ok && key != "" {
		b.actions.Remove(ctx, key)
	}
}

func (b *Binder) minus(ctx context.Context, doc *page.Document, key string) {
	if key == "" {
		b.productQuantity(doc, -1)
		return
	}
	valueEl, inputEl := quantityNodes(doc, key)
	current := displayedQuantity(valueEl, inputEl, 1)

	next := current - 1
	if next < 0 {
		next = 0
	}
	if next == 0 {
		b.actions.Remove(ctx, key)
		return
	}
	writeQuantity(valueEl, inputEl, next)
	b.actions.UpdateQuantity(ctx, key, next)
}

func (b *Binder) plus(ctx context.Context, doc *page.Document, key string) {
	if key == "" {
		b.productQuantity(doc, +1)
		return
	}
	valueEl, inputEl := quantityNodes(doc, key)
	next := displayedQuantity(valueEl, inputEl, 0) + 1
	writeQuantity(valueEl, inputEl, next)
	b.actions.UpdateQuantity(ctx, key, next)
}

// productQuantity adjusts the product-form stepper (buttons without a line
// key). Floors at 1 and touches no network.
func (b *Binder) productQuantity(doc *page.Document, delta int) {
	input := doc.ByID("product-quantity")
	if input == nil {
		return
	}
	raw, _ := page.Attr(input, "value")
	current, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		current = 1
	}
	next := current + delta
	if next < 1 {
		next = 1
	}
	page.SetAttr(input, "value", strconv.Itoa(next))
	if hidden := doc.ByID("form-quantity"); hidden != nil {
		page.SetAttr(hidden, "value", strconv.Itoa(next))
	}
}

func quantityNodes(doc *page.Document, key string) (valueEl, inputEl *html.Node) {
	if nodes := doc.ByAttr("data-quantity-value", key); len(nodes) > 0 {
		valueEl = nodes[0]
	}
	if nodes := doc.ByAttr("data-quantity-input", key); len(nodes) > 0 {
		inputEl = nodes[0]
	}
	return valueEl, inputEl
}

// displayedQuantity reads the quantity the visitor currently sees: the value
// element in the drawer, or the input on the cart page.
func displayedQuantity(valueEl, inputEl *html.Node, fallback int) int {
	if valueEl != nil {
		if v, err := strconv.Atoi(strings.TrimSpace(page.Text(valueEl))); err == nil {
			return v
		}
		return fallback
	}
	if inputEl != nil {
		raw, _ := page.Attr(inputEl, "value")
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return v
		}
	}
	return fallback
}

// writeQuantity reflects the new quantity immediately, before the upstream
// call resolves.
func writeQuantity(valueEl, inputEl *html.Node, qty int) {
	if valueEl != nil {
		page.SetText(valueEl, strconv.Itoa(qty))
	}
	if inputEl != nil {
		page.SetAttr(inputEl, "value", strconv.Itoa(qty))
	}
}
