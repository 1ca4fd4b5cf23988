// Package variant resolves the selected product options to a concrete
// commerce variant by matching option values against variant titles. Linear
// scan in listing order; option cardinality is small enough that no index is
// worth having.
package variant

import (
	"strings"

	"golang.org/x/net/html"

	"lampery.dev/storefront/internal/page"
)

// Variant is one sellable combination from the product's variant listing.
type Variant struct {
	ID        string
	Title     string
	Available bool
}

// Resolve returns the first variant whose title contains every selected
// option value. Listing order decides ties.
func Resolve(selected []string, variants []Variant) (Variant, bool) {
	for _, v := range variants {
		if titleMatches(v.Title, selected) {
			return v, true
		}
	}
	return Variant{}, false
}

func titleMatches(title string, selected []string) bool {
	for _, opt := range selected {
		if !strings.Contains(title, opt) {
			return false
		}
	}
	return true
}

// SelectedOptions gathers the currently chosen option values from the live
// document: dropdown values first, then active option buttons.
func SelectedOptions(doc *page.Document) []string {
	var out []string
	for _, sel := range doc.ByAttr("data-option-position", "") {
		if sel.Data != "select" {
			continue
		}
		if v := selectValue(sel); v != "" {
			out = append(out, v)
		}
	}
	for _, btn := range doc.ByAttr("data-option-value", "") {
		if !page.HasClass(btn, "border-primary") {
			continue
		}
		if v, _ := page.Attr(btn, "data-option-value"); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ToggleOption marks the clicked option button active within its position
// group, then the caller re-resolves the variant.
func ToggleOption(doc *page.Document, position, value string) {
	for _, sib := range doc.ByAttr("data-option-position", position) {
		if sib.Data != "button" {
			continue
		}
		v, _ := page.Attr(sib, "data-option-value")
		if v == value {
			page.DropClass(sib, "border-border")
			page.AddClass(sib, "border-primary")
			continue
		}
		page.DropClass(sib, "border-primary")
		page.AddClass(sib, "border-border")
	}
}

// Apply resolves the selection against the product's variant listing in the
// document and reflects the result: hidden variant-id field, select value,
// and add-button enablement from the variant's availability.
func Apply(doc *page.Document, selected []string) (Variant, bool) {
	variants := Listing(doc)
	resolved, ok := Resolve(selected, variants)
	if !ok {
		return Variant{}, false
	}

	if sel := doc.ByID("product-select"); sel != nil {
		page.SetAttr(sel, "value", resolved.ID)
	}
	if hidden := doc.ByID("product-variant-id"); hidden != nil {
		page.SetAttr(hidden, "value", resolved.ID)
	}

	if form := doc.ByID("product-form"); form != nil {
		if btn := submitButton(form); btn != nil {
			if resolved.Available {
				page.RemoveAttr(btn, "disabled")
				page.DropClass(btn, "opacity-50")
				page.DropClass(btn, "cursor-not-allowed")
			} else {
				page.SetAttr(btn, "disabled", "disabled")
				page.AddClass(btn, "opacity-50")
				page.AddClass(btn, "cursor-not-allowed")
			}
		}
	}
	return resolved, true
}

// Listing reads the variant option elements out of the product select.
func Listing(doc *page.Document) []Variant {
	sel := doc.ByID("product-select")
	if sel == nil {
		return nil
	}
	var out []Variant
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Data != "option" {
			continue
		}
		id, _ := page.Attr(c, "value")
		_, disabled := page.Attr(c, "disabled")
		out = append(out, Variant{
			ID:        id,
			Title:     strings.TrimSpace(page.Text(c)),
			Available: !disabled,
		})
	}
	return out
}

// selectValue reads a dropdown's current value: an explicit value attribute
// (written when the selection changes), else the selected option's value,
// else the first option's.
func selectValue(sel *html.Node) string {
	if v, ok := page.Attr(sel, "value"); ok && v != "" {
		return v
	}
	var first string
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Data != "option" {
			continue
		}
		v, ok := page.Attr(c, "value")
		if !ok || v == "" {
			v = strings.TrimSpace(page.Text(c))
		}
		if first == "" {
			first = v
		}
		if _, selected := page.Attr(c, "selected"); selected {
			return v
		}
	}
	return first
}

func submitButton(form *html.Node) *html.Node {
	var found *html.Node
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			t, _ := page.Attr(n, "type")
			if t == "submit" {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(form)
	return found
}
