package page

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var fragmentPolicy = buildFragmentPolicy()

// buildFragmentPolicy permits the markup the theme's cart fragments actually
// use: structural elements, form controls for quantity inputs, and the
// data-* roles the delegation layer dispatches on. Everything else (scripts,
// event handler attributes, iframes) is stripped before the fragment touches
// the live tree.
func buildFragmentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs("style").Matching(regexp.MustCompile(`^[a-zA-Z0-9:;,.%#()\-\s]*$`)).Globally()
	p.AllowDataAttributes()
	p.AllowElements("button", "input", "select", "option", "form", "label", "span")
	p.AllowAttrs("type", "value", "name", "min", "max", "disabled").OnElements("button", "input")
	p.AllowAttrs("value", "selected", "disabled").OnElements("option")
	p.AllowAttrs("action", "method").OnElements("form")
	p.AllowAttrs("srcset", "sizes", "loading").OnElements("img")
	return p
}

// Sanitize cleans fragment HTML fetched from the section-rendering endpoint.
func Sanitize(fragment string) string {
	return fragmentPolicy.Sanitize(fragment)
}

// ParseFragment sanitizes and parses fetched fragment HTML in one step.
func ParseFragment(fragment string) (*Document, error) {
	return Parse(Sanitize(fragment))
}
