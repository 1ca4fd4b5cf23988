package variant

import (
	"testing"

	"lampery.dev/storefront/internal/page"
)

func TestResolveFirstMatchingTitleWins(t *testing.T) {
	variants := []Variant{
		{ID: "1", Title: "Red / Small", Available: true},
		{ID: "2", Title: "Red / Large", Available: true},
		{ID: "3", Title: "Blue / Large", Available: true},
	}
	got, ok := Resolve([]string{"Red", "Large"}, variants)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Title != "Red / Large" {
		t.Fatalf("expected Red / Large, got %q", got.Title)
	}
}

func TestResolveNoMatch(t *testing.T) {
	variants := []Variant{{ID: "1", Title: "Red / Small"}}
	if _, ok := Resolve([]string{"Green"}, variants); ok {
		t.Fatal("expected no match")
	}
}

func TestResolveEmptySelectionTakesFirst(t *testing.T) {
	variants := []Variant{{ID: "1", Title: "Red / Small"}, {ID: "2", Title: "Blue / Small"}}
	got, ok := Resolve(nil, variants)
	if !ok || got.ID != "1" {
		t.Fatalf("expected first variant, got %+v ok=%v", got, ok)
	}
}

const productHTML = `<html><body>
<form id="product-form">
  <select data-option-position="1">
    <option value="Red" selected>Red</option>
    <option value="Blue">Blue</option>
  </select>
  <button data-option-position="2" data-option-value="Small" class="border-border">S</button>
  <button data-option-position="2" data-option-value="Large" class="border-primary">L</button>
  <input id="product-variant-id" type="hidden" value="">
  <button type="submit">In den Warenkorb</button>
</form>
<select id="product-select">
  <option value="11">Red / Small</option>
  <option value="12">Red / Large</option>
  <option value="13" disabled>Blue / Large</option>
</select>
</body></html>`

func TestSelectedOptionsReadsSelectsThenButtons(t *testing.T) {
	doc, _ := page.Parse(productHTML)
	got := SelectedOptions(doc)
	if len(got) != 2 || got[0] != "Red" || got[1] != "Large" {
		t.Fatalf("unexpected selection: %v", got)
	}
}

func TestApplyWritesHiddenFieldAndKeepsButtonEnabled(t *testing.T) {
	doc, _ := page.Parse(productHTML)
	resolved, ok := Apply(doc, SelectedOptions(doc))
	if !ok {
		t.Fatal("expected resolution")
	}
	if resolved.ID != "12" {
		t.Fatalf("expected variant 12, got %q", resolved.ID)
	}
	if v, _ := page.Attr(doc.ByID("product-variant-id"), "value"); v != "12" {
		t.Fatalf("hidden field not updated: %q", v)
	}
}

func TestApplyDisablesButtonForUnavailableVariant(t *testing.T) {
	doc, _ := page.Parse(productHTML)
	ToggleOption(doc, "2", "Large")

	// switch the dropdown to Blue; Blue / Large is disabled in the listing
	for _, sel := range doc.ByAttr("data-option-position", "1") {
		page.SetAttr(sel, "value", "Blue")
	}
	resolved, ok := Apply(doc, SelectedOptions(doc))
	if !ok {
		t.Fatal("expected resolution")
	}
	if resolved.Available {
		t.Fatalf("expected unavailable variant, got %+v", resolved)
	}

	submits := doc.ByAttr("type", "submit")
	if len(submits) == 0 {
		t.Fatal("submit button not found")
	}
	btn := submits[0]
	if _, disabled := page.Attr(btn, "disabled"); !disabled {
		t.Fatal("expected submit button disabled")
	}
	if !page.HasClass(btn, "opacity-50") {
		t.Fatal("expected disabled styling")
	}
}

func TestToggleOptionMovesActiveBorder(t *testing.T) {
	doc, _ := page.Parse(productHTML)
	ToggleOption(doc, "2", "Small")
	btns := doc.ByAttr("data-option-value", "")
	if !page.HasClass(btns[0], "border-primary") {
		t.Fatal("Small should be active")
	}
	if page.HasClass(btns[1], "border-primary") {
		t.Fatal("Large should be inactive")
	}
}
