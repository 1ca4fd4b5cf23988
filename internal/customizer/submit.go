package customizer

import "strconv"

// LineItem is the cart-add payload derived from the current state: the size
// tier's variant, quantity equal to the letter count, and human-readable
// properties shown on the cart line.
type LineItem struct {
	VariantID  int64
	Quantity   int
	Properties map[string]string
}

// BuildLineItem derives the submission payload. Returns false when the state
// is invalid or the selected size has no backing variant; the caller skips
// submission silently in that case.
func (s *State) BuildLineItem() (LineItem, bool) {
	if !s.IsValid() {
		return LineItem{}, false
	}
	variantID, ok := s.CurrentVariantID()
	if !ok {
		return LineItem{}, false
	}
	size, _ := s.CurrentSize()

	props := map[string]string{
		"Text":        s.text,
		"Schriftart":  s.font,
		"Größe":       size.Label,
		"Farbe":       s.colorName,
		"Buchstaben":  strconv.Itoa(s.LetterCount()),
		"Einzelpreis": s.FormattedPricePerLetter(),
		"Gesamtpreis": s.FormattedTotal(),
	}
	if s.logo != nil {
		props["Logo"] = "Ja"
		// leading underscore keeps the embedded image off the cart display
		props["_Logo_Data"] = s.logo.DataURI
	}

	return LineItem{
		VariantID:  variantID,
		Quantity:   s.LetterCount(),
		Properties: props,
	}, true
}
