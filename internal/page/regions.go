package page

// PatchMode selects how a region's fresh content is applied.
type PatchMode int

const (
	// ReplaceInner swaps the live region's children for the fragment's.
	ReplaceInner PatchMode = iota
	// ReplaceText copies only the text content (subtotal display).
	ReplaceText
)

// Region maps a logical region name to its stable element identifier. The
// same table drives both the drawer refresh and the full-page fallback, so
// the regions cannot drift apart.
type Region struct {
	Name string
	ID   string
	Mode PatchMode
	// SyncStyle carries the fragment's inline style across (the cart footer
	// hides itself via style.display when the cart empties).
	SyncStyle bool
}

// DrawerRegions are the drawer-scoped render targets.
func DrawerRegions() []Region {
	return []Region{
		{Name: "drawer-content", ID: "cart-drawer-content"},
		{Name: "progress", ID: "cart-progress-wrapper"},
		{Name: "footer", ID: "cart-footer", SyncStyle: true},
		{Name: "subtotal", ID: "cart-subtotal", Mode: ReplaceText},
	}
}

// CartPageRegions are the main cart page render targets.
func CartPageRegions() []Region {
	return []Region{
		{Name: "main-cart", ID: "main-cart"},
	}
}

// Patch applies each region present in both documents, leaving the rest of
// the live page untouched. A region absent on either side is a no-op for that
// region. Returns the names of regions actually patched.
func Patch(live, next *Document, regions []Region) []string {
	if live == nil || next == nil {
		return nil
	}
	var patched []string
	for _, region := range regions {
		dst := live.ByID(region.ID)
		src := next.ByID(region.ID)
		if dst == nil || src == nil {
			continue
		}
		switch region.Mode {
		case ReplaceText:
			SetText(dst, Text(src))
		default:
			ReplaceChildren(dst, src)
			if region.SyncStyle {
				if style, ok := Attr(src, "style"); ok {
					SetAttr(dst, "style", style)
				} else {
					RemoveAttr(dst, "style")
				}
			}
		}
		patched = append(patched, region.Name)
	}
	return patched
}
