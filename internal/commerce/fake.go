package commerce

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Canned cart data served when the client has no base URL. Keeps local dev
// and handler tests independent of a running commerce backend.

func fakeSnapshot() Snapshot {
	return Snapshot{
		Token:      randomID("cart"),
		ItemCount:  3,
		TotalPrice: 7470,
		Currency:   "EUR",
		Items: []Line{
			{Key: "line-demo-1", VariantID: 41001, Quantity: 2, LinePrice: 4980, Title: "Wandlampe Noir / Schwarz"},
			{Key: "line-demo-2", VariantID: 41002, Quantity: 1, LinePrice: 2490, Title: "Tischlampe Mini / Messing"},
		},
	}
}

func fakeAddLine(variantID int64, quantity int) Snapshot {
	snap := fakeSnapshot()
	snap.Items = append(snap.Items, Line{
		Key:       randomID("line"),
		VariantID: variantID,
		Quantity:  quantity,
		LinePrice: int64(quantity) * 500,
	})
	snap.ItemCount += quantity
	return snap
}

func fakeChangeLine(lineKey string, quantity int) Snapshot {
	snap := fakeSnapshot()
	kept := snap.Items[:0]
	for _, line := range snap.Items {
		if line.Key == lineKey {
			snap.ItemCount -= line.Quantity
			if quantity == 0 {
				continue
			}
			line.Quantity = quantity
			snap.ItemCount += quantity
		}
		kept = append(kept, line)
	}
	snap.Items = kept
	return snap
}

func fakeSections(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = fmt.Sprintf(`<div id=%q><p>Demo-Inhalt</p></div>`, name)
	}
	return out
}

func fakePage() string {
	return `<html><body>` +
		`<div id="cart-drawer-content"><p>Demo-Inhalt</p></div>` +
		`<div id="cart-progress-wrapper"></div>` +
		`<div id="cart-footer"></div>` +
		`<span id="cart-subtotal">74,70 €</span>` +
		`</body></html>`
}

func randomID(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err == nil {
		return fmt.Sprintf("%s_%s", strings.TrimSpace(prefix), hex.EncodeToString(b))
	}
	return fmt.Sprintf("%s_%d", strings.TrimSpace(prefix), time.Now().UnixNano())
}
