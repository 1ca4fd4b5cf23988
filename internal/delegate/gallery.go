package delegate

import (
	"strings"

	"lampery.dev/storefront/internal/page"
)

// SelectThumbnail swaps the product main image to the clicked thumbnail's
// media, upgrading the thumbnail-sized asset URL to the display sizes, and
// moves the active border between thumbnails.
func SelectThumbnail(doc *page.Document, mediaID string) bool {
	thumbs := doc.ByAttr("data-media-id", "")
	main := doc.ByID("product-main-image")
	if len(thumbs) == 0 || main == nil {
		return false
	}

	selected := -1
	for i, t := range thumbs {
		if v, _ := page.Attr(t, "data-media-id"); v == mediaID {
			selected = i
			break
		}
	}
	if selected == -1 {
		return false
	}

	img := page.FindTag(thumbs[selected], "img")
	if img == nil {
		return false
	}
	src, _ := page.Attr(img, "src")
	if src == "" {
		return false
	}

	page.SetAttr(main, "src", strings.Replace(src, "/150/", "/800/", 1))
	page.SetAttr(main, "srcset",
		strings.Replace(src, "/150/", "/400/", 1)+" 400w, "+
			strings.Replace(src, "/150/", "/600/", 1)+" 600w, "+
			strings.Replace(src, "/150/", "/800/", 1)+" 800w")

	for i, t := range thumbs {
		if i == selected {
			page.DropClass(t, "border-transparent")
			page.AddClass(t, "border-primary")
			continue
		}
		page.DropClass(t, "border-primary")
		page.AddClass(t, "border-transparent")
	}
	return true
}
