package content

import (
	"html/template"
	"time"
)

// fallbackPages is the shipped copy used when no content directory is
// deployed. German is the storefront default.
var fallbackPages = []Page{
	{
		Slug:    "pflege",
		Lang:    "de",
		Title:   "Pflegehinweise",
		Summary: "So bleibt dein Schriftzug lange schön.",
		Body: template.HTML(`<p>Dein Schriftzug ist aus leichtem, stabilem Material gefertigt. Mit ein wenig Pflege behält er seine Farbe über Jahre.</p>
<h2>Reinigung</h2>
<ul>
<li>Staub mit einem trockenen, weichen Tuch entfernen.</li>
<li>Keine Lösungsmittel oder Scheuermittel verwenden.</li>
<li>Direkte Sonneneinstrahlung kann die Farben ausbleichen.</li>
</ul>`),
		UpdatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	},
	{
		Slug:    "montage",
		Lang:    "de",
		Title:   "Montageanleitung",
		Summary: "Schritt für Schritt an die Wand.",
		Body: template.HTML(`<p>Jeder Schriftzug wird mit passendem Montagematerial geliefert.</p>
<h2>Befestigung</h2>
<ul>
<li>Position mit Klebeband markieren und ausrichten.</li>
<li>Bohrlöcher anzeichnen, bohren, Dübel setzen.</li>
<li>Buchstaben aufhängen und gerade ausrichten.</li>
</ul>`),
		UpdatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	},
	{
		Slug:    "care",
		Lang:    "en",
		Title:   "Care Instructions",
		Summary: "Keep your lettering looking new.",
		Body: template.HTML(`<p>Your lettering is made from light, sturdy material. A little care keeps its colors bright for years.</p>
<ul>
<li>Dust with a dry, soft cloth.</li>
<li>Avoid solvents and abrasives.</li>
<li>Direct sunlight may fade the colors.</li>
</ul>`),
		UpdatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	},
}

func fallbackPage(slug, lang string) (Page, bool) {
	slug = sanitizeSlug(slug)
	for _, p := range fallbackPages {
		if p.Slug == slug && p.Lang == lang {
			return p, true
		}
	}
	// any language beats a 404 for a help page
	for _, p := range fallbackPages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}
