package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"lampery.dev/storefront/internal/commerce"
	"lampery.dev/storefront/internal/delegate"
	mw "lampery.dev/storefront/internal/middleware"
	"lampery.dev/storefront/internal/page"
	"lampery.dev/storefront/internal/session"
	"lampery.dev/storefront/internal/variant"
)

// cartPage serves the visitor's live cart page.
func (a *app) cartPage(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if _, err := a.ensurePage(r.Context(), rt, a.client.Routes().CartPath); err != nil {
		a.log.Warn("cart page unavailable", zap.Error(err))
		mw.WriteError(w, r, http.StatusBadGateway, "cart page unavailable")
		return
	}
	a.respondWithPage(w, r, rt)
}

// productPage serves a product page with the drawer markup on it.
func (a *app) productPage(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if _, err := a.ensurePage(r.Context(), rt, "/products/"+chi.URLParam(r, "slug")); err != nil {
		a.log.Warn("product page unavailable", zap.Error(err))
		mw.WriteError(w, r, http.StatusBadGateway, "product page unavailable")
		return
	}
	a.respondWithPage(w, r, rt)
}

// cartAdd submits the configured line item to the cart.
func (a *app) cartAdd(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	item, ok := rt.State.BuildLineItem()
	if !ok {
		mw.WriteError(w, r, http.StatusUnprocessableEntity, a.bundle.T(mw.Lang(r), "customizer.invalid_text"))
		return
	}
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	if err := rt.Syncer.AddToCart(r.Context(), item); err != nil {
		setToastHeader(w, rt.Toasts)
		var apiErr *commerce.APIError
		if errors.As(err, &apiErr) {
			mw.WriteError(w, r, apiErr.Status, apiErr.Description)
			return
		}
		mw.WriteError(w, r, http.StatusBadGateway, commerce.FallbackErrorMessage)
		return
	}
	setToastHeader(w, rt.Toasts)
	a.respondWithPage(w, r, rt)
}

// cartSetQuantity applies a typed quantity for a line, with the quantity
// input's semantics: zero removes, junk falls back to one, negatives are
// ignored.
func (a *app) cartSetQuantity(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	key := chi.URLParam(r, "key")
	rt.Syncer.Binder().Change(r.Context(), key, r.PostFormValue("quantity"))
	setToastHeader(w, rt.Toasts)
	a.respondWithPage(w, r, rt)
}

func (a *app) cartIncrement(w http.ResponseWriter, r *http.Request) {
	a.cartClick(w, r, "data-quantity-plus")
}

func (a *app) cartDecrement(w http.ResponseWriter, r *http.Request) {
	a.cartClick(w, r, "data-quantity-minus")
}

func (a *app) cartRemove(w http.ResponseWriter, r *http.Request) {
	a.cartClick(w, r, "data-cart-remove")
}

// cartClick routes a stepper button press through the click dispatcher, the
// same way the live page's own buttons are wired.
func (a *app) cartClick(w http.ResponseWriter, r *http.Request, role string) {
	rt := a.runtime(r)
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	doc := rt.Syncer.Document()
	key := chi.URLParam(r, "key")
	buttons := doc.ByAttr(role, key)
	if len(buttons) == 0 {
		mw.WriteError(w, r, http.StatusNotFound, "no such line")
		return
	}
	rt.Syncer.Binder().Click(r.Context(), doc, buttons[0])
	setToastHeader(w, rt.Toasts)
	a.respondWithPage(w, r, rt)
}

// productOption toggles a variant option and reapplies the variant
// selection to the live page.
func (a *app) productOption(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	doc := rt.Syncer.Document()
	variant.ToggleOption(doc, r.PostFormValue("position"), r.PostFormValue("value"))
	variant.Apply(doc, variant.SelectedOptions(doc))
	a.respondWithPage(w, r, rt)
}

// productGallery switches the main product image to the chosen thumbnail.
func (a *app) productGallery(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	doc := rt.Syncer.Document()
	if !delegate.SelectThumbnail(doc, chi.URLParam(r, "mediaID")) {
		mw.WriteError(w, r, http.StatusNotFound, "no such media")
		return
	}
	a.respondWithPage(w, r, rt)
}

// withPage attaches the session's live page, defaulting to the cart page
// for sessions that start on a mutation endpoint. Writes the error response
// itself so callers can just return.
// cartDrawerFragment serves the drawer region alone, refreshed from
// upstream first so polling clients always see current cart state.
func (a *app) cartDrawerFragment(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if err := a.withPage(w, r, rt); err != nil {
		return
	}
	rt.Syncer.Refresh(r.Context())
	doc := rt.Syncer.Document()
	n := doc.ByID("cart-drawer-content")
	if n == nil {
		mw.WriteError(w, r, http.StatusNotFound, "no drawer on page")
		return
	}
	setToastHeader(w, rt.Toasts)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page.InnerHTML(n)))
}

func (a *app) withPage(w http.ResponseWriter, r *http.Request, rt *session.Runtime) error {
	path := rt.PagePath
	if path == "" {
		path = a.client.Routes().CartPath
	}
	if _, err := a.ensurePage(r.Context(), rt, path); err != nil {
		a.log.Warn("page attach failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusBadGateway, "page unavailable")
		return err
	}
	return nil
}
