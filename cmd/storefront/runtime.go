package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"lampery.dev/storefront/internal/cartsync"
	"lampery.dev/storefront/internal/customizer"
	mw "lampery.dev/storefront/internal/middleware"
	"lampery.dev/storefront/internal/page"
	"lampery.dev/storefront/internal/session"
	"lampery.dev/storefront/internal/toast"
)

// newRuntime is the session store factory: one syncer, one customizer state
// and one toast slot per visitor.
func (a *app) newRuntime(id string) *session.Runtime {
	toasts := toast.NewNotifier()
	syn := cartsync.New(a.client, toasts, a.log.With(zap.String("session", id)))
	st := customizer.NewState(a.product.Customizer)
	st.OnLogoRejected = func(reason customizer.RejectReason) {
		lang := a.bundle.Fallback()
		switch reason {
		case customizer.RejectNotImage:
			toasts.Show(a.bundle.T(lang, "customizer.logo.not_image"))
		case customizer.RejectTooLarge:
			toasts.Show(a.bundle.T(lang, "customizer.logo.too_large"))
		}
	}
	rt := &session.Runtime{ID: id, Syncer: syn, State: st, Toasts: toasts}
	// Any preview-relevant change drops the cached frame so the next
	// preview request renders fresh.
	st.Watch(rt.InvalidatePreview)
	return rt
}

// runtime fetches (or builds) the caller's session runtime.
func (a *app) runtime(r *http.Request) *session.Runtime {
	return a.sessions.Get(mw.GetSession(r).ID)
}

// ensurePage makes sure the runtime holds a live document for pagePath,
// fetching and parsing the upstream page on first visit or navigation.
func (a *app) ensurePage(ctx context.Context, rt *session.Runtime, pagePath string) (*page.Document, error) {
	if doc := rt.Syncer.Document(); doc != nil && rt.PagePath == pagePath {
		return doc, nil
	}
	body, err := a.client.FetchPage(ctx, pagePath)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pagePath, err)
	}
	doc, err := page.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pagePath, err)
	}
	rt.Syncer.AttachPage(doc, pagePath)
	rt.PagePath = pagePath
	return doc, nil
}

// setToastHeader drains the pending toast, if any, into an HX-Trigger
// header so the client fires its toast event.
func setToastHeader(w http.ResponseWriter, toasts *toast.Notifier) {
	t, ok := toasts.Drain()
	if !ok {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"toast": map[string]any{"message": t.Message, "duration": t.Millis},
	})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

// respondWithPage answers fragment requests with the first cart region
// present on the live page, full navigation with the whole document.
func (a *app) respondWithPage(w http.ResponseWriter, r *http.Request, rt *session.Runtime) {
	doc := rt.Syncer.Document()
	if doc == nil {
		mw.WriteError(w, r, http.StatusNotFound, "no page attached")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if mw.IsHTMX(r.Context()) {
		for _, id := range []string{"main-cart", "cart-drawer-content"} {
			if n := doc.ByID(id); n != nil {
				_, _ = w.Write([]byte(page.InnerHTML(n)))
				return
			}
		}
	}
	_, _ = w.Write([]byte(doc.Render()))
}
