// Package cartsync keeps a session's live page in step with the upstream
// cart. It owns the refresh ladder: targeted section re-render first, full
// page fetch as fallback, a log line when even that fails.
package cartsync

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"lampery.dev/storefront/internal/commerce"
	"lampery.dev/storefront/internal/customizer"
	"lampery.dev/storefront/internal/delegate"
	"lampery.dev/storefront/internal/page"
	"lampery.dev/storefront/internal/toast"
)

// Syncer orchestrates cart mutations for one session page. It implements
// delegate.CartActions, so the binder routes quantity clicks and input
// changes straight back here. All methods serialize on the session lock;
// whichever mutation runs last leaves its result on the page.
type Syncer struct {
	client *commerce.Client
	toasts *toast.Notifier
	log    *zap.Logger
	binder *delegate.Binder

	// OnDrawerOpen fires after a successful add to cart, mirroring the
	// drawer-open event the storefront listens for.
	OnDrawerOpen func()

	// OnAddSuccess fires once per successful add, alongside the cart
	// button's bounce animation.
	OnAddSuccess func()

	mu       sync.Mutex
	doc      *page.Document
	pagePath string
}

func New(client *commerce.Client, toasts *toast.Notifier, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Syncer{client: client, toasts: toasts, log: log}
	s.binder = delegate.NewBinder(s)
	return s
}

// Binder exposes the event dispatcher bound to this syncer.
func (s *Syncer) Binder() *delegate.Binder { return s.binder }

// AttachPage makes doc the session's live page and binds its controls.
// pagePath is the storefront path the page was rendered for; the refresh
// ladder uses it for section re-rendering.
func (s *Syncer) AttachPage(doc *page.Document, pagePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.pagePath = pagePath
	s.binder.Bind(doc)
}

// Document returns the live page, or nil before AttachPage.
func (s *Syncer) Document() *page.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// UpdateQuantity pushes a new line quantity upstream. The binder already
// wrote the optimistic value into the page; here the line dims while the
// request is in flight and the refresh afterwards settles either the new
// state or, on failure, the upstream truth.
func (s *Syncer) UpdateQuantity(ctx context.Context, lineKey string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimLine(lineKey, true)
	_, err := s.client.ChangeLine(ctx, lineKey, quantity)
	if err != nil {
		s.dimLine(lineKey, false)
		s.toastError(err)
	}
	// Refresh either way: on failure it rolls the optimistic write back
	// to what upstream actually holds.
	s.refreshLocked(ctx)
}

// Remove deletes a line. Upstream treats quantity zero as removal.
func (s *Syncer) Remove(ctx context.Context, lineKey string) {
	s.UpdateQuantity(ctx, lineKey, 0)
}

// AddToCart submits a configured line item. On success the cart regions
// refresh and the drawer-open hook fires; on failure the upstream error
// description surfaces as a toast and the page is left untouched.
func (s *Syncer) AddToCart(ctx context.Context, item customizer.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.client.AddLine(ctx, item.VariantID, item.Quantity, item.Properties)
	if err != nil {
		s.toastError(err)
		return err
	}
	s.refreshLocked(ctx)
	if s.doc != nil {
		// bounce the cart button; the next refresh clears the class in
		// place of the theme's one-second timer
		if buttons := s.doc.ByAttr("data-cart-button", ""); len(buttons) > 0 {
			page.AddClass(buttons[0], "animate-bounce")
		}
		if drawer := s.doc.ByID("cart-drawer"); drawer != nil {
			page.SetAttr(drawer, "data-open", "true")
		}
	}
	if s.OnAddSuccess != nil {
		s.OnAddSuccess()
	}
	if s.OnDrawerOpen != nil {
		s.OnDrawerOpen()
	}
	return nil
}

// Refresh re-renders the cart regions of the live page from upstream.
func (s *Syncer) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
}

// refreshLocked walks the ladder: cart page section, drawer section, full
// page, log. The first tier that patches anything wins.
func (s *Syncer) refreshLocked(ctx context.Context) {
	if s.doc == nil {
		return
	}
	for _, btn := range s.doc.ByAttr("data-cart-button", "") {
		page.DropClass(btn, "animate-bounce")
	}
	patched := false
	switch {
	case s.doc.ByID("main-cart") != nil:
		patched = s.patchFromSections(ctx, s.client.Routes().CartPath, page.CartPageRegions(), "main-cart")
	case s.doc.ByID("cart-drawer-content") != nil:
		patched = s.patchFromSections(ctx, s.pagePath, page.DrawerRegions(), "cart-drawer-content")
	}
	if !patched {
		patched = s.patchFromFullPage(ctx)
	}
	if !patched {
		s.log.Warn("cart refresh exhausted all tiers", zap.String("path", s.pagePath))
		return
	}
	s.binder.Bind(s.doc)
	s.refreshCountLocked(ctx)
}

func (s *Syncer) patchFromSections(ctx context.Context, path string, regions []page.Region, names ...string) bool {
	sections, err := s.client.FetchSections(ctx, path, names...)
	if err != nil {
		s.log.Warn("section refresh failed", zap.String("path", path), zap.Error(err))
		return false
	}
	patched := false
	for _, name := range names {
		fragment, ok := sections[name]
		if !ok || fragment == "" {
			continue
		}
		next, err := page.ParseFragment(fragment)
		if err != nil {
			s.log.Warn("section parse failed", zap.String("section", name), zap.Error(err))
			continue
		}
		if len(page.Patch(s.doc, next, regions)) > 0 {
			patched = true
		}
	}
	return patched
}

func (s *Syncer) patchFromFullPage(ctx context.Context) bool {
	body, err := s.client.FetchPage(ctx, s.pagePath)
	if err != nil {
		s.log.Warn("full page refresh failed", zap.String("path", s.pagePath), zap.Error(err))
		return false
	}
	next, err := page.Parse(body)
	if err != nil {
		s.log.Warn("full page parse failed", zap.Error(err))
		return false
	}
	regions := append(page.DrawerRegions(), page.CartPageRegions()...)
	return len(page.Patch(s.doc, next, regions)) > 0
}

// RefreshCount re-reads the cart snapshot and syncs the item-count badges
// and the cart footer visibility.
func (s *Syncer) RefreshCount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCountLocked(ctx)
}

func (s *Syncer) refreshCountLocked(ctx context.Context) {
	if s.doc == nil {
		return
	}
	snap, err := s.client.FetchSnapshot(ctx)
	if err != nil {
		s.log.Warn("cart snapshot failed", zap.Error(err))
		return
	}
	ApplyCount(s.doc, snap.ItemCount)
}

// ApplyCount writes the item count into every badge carrying
// data-cart-count, hiding the badge at zero, and mirrors the footer
// visibility the same way.
func ApplyCount(doc *page.Document, count int) {
	for _, badge := range doc.ByAttr("data-cart-count", "") {
		page.SetText(badge, strconv.Itoa(count))
		if count == 0 {
			page.AddClass(badge, "hidden")
		} else {
			page.DropClass(badge, "hidden")
		}
	}
	if footer := doc.ByID("cart-footer"); footer != nil {
		if count == 0 {
			page.SetAttr(footer, "style", "display: none;")
		} else {
			page.RemoveAttr(footer, "style")
		}
	}
}

// dimLine marks a cart line as in flight while its mutation runs.
func (s *Syncer) dimLine(lineKey string, dim bool) {
	if s.doc == nil {
		return
	}
	for _, line := range s.doc.ByAttr("data-line-item", lineKey) {
		if dim {
			page.AddClass(line, "opacity-50")
		} else {
			page.DropClass(line, "opacity-50")
		}
	}
}

// toastError surfaces an upstream failure to the user. API errors carry
// their own description; anything else gets the generic message.
func (s *Syncer) toastError(err error) {
	if s.toasts == nil {
		return
	}
	var apiErr *commerce.APIError
	if errors.As(err, &apiErr) && apiErr.Description != "" {
		s.toasts.Show(apiErr.Description)
		return
	}
	s.toasts.Show(commerce.FallbackErrorMessage)
}
