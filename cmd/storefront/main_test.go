package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"lampery.dev/storefront/internal/config"
)

// newTestRouter builds the same handler tree main() serves, backed by the
// canned commerce data (no upstream URL configured).
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	localesDir = "../../locales"
	contentDir = "../../content"
	publicDir = "../../public"
	cfg, err := config.Load(config.WithoutSystemEnv())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	a, err := newApp(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	return a.router()
}

// handshake performs an initial GET so the server issues session and CSRF
// cookies, and returns the Cookie header plus the CSRF token for later
// modifying requests.
func handshake(t *testing.T, srv http.Handler) (cookie, token string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("handshake GET expected 200, got %d", rec.Code)
	}
	var pairs []string
	for _, c := range rec.Result().Cookies() {
		pairs = append(pairs, c.Name+"="+c.Value)
		if c.Name == "csrf_token" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatalf("missing csrf_token cookie, got %v", rec.Result().Header["Set-Cookie"])
	}
	return strings.Join(pairs, "; "), token
}

func postForm(srv http.Handler, path, cookie, token string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", cookie)
	req.Header.Set("X-CSRF-Token", token)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestSessionAndCSRFCookiesIssued(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTP(rec, req)
	var session, csrf bool
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case "STOREFRONT_SESSION":
			session = true
		case "csrf_token":
			csrf = true
		}
	}
	if !session || !csrf {
		t.Fatalf("expected session and csrf cookies, got %v", rec.Result().Header["Set-Cookie"])
	}
}

func TestPostWithoutCSRFRejected(t *testing.T) {
	srv := newTestRouter(t)
	cookie, _ := handshake(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/customizer/text", strings.NewReader("text=hallo"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", cookie)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing CSRF header, got %d; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCartPageRendersCannedContent(t *testing.T) {
	srv := newTestRouter(t)
	cookie, _ := handshake(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Cookie", cookie)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "cart-drawer-content") {
		t.Fatalf("expected drawer region in body; body=%s", body)
	}
	if !strings.Contains(body, "Demo-Inhalt") {
		t.Fatalf("expected canned cart content in body; body=%s", body)
	}
}

func TestCustomizerSummaryTracksState(t *testing.T) {
	srv := newTestRouter(t)
	cookie, token := handshake(t, srv)

	rec := postForm(srv, "/customizer/text", cookie, token, url.Values{"text": {"AB CD"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("set text: expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	var sum summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.LetterCount != 4 || sum.WordCount != 2 {
		t.Fatalf("expected 4 letters in 2 words, got %d/%d", sum.LetterCount, sum.WordCount)
	}
	if sum.Total != "14,00 €" {
		t.Fatalf("expected total 14,00 € at the first size tier, got %q", sum.Total)
	}
	if !sum.Valid {
		t.Fatalf("expected state valid with text set")
	}
	if sum.VariantID != 41101 {
		t.Fatalf("expected variant 41101, got %d", sum.VariantID)
	}

	// Switching to the second tier moves the price and the variant.
	rec = postForm(srv, "/customizer/size", cookie, token, url.Values{"index": {"1"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("set size: expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Total != "20,00 €" || sum.VariantID != 41102 {
		t.Fatalf("expected 20,00 € at variant 41102, got %q / %d", sum.Total, sum.VariantID)
	}

	// GET /customizer/summary reads the same session state back.
	recSum := httptest.NewRecorder()
	reqSum := httptest.NewRequest(http.MethodGet, "/customizer/summary", nil)
	reqSum.Header.Set("Cookie", cookie)
	srv.ServeHTTP(recSum, reqSum)
	if err := json.Unmarshal(recSum.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.PreviewText != "AB CD" || sum.TotalCents != 2000 {
		t.Fatalf("expected persisted state, got preview %q cents %d", sum.PreviewText, sum.TotalCents)
	}
}

func TestCustomizerSizeRejectsJunkIndex(t *testing.T) {
	srv := newTestRouter(t)
	cookie, token := handshake(t, srv)

	rec := postForm(srv, "/customizer/size", cookie, token, url.Values{"index": {"gross"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric index, got %d", rec.Code)
	}
}

func TestCartAddRequiresText(t *testing.T) {
	srv := newTestRouter(t)
	cookie, token := handshake(t, srv)

	rec := postForm(srv, "/cart/add", cookie, token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty text, got %d; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCartAddWithValidState(t *testing.T) {
	srv := newTestRouter(t)
	cookie, token := handshake(t, srv)

	rec := postForm(srv, "/customizer/text", cookie, token, url.Values{"text": {"AB CD"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("set text: expected 200, got %d", rec.Code)
	}
	rec = postForm(srv, "/cart/add", cookie, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for add with valid state, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Demo-Inhalt") {
		t.Fatalf("expected refreshed page in response; body=%s", rec.Body.String())
	}
}

func TestPreviewPNGDimensions(t *testing.T) {
	srv := newTestRouter(t)
	cookie, _ := handshake(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customizer/preview.png", nil)
	req.Header.Set("Cookie", cookie)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 360 {
		t.Fatalf("expected 800x360 frame, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPreviewWidthClamped(t *testing.T) {
	srv := newTestRouter(t)
	cookie, _ := handshake(t, srv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customizer/preview.png?width=99999", nil)
	req.Header.Set("Cookie", cookie)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 1600 {
		t.Fatalf("expected width clamped to 1600, got %d", img.Bounds().Dx())
	}
}

func TestPreviewCacheDropsOnStateChange(t *testing.T) {
	srv := newTestRouter(t)
	cookie, token := handshake(t, srv)

	fetch := func() []byte {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/customizer/preview.png", nil)
		req.Header.Set("Cookie", cookie)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		return rec.Body.Bytes()
	}

	first := fetch()
	if !bytes.Equal(first, fetch()) {
		t.Fatal("unchanged state must serve the cached frame")
	}

	rec := postForm(srv, "/customizer/text", cookie, token, url.Values{"text": {"LAMPE"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("set text: %d", rec.Code)
	}
	if bytes.Equal(first, fetch()) {
		t.Fatal("text change must invalidate the cached frame")
	}
}

func TestContentPageShowsUpdatedDate(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pages/pflege", nil)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "12.06.2026") {
		t.Fatalf("expected German-formatted update date; body=%s", rec.Body.String())
	}
}

func TestLocaleResolutionPicksEnglishContent(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pages/care", nil)
	req.Header.Set("Accept-Language", "en-GB, de;q=0.5")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected Content-Language en, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Care Instructions") {
		t.Fatalf("expected English care page; body=%s", rec.Body.String())
	}
}

func TestLocaleIgnoresUnknownOverride(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pages/pflege?hl=xx", nil)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Language"); got != "de" {
		t.Fatalf("expected Content-Language de for unknown hl, got %q", got)
	}
}

func TestContentPageFallback(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pages/pflege", nil)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Pflegehinweise") {
		t.Fatalf("expected shipped care page in body; body=%s", rec.Body.String())
	}
}
