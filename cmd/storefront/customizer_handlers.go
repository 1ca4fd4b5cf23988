package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"lampery.dev/storefront/internal/content"
	"lampery.dev/storefront/internal/customizer"
	"lampery.dev/storefront/internal/format"
	mw "lampery.dev/storefront/internal/middleware"
	"lampery.dev/storefront/internal/preview"
)

// customizerText sets the free text. The response carries the derived
// summary so the client can update letters and price in one round trip.
func (a *app) customizerText(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	rt.State.SetText(r.PostFormValue("text"))
	a.writeSummary(w, rt.State)
}

func (a *app) customizerFont(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	rt.State.SelectFont(r.PostFormValue("font"))
	a.writeSummary(w, rt.State)
}

func (a *app) customizerSize(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	index, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "index must be a number")
		return
	}
	rt.State.SelectSize(index)
	a.writeSummary(w, rt.State)
}

func (a *app) customizerColor(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	rt.State.SelectColor(r.PostFormValue("hex"), r.PostFormValue("name"))
	a.writeSummary(w, rt.State)
}

// customizerLogo accepts a logo upload. Invalid files block silently at
// the state layer; the rejection reason surfaces only as a toast.
func (a *app) customizerLogo(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	if err := r.ParseMultipartForm(customizer.MaxLogoBytes + 1<<20); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "malformed upload")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "logo file missing")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, customizer.MaxLogoBytes+1))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "unreadable upload")
		return
	}
	rt.State.AcceptLogo(customizer.LogoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	setToastHeader(w, rt.Toasts)
	a.writeSummary(w, rt.State)
}

func (a *app) customizerLogoRemove(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)
	rt.State.RemoveLogo()
	a.writeSummary(w, rt.State)
}

type summaryResponse struct {
	LetterCount    int    `json:"letter_count"`
	WordCount      int    `json:"word_count"`
	PreviewText    string `json:"preview_text"`
	PricePerLetter string `json:"price_per_letter"`
	Total          string `json:"total"`
	TotalCents     int64  `json:"total_cents"`
	Valid          bool   `json:"valid"`
	VariantID      int64  `json:"variant_id,omitempty"`
	HasLogo        bool   `json:"has_logo"`
}

func (a *app) customizerSummary(w http.ResponseWriter, r *http.Request) {
	a.writeSummary(w, a.runtime(r).State)
}

func (a *app) writeSummary(w http.ResponseWriter, st *customizer.State) {
	resp := summaryResponse{
		LetterCount:    st.LetterCount(),
		WordCount:      st.WordCount(),
		PreviewText:    st.PreviewText(),
		PricePerLetter: st.FormattedPricePerLetter(),
		Total:          st.FormattedTotal(),
		TotalCents:     st.TotalPrice(),
		Valid:          st.IsValid(),
		HasLogo:        st.Logo() != nil,
	}
	if id, ok := st.CurrentVariantID(); ok {
		resp.VariantID = id
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}

// customizerPreview renders the current state as a PNG frame.
func (a *app) customizerPreview(w http.ResponseWriter, r *http.Request) {
	rt := a.runtime(r)

	width := 800
	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 {
		width = v
	}
	if width > a.cfg.Preview.MaxWidth {
		width = a.cfg.Preview.MaxWidth
	}
	dpr := 1.0
	if v, err := strconv.ParseFloat(r.URL.Query().Get("dpr"), 64); err == nil && v > 0 {
		dpr = v
	}
	if dpr > a.cfg.Preview.MaxDPR {
		dpr = a.cfg.Preview.MaxDPR
	}

	lang := mw.Lang(r)
	// One frame per session, keyed by everything that feeds the pixels
	// besides the state itself; state changes invalidate the slot.
	key := fmt.Sprintf("%d|%g|%s", width, dpr, lang)
	if png, ok := rt.CachedPreview(key); ok {
		writePreview(w, png)
		return
	}

	scene := preview.SceneFrom(rt.State)
	scene.Placeholder = a.bundle.T(lang, "customizer.placeholder")

	var buf bytes.Buffer
	if err := a.renderer.EncodePNG(&buf, scene, width, dpr); err != nil {
		a.log.Warn("preview render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "preview unavailable")
		return
	}
	rt.StorePreview(key, buf.Bytes())
	writePreview(w, buf.Bytes())
}

func writePreview(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// contentPage serves a help page (care, mounting, shipping).
func (a *app) contentPage(w http.ResponseWriter, r *http.Request) {
	pg, err := a.library.Page(chi.URLParam(r, "slug"), mw.Lang(r))
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "page not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderContentPage(w, pg)
}

func renderContentPage(w io.Writer, pg content.Page) {
	title := html.EscapeString(pg.Title)
	_, _ = io.WriteString(w, "<!doctype html><html lang=\""+html.EscapeString(pg.Lang)+"\"><head><meta charset=\"utf-8\"><title>")
	_, _ = io.WriteString(w, title)
	_, _ = io.WriteString(w, "</title><link rel=\"stylesheet\" href=\"/assets/storefront.css\"></head><body><main><h1>")
	_, _ = io.WriteString(w, title)
	_, _ = io.WriteString(w, "</h1>")
	_, _ = io.WriteString(w, string(pg.Body))
	if !pg.UpdatedAt.IsZero() {
		_, _ = io.WriteString(w, "<footer><time datetime=\"")
		_, _ = io.WriteString(w, pg.UpdatedAt.Format("2006-01-02"))
		_, _ = io.WriteString(w, "\">")
		_, _ = io.WriteString(w, format.FmtDate(pg.UpdatedAt, pg.Lang))
		_, _ = io.WriteString(w, "</time></footer>")
	}
	_, _ = io.WriteString(w, "</main></body></html>")
}
