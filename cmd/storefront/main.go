package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"lampery.dev/storefront/internal/commerce"
	"lampery.dev/storefront/internal/config"
	"lampery.dev/storefront/internal/content"
	"lampery.dev/storefront/internal/customizer"
	"lampery.dev/storefront/internal/i18n"
	mw "lampery.dev/storefront/internal/middleware"
	"lampery.dev/storefront/internal/preview"
	"lampery.dev/storefront/internal/session"
)

var (
	localesDir = "locales"
	contentDir = "content"
	publicDir  = "public"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	app.sessions.StartSweeper(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("storefront listening", zap.String("addr", srv.Addr), zap.Bool("offline", cfg.Upstream.BaseURL == ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
}

type app struct {
	cfg      config.Config
	product  config.Product
	log      *zap.Logger
	bundle   *i18n.Bundle
	library  *content.Library
	client   *commerce.Client
	fonts    *preview.Catalog
	renderer *preview.Renderer
	sessions *session.Store
}

func newApp(cfg config.Config, log *zap.Logger) (*app, error) {
	product, err := config.LoadProduct(cfg.ProductFile)
	if err != nil {
		// Run on demo data when no product file is deployed; the commerce
		// client does the same with an empty upstream URL.
		log.Warn("product file unavailable, using demo product", zap.Error(err))
		product = demoProduct()
	}

	bundle, err := i18n.Load(localesDir, "de", []string{"de", "en"})
	if err != nil {
		return nil, err
	}

	fonts := preview.NewCatalog(product.Fonts, log)
	if err := fonts.Ready(customizer.Fonts); err != nil {
		log.Warn("preview fonts incomplete, embedded face covers the gaps", zap.Error(err))
	}

	a := &app{
		cfg:      cfg,
		product:  product,
		log:      log,
		bundle:   bundle,
		library:  content.NewLibrary(contentDir),
		client:   commerce.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Routes),
		fonts:    fonts,
		renderer: preview.NewRenderer(fonts, log),
	}
	a.sessions = session.NewStore(session.DefaultTTL, a.newRuntime, log)
	return a, nil
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Session)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(a.log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "")))

	r.Get("/cart", a.cartPage)
	r.Get("/products/{slug}", a.productPage)
	r.Post("/cart/add", a.cartAdd)
	r.Post("/cart/items/{key}", a.cartSetQuantity)
	r.Post("/cart/items/{key}/increment", a.cartIncrement)
	r.Post("/cart/items/{key}/decrement", a.cartDecrement)
	r.Post("/cart/items/{key}/remove", a.cartRemove)
	r.Get("/fragments/cart-drawer", a.cartDrawerFragment)

	r.Post("/product/option", a.productOption)
	r.Post("/product/gallery/{mediaID}", a.productGallery)

	r.Post("/customizer/text", a.customizerText)
	r.Post("/customizer/font", a.customizerFont)
	r.Post("/customizer/size", a.customizerSize)
	r.Post("/customizer/color", a.customizerColor)
	r.Post("/customizer/logo", a.customizerLogo)
	r.Delete("/customizer/logo", a.customizerLogoRemove)
	r.Get("/customizer/summary", a.customizerSummary)
	r.Get("/customizer/preview.png", a.customizerPreview)

	r.Get("/pages/{slug}", a.contentPage)

	return r
}

// demoProduct backs local development and tests.
func demoProduct() config.Product {
	return config.Product{
		Customizer: customizer.Config{
			Sizes: []customizer.Size{
				{Label: "20 cm", Price: 350},
				{Label: "30 cm", Price: 500},
				{Label: "40 cm", Price: 650},
			},
			Colors: []customizer.Color{
				{Hex: "#1a1a1a", Name: "Schwarz"},
				{Hex: "#ff0000", Name: "Rot"},
				{Hex: "#0066cc", Name: "Blau"},
			},
			VariantIDs: map[string]int64{
				"20 cm": 41101,
				"30 cm": 41102,
				"40 cm": 41103,
			},
			ProductURL: "/products/schriftzug",
		},
	}
}
