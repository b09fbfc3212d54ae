package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"tienda/app/controller"
	"tienda/app/router"
	"tienda/config"
	"tienda/db"
	"tienda/pricing"
	"tienda/repository"
	"tienda/service"
)

// App holds the wired storefront
type App struct {
	Handler    http.Handler
	Store      repository.KeyValueStore
	Catalog    repository.CatalogSourceInterface
	Engine     *pricing.Engine
	Dispatcher service.DownloadDispatcher
	Checkout   service.CheckoutConfig

	closers []func()
}

// Close releases the browser and database connections, in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewStore opens the cart store selected by cfg.CartStore.
// The returned function closes whatever the store opened.
func NewStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, func(), error) {
	switch cfg.CartStore {
	case config.StoreFile:
		store, err := repository.NewFileStore(cfg.CartDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("🗄️  Cart store: files under %s", cfg.CartDir)
		return store, func() {}, nil

	case config.StorePostgres:
		if err := db.InitDB(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureSchema(ctx, db.DB); err != nil {
			db.CloseDB()
			return nil, nil, err
		}
		log.Printf("🗄️  Cart store: postgres")
		return repository.NewPostgresStore(db.DB, db.ListenConnString()), func() { db.CloseDB() }, nil

	default:
		log.Printf("🗄️  Cart store: memory (carts are lost on restart)")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

// NewCatalog loads the catalog from Google Drive when a file id is configured,
// from the local products.json otherwise
func NewCatalog(ctx context.Context, cfg *config.Config) (*repository.Catalog, error) {
	if cfg.CatalogDriveFileID != "" {
		if cfg.CredentialsPath == "" {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
		}
		return repository.LoadDriveCatalog(ctx, cfg.CredentialsPath, cfg.CatalogDriveFileID)
	}
	return repository.LoadFileCatalog(cfg.CatalogPath)
}

// NewEngine builds the pricing engine with the configured free label
func NewEngine(cfg *config.Config) *pricing.Engine {
	formatter := pricing.DefaultFormatter()
	if cfg.FreeLabel != "" {
		formatter.FreeLabel = cfg.FreeLabel
	}
	return pricing.NewEngine(formatter)
}

// CheckoutConfig maps the payment and download settings
func CheckoutConfig(cfg *config.Config) service.CheckoutConfig {
	return service.CheckoutConfig{
		Endpoint:   cfg.PaymentEndpoint,
		Recipient:  cfg.PaymentBusiness,
		Currency:   cfg.PaymentCurrency,
		BaseURL:    cfg.BaseURL,
		ReturnPath: cfg.ReturnPath,
		ClearDelay: cfg.ClearDelay,
	}
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	store, closeStore, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)

	catalog, err := NewCatalog(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = catalog

	if cfg.DownloadMode == config.DownloadBrowser {
		browser, err := service.NewBrowserDispatcher(ctx, cfg.DownloadDir, cfg.ChromePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Dispatcher = browser
		a.closers = append(a.closers, browser.Close)
	} else {
		a.Dispatcher = service.NewClientDispatcher()
	}

	a.Engine = NewEngine(cfg)
	a.Checkout = CheckoutConfig(cfg)
	if a.Checkout.Recipient == "" {
		log.Printf("⚠️  PAYPAL_BUSINESS is not set, payment requests will have no recipient")
	}

	thumbnails := service.NewThumbnailService(cfg.StaticDir, cfg.ImageCacheDir)

	// Create controllers
	controllers := &router.Controllers{
		Product:  controller.NewProductController(a.Catalog, a.Engine),
		Cart:     controller.NewCartController(a.Store, a.Catalog, a.Engine),
		Checkout: controller.NewCheckoutController(a.Store, a.Engine, a.Dispatcher, service.NewFormRedirector(), a.Checkout),
		Image:    controller.NewImageController(thumbnails),
		Static:   http.FileServer(http.Dir(cfg.StaticDir)),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)
	a.Handler = mux

	return a, nil
}
