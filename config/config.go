package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Cart store backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Download modes
const (
	DownloadClient  = "client"
	DownloadBrowser = "browser"
)

// Config holds the storefront settings read from the environment.
// Database variables (DATABASE_URL, DB_*) are read by the db package.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	CartStore string `envconfig:"CART_STORE" default:"memory"`
	CartDir   string `envconfig:"CART_DIR" default:"data/carts"`

	CatalogPath        string `envconfig:"CATALOG_PATH" default:"static/tienda/products.json"`
	CatalogDriveFileID string `envconfig:"CATALOG_DRIVE_FILE_ID"`
	CredentialsPath    string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`

	StaticDir     string `envconfig:"STATIC_DIR" default:"static"`
	ImageCacheDir string `envconfig:"IMAGE_CACHE_DIR" default:"cache/images"`

	PaymentBusiness string `envconfig:"PAYPAL_BUSINESS"`
	PaymentCurrency string `envconfig:"PAYPAL_CURRENCY" default:"USD"`
	PaymentEndpoint string `envconfig:"PAYPAL_ENDPOINT" default:"https://www.paypal.com/cgi-bin/webscr"`
	ReturnPath      string `envconfig:"RETURN_PATH" default:"/tienda/carrito.html"`

	FreeLabel string `envconfig:"FREE_LABEL" default:"Free"`

	DownloadMode string        `envconfig:"DOWNLOAD_MODE" default:"client"`
	DownloadDir  string        `envconfig:"DOWNLOAD_DIR" default:"downloads"`
	ChromePath   string        `envconfig:"CHROME_PATH"`
	ClearDelay   time.Duration `envconfig:"CLEAR_DELAY" default:"1s"`
}

// LoadDotEnv loads .env in development (ignores a missing file).
// Overload makes .env values override system environment variables.
func LoadDotEnv(path string) {
	if os.Getenv("ENV") == "production" {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		log.Printf("Warning: .env file not found at %s, using system environment variables", path)
		return
	}
	log.Printf("Successfully loaded environment variables from %s (overriding system variables)", path)
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	c.CartStore = strings.ToLower(strings.TrimSpace(c.CartStore))
	switch c.CartStore {
	case StoreMemory, StoreFile, StorePostgres:
	default:
		return fmt.Errorf("CART_STORE must be memory, file or postgres, got %q", c.CartStore)
	}

	c.DownloadMode = strings.ToLower(strings.TrimSpace(c.DownloadMode))
	switch c.DownloadMode {
	case DownloadClient, DownloadBrowser:
	default:
		return fmt.Errorf("DOWNLOAD_MODE must be client or browser, got %q", c.DownloadMode)
	}

	if c.ClearDelay < 0 {
		return fmt.Errorf("CLEAR_DELAY cannot be negative")
	}

	// Remove leading colon if present (some platforms set PORT as ":8080")
	c.Port = strings.TrimPrefix(c.Port, ":")
	return nil
}

// Addr returns the listen address on all interfaces
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
