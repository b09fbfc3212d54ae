package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"tienda/app"
	"tienda/config"
	"tienda/db"
	"tienda/logging"
	"tienda/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cliApp := &cli.App{
		Name:  "tienda",
		Usage: "storefront cart, pricing and checkout server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded outside production",
			},
		},
		Before: func(c *cli.Context) error {
			// In production, variables should be set directly
			config.LoadDotEnv(c.String("env-file"))
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the postgres cart store tables",
				Action: migrate,
			},
			{
				Name:  "download",
				Usage: "download the free products of a cart with headless Chrome",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "session id of the cart; the shared cart when empty",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 5 * time.Minute,
						Usage: "how long to wait for the downloads to finish",
					},
				},
				Action: download,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM
func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.Addr())
		log.Printf("Cart endpoint: GET http://localhost:%s/tienda/cart", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// migrate applies the cart store schema
func migrate(c *cli.Context) error {
	if err := db.InitDB(c.Context); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.CloseDB()
	return db.EnsureSchema(c.Context, db.DB)
}

// download runs the free-download checkout of a stored cart through headless
// Chrome and waits for the files to land in DOWNLOAD_DIR
func download(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.CartStore == config.StoreMemory {
		return fmt.Errorf("CART_STORE=memory holds no carts outside the server; use file or postgres")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher, err := service.NewBrowserDispatcher(ctx, cfg.DownloadDir, cfg.ChromePath)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	key := service.DefaultCartKey
	if session := c.String("session"); session != "" {
		key = service.CartKey(session)
	}

	checkoutConfig := app.CheckoutConfig(cfg)
	// The process exits once the downloads finish, so the cart is cleared right away
	checkoutConfig.ClearDelay = 0
	checkout := service.NewCheckoutService(service.NewCartService(store, key), app.NewEngine(cfg), dispatcher, checkoutConfig)

	result, err := checkout.DownloadFree(ctx)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()
	if err := dispatcher.Wait(waitCtx); err != nil {
		return fmt.Errorf("downloads did not finish: %w", err)
	}

	log.Printf("✅ Downloaded %d file(s) to %s", result.Count, cfg.DownloadDir)
	return nil
}
