package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/admin"
	"github.com/Lixing-Zhang/hobbyshop/internal/auth"
	"github.com/Lixing-Zhang/hobbyshop/internal/cart"
	"github.com/Lixing-Zhang/hobbyshop/internal/checkout"
	"github.com/Lixing-Zhang/hobbyshop/internal/config"
	"github.com/Lixing-Zhang/hobbyshop/internal/handlers"
	"github.com/Lixing-Zhang/hobbyshop/internal/middleware"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
	"github.com/Lixing-Zhang/hobbyshop/internal/service"
	"github.com/Lixing-Zhang/hobbyshop/internal/storage"
	"github.com/Lixing-Zhang/hobbyshop/internal/tcg"
	"github.com/Lixing-Zhang/hobbyshop/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting hobby shop server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	health := handlers.NewHealthHandler(log)

	// Slot storage for carts and owner sessions
	var slots storage.Storage
	if cfg.Storage.RedisURL != "" {
		redisStorage, err := storage.NewRedisStorage(cfg.Storage.RedisURL, "hobbyshop")
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStorage.Close()
		health.WithCheck("redis", redisStorage)
		slots = redisStorage
		log.Info("using redis slot storage")
	} else {
		slots = storage.NewMemoryStorage()
		log.Info("using in-memory slot storage")
	}

	// Product table
	var productRepo repository.ProductRepository
	if cfg.Storage.DatabaseURL != "" {
		pgRepo, err := repository.OpenPostgres(cfg.Storage.DatabaseURL)
		if err != nil {
			log.Error("failed to open product database", "error", err)
			os.Exit(1)
		}
		defer pgRepo.Close()
		health.WithCheck("postgres", pgRepo)
		productRepo = pgRepo
		log.Info("using postgres product repository")
	} else {
		productRepo = repository.NewInMemoryProductRepository()
		log.Info("using seeded in-memory product repository")
	}

	// Card game endpoints
	cardCatalog := tcg.DefaultCatalog()
	if cfg.TCG.CatalogFile != "" {
		cardCatalog, err = tcg.LoadCatalog(cfg.TCG.CatalogFile)
		if err != nil {
			log.Error("failed to load card catalog", "path", cfg.TCG.CatalogFile, "error", err)
			os.Exit(1)
		}
	}
	if cfg.TCG.APIKey == "" {
		log.Warn("TCG_API_KEY is not set; card searches will likely be rejected")
	}

	// Initialize services
	productService := service.NewProductService(productRepo, log)
	if cfg.Catalog.Fallback == "static" {
		productService.WithFallback(repository.SeedProducts())
	}
	cartStore := cart.NewStore(slots, cfg.Storage.CartSlot, log)
	cartController := checkout.NewController(cartStore, cfg.Checkout.WhatsAppNumber)
	gate := auth.NewGate(slots, cfg.Admin.Username, cfg.Admin.Password, log)
	workspaces := admin.NewWorkspaces(productService, log)
	cardClient := tcg.NewClient(cfg.TCG.APIKey, cfg.TCG.Timeout, log)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, log)
	cartHandler := handlers.NewCartHandler(cartStore, cartController, productService, log)
	authHandler := handlers.NewAuthHandler(gate, workspaces, log)
	adminHandler := handlers.NewAdminHandler(workspaces, cardCatalog, cardClient, log)
	cardSocket := handlers.NewCardSocketHandler(workspaces, cardCatalog, cardClient, cfg.TCG.Debounce, cfg.Server.CORSOrigins, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.CartHeader, handlers.ConfirmDeleteHeader},
		ExposedHeaders:   []string{handlers.CartHeader, handlers.CatalogNoticeHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", health.ServeHTTP)

	requireAdmin := middleware.RequireAdmin(gate, log)
	timeout := chimiddleware.Timeout(60 * time.Second)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeout)

			// Catalogue
			r.Get("/categories", productHandler.ListCategories)
			r.Get("/product", productHandler.ListProducts)
			r.Get("/product/{productId}", productHandler.GetProduct)

			// Cart
			r.Get("/cart", cartHandler.GetCart)
			r.Delete("/cart", cartHandler.ClearCart)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Put("/cart/items/{productId}", cartHandler.SetQuantity)
			r.Delete("/cart/items/{productId}", cartHandler.RemoveItem)
			r.Post("/cart/items/{productId}/increment", cartHandler.Increment)
			r.Post("/cart/items/{productId}/decrement", cartHandler.Decrement)
			r.Post("/cart/checkout", cartHandler.Checkout)

			r.Post("/admin/login", authHandler.Login)
			r.Post("/admin/logout", authHandler.Logout)
		})

		// Owner views
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			// Long-lived search socket, kept out of the request timeout
			r.Get("/admin/tcg/ws", cardSocket.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(timeout)

				r.Get("/admin/products", adminHandler.ListProducts)
				r.Get("/admin/products/export", adminHandler.ExportProducts)
				r.Post("/admin/products/manual", adminHandler.CreateManual)
				r.Post("/admin/products/external", adminHandler.CreateExternal)
				r.Patch("/admin/products/{id}/visibility", adminHandler.ToggleVisibility)
				r.Delete("/admin/products/{id}", adminHandler.DeleteProduct)
				r.Post("/admin/products/{id}/edit", adminHandler.EditProduct)

				r.Get("/admin/intake", adminHandler.GetIntake)
				r.Put("/admin/intake", adminHandler.SetIntake)

				r.Get("/admin/tcg/categories", adminHandler.ListCardCategories)
				r.Put("/admin/tcg/category", adminHandler.SetCardCategory)
				r.Get("/admin/tcg/search", adminHandler.SearchCards)
				r.Post("/admin/tcg/select", adminHandler.SelectCard)
			})
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
