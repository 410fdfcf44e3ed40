package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"avado-backend/checkout"
	"avado-backend/controllers"
	"avado-backend/routes"
	"avado-backend/services"
	"avado-backend/store"
	"avado-backend/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Proceeding with environment variables.")
	}

	cfg := utils.LoadConfig()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProd() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	db, err := utils.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection failed")
	}
	defer db.Close()
	log.Info().Msg("PostgreSQL connected successfully")

	// Stores
	userStore := store.NewUserStore(db)
	productStore := store.NewProductStore(db)
	cartStore := store.NewCartStore(db)
	orderStore := store.NewOrderStore(db)
	tokenStore := store.NewNotificationStore(db)
	statsStore := store.NewStatsStore(db)

	// External services
	emailService := utils.NewEmailService(cfg)
	courierClient := services.NewCourierClient(cfg.CourierBaseURL, cfg.CourierAPIKey, cfg.CourierSecret)
	pushClient := services.NewPushClient(cfg.PushEndpoint, cfg.PushServerKey)

	// Checkout orchestrator
	checkoutService := checkout.NewService(productStore, checkout.NewPGStore(db), 10)

	secret := []byte(cfg.JWTSecret)

	// Controllers
	userController := controllers.NewUserController(userStore, secret, cfg.IsProd())
	productController := controllers.NewProductController(productStore)
	cartController := controllers.NewCartController(cartStore)
	checkoutController := controllers.NewCheckoutController(
		checkoutService, orderStore, courierClient, tokenStore, pushClient,
		emailService, secret, cfg.IsProd())
	notificationController := controllers.NewNotificationController(tokenStore)
	statsController := controllers.NewStatsController(statsStore)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Deps{
		Users:        userStore,
		UserCtrl:     userController,
		ProductCtrl:  productController,
		CartCtrl:     cartController,
		CheckoutCtrl: checkoutController,
		NotifyCtrl:   notificationController,
		StatsCtrl:    statsController,
		JWTSecret:    secret,
		Prod:         cfg.IsProd(),
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
