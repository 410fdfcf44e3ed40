package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"avado-backend/controllers"
	"avado-backend/middleware"
	"avado-backend/utils"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Users         middleware.UserFinder
	UserCtrl      *controllers.UserController
	ProductCtrl   *controllers.ProductController
	CartCtrl      *controllers.CartController
	CheckoutCtrl  *controllers.CheckoutController
	NotifyCtrl    *controllers.NotificationController
	StatsCtrl     *controllers.StatsController
	JWTSecret     []byte
	Prod          bool
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, d Deps) {
	router.Use(middleware.RequestLogger)

	userOrGuest := middleware.UserOrGuest(d.Users, d.JWTSecret, d.Prod)
	adminOnly := middleware.AdminOnly(d.JWTSecret)

	// Auth routes
	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", d.UserCtrl.Signup).Methods("POST")
	auth.HandleFunc("/login", d.UserCtrl.Login).Methods("POST")
	auth.HandleFunc("/current-user", d.UserCtrl.CurrentUser).Methods("GET")
	auth.HandleFunc("/logout", d.UserCtrl.Logout).Methods("POST")
	auth.HandleFunc("/account", d.UserCtrl.UpdateAccount).Methods("PUT")

	// Cart routes: every handler sees exactly one resolved Owner
	cart := router.PathPrefix("/api/cart").Subrouter()
	cart.Use(userOrGuest)
	cart.HandleFunc("", d.CartCtrl.GetCart).Methods("GET")
	cart.HandleFunc("/add", d.CartCtrl.AddToCart).Methods("POST")
	cart.HandleFunc("/update/{id}", d.CartCtrl.UpdateQuantity).Methods("PUT")
	cart.HandleFunc("/remove/{id}", d.CartCtrl.RemoveItem).Methods("DELETE")
	cart.HandleFunc("/clear", d.CartCtrl.ClearCart).Methods("DELETE")
	cart.HandleFunc("/{id}", d.CartCtrl.RemoveItem).Methods("DELETE")

	// Checkout + orders
	co := router.PathPrefix("/api/checkout").Subrouter()
	co.Handle("", userOrGuest(http.HandlerFunc(d.CheckoutCtrl.PlaceOrder))).Methods("POST")
	co.HandleFunc("", d.CheckoutCtrl.MyOrders).Methods("GET")

	coAdmin := co.PathPrefix("/admin").Subrouter()
	coAdmin.Use(adminOnly)
	coAdmin.HandleFunc("/all", d.CheckoutCtrl.AdminAllOrders).Methods("GET")
	coAdmin.HandleFunc("/{id}/status", d.CheckoutCtrl.UpdateStatus).Methods("PUT")
	coAdmin.HandleFunc("/{id}/send-courier", d.CheckoutCtrl.SendCourier).Methods("POST")

	// Product routes
	router.HandleFunc("/products", d.ProductCtrl.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", d.ProductCtrl.GetProductByID).Methods("GET")

	// Admin product routes
	admin := router.PathPrefix("/products").Subrouter()
	admin.Use(adminOnly)
	admin.HandleFunc("", d.ProductCtrl.CreateProduct).Methods("POST")
	admin.HandleFunc("/{id}", d.ProductCtrl.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/{id}", d.ProductCtrl.DeleteProduct).Methods("DELETE")

	// Admin notifications + dashboard
	notif := router.PathPrefix("/api/notifications").Subrouter()
	notif.Use(adminOnly)
	notif.HandleFunc("/save-token", d.NotifyCtrl.SaveToken).Methods("POST")

	stats := router.PathPrefix("/api/stats").Subrouter()
	stats.Use(adminOnly)
	stats.HandleFunc("/overview", d.StatsCtrl.Overview).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]interface{}{"ok": true, "time": time.Now().UTC()})
	}).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusNotFound, "Not Found")
	})
}
