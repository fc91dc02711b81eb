package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/GarimaGupta40/Main-Intercorp/internal/api/middleware"
)

func NewRouter(handlers *Handlers, tokens middleware.TokenValidator) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(withLogging)
	r.Use(middleware.OptionalAuthMiddleware(tokens))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Products
		r.Get("/products", handlers.ListProducts)
		r.Get("/products/{id}", handlers.GetProduct)

		// Cart and wishlist
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handlers.GetCart)
			r.Delete("/", handlers.ClearCart)
			r.Post("/items", handlers.AddToCart)
			r.Put("/items/{productID}", handlers.UpdateCartItem)
			r.Delete("/items/{productID}", handlers.RemoveFromCart)
		})
		r.Post("/wishlist/{productID}", handlers.ToggleWishlist)

		// Checkout
		r.Post("/checkout", handlers.PlaceOrder)
		r.Get("/checkout/state", handlers.CheckoutState)

		// Signed-in customers
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokens))
			r.Get("/orders/mine", handlers.MyOrders)
			r.Get("/loyalty", handlers.LoyaltyStatus)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Post("/products", handlers.CreateProduct)
			r.Put("/products/{id}", handlers.UpdateProduct)
			r.Delete("/products/{id}", handlers.DeleteProduct)

			r.Get("/orders", handlers.ListOrders)
			r.Get("/orders/{id}", handlers.GetOrder)
			r.Patch("/orders/{id}/status", handlers.UpdateOrderStatus)
			r.Get("/stats", handlers.OrderStats)

			r.Get("/inventory", handlers.InventoryInsights)
			r.Get("/inventory/attention", handlers.Attention)
			r.Post("/inventory/{id}/clearance", handlers.ApplyClearance)

			r.Get("/activity", handlers.ListActivity)
			r.Delete("/activity", handlers.ClearActivity)
			r.Get("/notifications", handlers.ListNotifications)
			r.Post("/notifications/read", handlers.MarkNotificationsRead)
			r.Post("/notifications/scan", handlers.ScanAlerts)

			r.Get("/funnel", handlers.FunnelReport)
			r.Get("/loyalty", handlers.LoyaltyReport)
			r.Get("/loyalty/repeat", handlers.RepeatStats)
		})
	})

	return r
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("[API] %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
