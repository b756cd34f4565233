package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/restaurant-orders/internal/app/handlers"
	"github.com/linemk/restaurant-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/restaurant-orders/internal/lib/logger/handlers/urllog"
	"github.com/linemk/restaurant-orders/internal/service"
	"github.com/linemk/restaurant-orders/internal/session"
)

// Services бизнес-логика, которую обслуживает роутер
type Services struct {
	Menu      service.MenuService
	Cart      service.CartService
	Checkout  service.CheckoutService
	Dashboard service.DashboardService
	Inquiry   service.InquiryService
}

// RouterOptions параметры сессий и проверки токенов
type RouterOptions struct {
	Sessions  session.Store
	Cookie    session.CookieOptions
	JWTSecret string
}

// NewRouter собирает HTTP-маршруты.
// Меню и форма обратной связи открыты всем, корзина работает и для анонимных сессий, оформление и кабинет требуют токен.
func NewRouter(log *slog.Logger, svc Services, opts RouterOptions) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/api/menu", func(r chi.Router) {
		r.Get("/", handlers.MenuHandler(log, svc.Menu))
		r.Get("/featured", handlers.FeaturedHandler(log, svc.Menu))
		r.Get("/categories", handlers.CategoriesHandler(log, svc.Menu))
	})
	router.Post("/api/inquiries", handlers.InquiryHandler(log, svc.Inquiry))

	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(log, opts.Sessions, opts.Cookie))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", handlers.CartViewHandler(log, svc.Cart))
			r.Delete("/", handlers.CartClearHandler(log, svc.Cart))
			r.Post("/items", handlers.CartAddHandler(log, svc.Cart))
			r.Put("/items/{id}", handlers.CartUpdateHandler(log, svc.Cart))
			r.Delete("/items/{id}", handlers.CartRemoveHandler(log, svc.Cart))
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware(log, opts.JWTSecret))
			r.Post("/api/checkout", handlers.CheckoutHandler(log, svc.Checkout))
			r.Get("/api/dashboard", handlers.DashboardHandler(log, svc.Dashboard))
			r.Get("/api/orders", handlers.OrderHistoryHandler(log, svc.Dashboard))
			r.Get("/api/orders/{id}", handlers.OrderDetailHandler(log, svc.Dashboard))
		})
	})

	return router
}
