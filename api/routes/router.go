package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopcartlabs/shopcart-backend/api/controllers"
	"github.com/shopcartlabs/shopcart-backend/api/middleware"
	"github.com/shopcartlabs/shopcart-backend/internal/auth"
	"github.com/shopcartlabs/shopcart-backend/internal/cart"
	products "github.com/shopcartlabs/shopcart-backend/internal/products"
	"github.com/shopcartlabs/shopcart-backend/internal/users"
	"github.com/shopcartlabs/shopcart-backend/pkg/auth/session"
	"github.com/shopcartlabs/shopcart-backend/pkg/config"
	"github.com/shopcartlabs/shopcart-backend/pkg/db"
	"github.com/shopcartlabs/shopcart-backend/pkg/logger"
	"github.com/shopcartlabs/shopcart-backend/pkg/metrics"
	"github.com/shopcartlabs/shopcart-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	ProductService  products.Service
	CartService     cart.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Catalog reads stay public; mutations require a content manager.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Use(middleware.RequireContentManager(logg))
			r.Post("/", controllers.CreateProduct(deps.ProductService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(deps.ProductService, logg))
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Get("/me", controllers.UsersMe(deps.UsersService, logg))
		r.Patch("/me", controllers.UsersUpdateMe(deps.UsersService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Get("/", controllers.ListCarts(deps.CartService, logg))
		r.Get("/open", controllers.GetOpenCart(deps.CartService, logg))
		r.Get("/{cartId}", controllers.GetCart(deps.CartService, logg))
		r.With(middleware.Idempotency(deps.Redis, logg)).Post("/", controllers.AddCartItem(deps.CartService, logg))
		r.With(middleware.Idempotency(deps.Redis, logg)).Patch("/", controllers.SubmitCart(deps.CartService, logg))
		r.Delete("/", controllers.ClearCart(deps.CartService, logg))
		r.Put("/items/{itemId}", controllers.UpdateCartItem(deps.CartService, logg))
		r.Delete("/items/{itemId}", controllers.RemoveCartItem(deps.CartService, logg))
	})

	return r
}
