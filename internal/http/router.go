package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Cart     *CartHandler
	Auth     *AuthHandler
	User     *UserHandler
	Product  *ProductHandler
	Order    *OrderHandler
	Category *CategoryHandler
}

type RouterOptions struct {
	Tokens         TokenParser
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter mounts the API under /v1/api. Google OAuth and /health live at
// the root.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(requestLogger)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/auth/google", h.Auth.GoogleStart)
	r.Get("/google/redirect", h.Auth.GoogleCallback)

	authenticate := Authenticate(opts.Tokens)

	r.Route("/v1/api", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/decode-token", h.Auth.DecodeToken)
		r.Post("/refresh-token", h.Auth.RefreshToken)

		r.Post("/user", h.User.Create)
		r.Get("/product-category", h.Product.ListByCategory)
		r.Get("/product/categories", h.Product.Categories)
		r.Get("/product/{productId}", h.Product.Get)
		r.Get("/categoryHomepage", h.Category.List)
		r.Post("/categoryHomepage-search", h.Category.Search)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/shoppingcart", h.Cart.AddItem)
			r.Get("/shoppingcart", h.Cart.GetCart)
			r.Get("/myshoppingcart", h.Cart.GetCartProducts)
			r.Delete("/myshoppingcart", h.Cart.RemoveItem)

			r.Put("/user", h.User.Update)
			r.Get("/products", h.Product.List)
			r.Post("/order", h.Order.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(RequireAdmin)

			r.Get("/user", h.User.List)
			r.Get("/user-pagination", h.User.ListPage)
			r.Delete("/user", h.User.Delete)

			r.Post("/product", h.Product.Create)
			r.Put("/productById/{productId}", h.Product.Update)
			r.Put("/products/{productId}", h.Product.SetSizeQuantity)
			r.Delete("/product/{productId}", h.Product.Delete)

			r.Get("/orders", h.Order.List)
			r.Put("/order/{orderId}", h.Order.UpdateStatus)

			r.Post("/categoryHomepage", h.Category.Create)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	return otelhttp.NewHandler(c.Handler(r), "storefront-http")
}
