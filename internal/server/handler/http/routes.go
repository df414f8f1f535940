package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/middleware"
)

// NewRouter constructs the HTTP handler of the budgeting API.
//
// Routes:
//
//	POST   /api/register              → authHandler.Register
//	POST   /api/login                 → authHandler.Login
//	GET    /api/categories            → categories.List
//	POST   /api/categories            → categories.Create
//	POST   /api/categories/{id}       → categories.Override (_method PUT or DELETE)
//	PUT    /api/categories/{id}       → categories.Update
//	DELETE /api/categories/{id}       → categories.Delete
//	(the same five for /api/transactions)
//
// Everything except register and login requires a bearer token.
func NewRouter(
	authHandler *AuthHandler,
	categories *CategoryHandler,
	transactions *TransactionHandler,
	auth middleware.Authenticator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(auth))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categories.List)
				r.Post("/", categories.Create)
				r.Post("/{id}", categories.Override)
				r.Put("/{id}", categories.Update)
				r.Delete("/{id}", categories.Delete)
			})
			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactions.List)
				r.Post("/", transactions.Create)
				r.Post("/{id}", transactions.Override)
				r.Put("/{id}", transactions.Update)
				r.Delete("/{id}", transactions.Delete)
			})
		})
	})

	return r
}
