package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/handler"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/middleware"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/platform/metrics"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
)

// Handlers collects the HTTP handlers mounted by the router. Taxonomy
// handlers are keyed by their URL segment.
type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Terms    map[string]*handler.TermHandler
	Upload   *handler.UploadHandler
}

// New wires the public storefront routes and the admin group behind
// session authentication.
func New(h Handlers, sessions *session.Issuer, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/verify-email", h.Auth.VerifyEmail)
			r.Post("/resend-verification", h.Auth.ResendVerification)
			r.Post("/forget-password", h.Auth.ForgetPassword)
			r.Post("/verify-reset-otp", h.Auth.VerifyResetOTP)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Post("/signin", h.Auth.Signin)
			r.Post("/signout", h.Auth.Signout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.SessionAuth(sessions, logger))
				r.Get("/me", h.Auth.Me)
			})
		})

		r.Get("/products", h.Products.List)
		r.Get("/products/search", h.Products.List)
		r.Get("/products/slug/{slug}", h.Products.GetBySlug)
		r.Get("/products/{id}", h.Products.Get)
		for segment, th := range h.Terms {
			r.Get("/"+segment, th.List)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions, logger))
			r.Use(middleware.RequireAdmin)

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)
			r.Post("/uploads", h.Upload.Upload)

			for segment, th := range h.Terms {
				r.Post("/"+segment, th.Create)
				r.Put("/"+segment+"/{id}", th.Update)
				r.Delete("/"+segment+"/{id}", th.Delete)
			}
		})
	})

	return r
}
