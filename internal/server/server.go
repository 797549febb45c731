// Package server wires the HTTP surface: routing, middleware, the JSON
// response envelope, and the mapping from service sentinels to statuses.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"bazaar/backend/internal/auth"
	commentrepo "bazaar/backend/internal/comment/repository"
	"bazaar/backend/internal/platform/authz"
	productrepo "bazaar/backend/internal/product/repository"
	ticketrepo "bazaar/backend/internal/ticket/repository"
	"bazaar/backend/internal/verification"
	websiteservice "bazaar/backend/internal/website/service"
)

type Server struct {
	auth          *auth.Service
	websites      *websiteservice.Service
	products      productrepo.Repository
	tickets       ticketrepo.Repository
	comments      commentrepo.Repository
	codes         *verification.Service
	subscriptions authz.Deactivator
	logger        zerolog.Logger
	now           func() time.Time
	http          *http.Server
}

func New(addr string, auth *auth.Service, websites *websiteservice.Service, products productrepo.Repository, tickets ticketrepo.Repository, comments commentrepo.Repository, codes *verification.Service, subscriptions authz.Deactivator, logger zerolog.Logger) *Server {
	s := &Server{
		auth:          auth,
		websites:      websites,
		products:      products,
		tickets:       tickets,
		comments:      comments,
		codes:         codes,
		subscriptions: subscriptions,
		logger:        logger,
		now:           time.Now,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("http server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Routes builds the router. Split out from New so handler tests can exercise
// the full middleware chain without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/verify", s.handleVerifyEmail)
		r.Post("/verify/resend", s.handleResendVerification)
		r.Post("/login", s.handleLogin)
		r.Post("/password/forgot", s.handleForgotPassword)
		r.Post("/password/verify", s.handleVerifyResetCode)
		r.Post("/password/reset", s.handleResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
	})

	// Public storefront reads, resolved by domain_name.
	r.Route("/api/store", func(r chi.Router) {
		r.Use(s.ResolveWebsite)
		r.Get("/", s.handleGetWebsite)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{slug}", s.handleGetProduct)
		r.Get("/products/{slug}/comments", s.handleListComments)
		r.Get("/products/{slug}/comments/count", s.handleCountComments)
		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Post("/products/{slug}/comments", s.handleAddComment)
			r.Delete("/products/{slug}/comments/{id}", s.handleDeleteComment)
		})
	})

	r.With(s.Authenticate).Post("/api/websites", s.handleCreateWebsite)

	// Tenant-scoped operations.
	r.Route("/api/website", func(r chi.Router) {
		r.Use(s.Authenticate)
		r.Use(s.ResolveWebsite)

		// Billing stays reachable while the subscription is lapsed, or there
		// would be no way back in.
		r.With(s.RequireOwner).Post("/subscription/renew", s.handleRenewSubscription)

		r.With(s.RequirePermissions()).Get("/updates", s.handleListUpdates)

		r.Group(func(r chi.Router) {
			r.Use(s.CheckSubscription)

			r.With(s.RequireOwner).Put("/domain", s.handleRenameWebsite)
			r.With(s.RequireOwner).Put("/online", s.handleSetOnline)
			r.With(s.RequirePermissions()).Put("/bio", s.handleUpdateBio)
			r.With(s.RequirePermissions(permSEO)).Put("/seo", s.handleUpdateSEO)
			r.With(s.RequirePermissions()).Delete("/updates", s.handleDeleteUpdates)

			r.Route("/supports", func(r chi.Router) {
				r.With(s.RequirePermissions()).Get("/", s.handleListSupports)
				r.Group(func(r chi.Router) {
					r.Use(s.RequireOwner)
					r.Post("/request", s.handleRequestAddSupport)
					r.Post("/", s.handleAddSupport)
					r.Delete("/{userID}", s.handleRemoveSupport)
					r.Post("/{userID}/permissions", s.handleGrantPermission)
					r.Delete("/{userID}/permissions/{permission}", s.handleRevokePermission)
				})
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(s.RequirePermissions(permProduct))
				r.Post("/", s.handleCreateProduct)
				r.Put("/{slug}", s.handleUpdateProduct)
				r.Delete("/{slug}", s.handleDeleteProduct)
			})

			r.Route("/tickets", func(r chi.Router) {
				r.Post("/", s.handleOpenTicket)
				r.With(s.RequirePermissions(permComment, permOrder)).Get("/", s.handleListTickets)
				r.With(s.RequirePermissions(permComment, permOrder)).Post("/{id}/answer", s.handleAnswerTicket)
				r.With(s.RequirePermissions(permComment, permOrder)).Post("/{id}/close", s.handleCloseTicket)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.RequireOwner)
				r.Post("/transfer/request", s.handleRequestTransfer)
				r.Post("/transfer/confirm", s.handleConfirmTransfer)
				r.Post("/delete/request", s.handleRequestDeletion)
				r.Post("/delete/confirm", s.handleConfirmDeletion)
			})
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
