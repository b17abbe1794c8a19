package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	authorizehandler "github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/authorize"
	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/decode"
	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/health"
	sessionhandler "github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/session"
	tokenhandler "github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/token"
	"github.com/auric-id/oauth2-playground/internal/playground"
)

type server struct {
	cfg    Config
	router *chi.Mux
	flow   *playground.Flow
	log    *zap.Logger
}

func newServer(cfg Config, flow *playground.Flow, log *zap.Logger) *server {
	srv := &server{
		cfg:    cfg,
		router: chi.NewRouter(),
		flow:   flow,
		log:    log,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.RealIP)
	srv.router.Use(requestLogger(log))
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(middleware.Timeout(30 * time.Second))

	srv.routes()
	return srv
}

func (s *server) routes() {
	sessions := sessionhandler.New(s.flow)
	authz := authorizehandler.New(s.flow)
	tokens := tokenhandler.New(s.flow)

	s.router.Method(http.MethodGet, "/health", health.New(s.flow).WithVersion(Version))
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/playground", func(r chi.Router) {
		r.Post("/sessions", sessions.Create)
		r.Post("/decode", decode.New().ServeHTTP)
		r.Get("/callback", authz.Callback)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Delete)
			r.Post("/select-client", sessions.SelectClient)
			r.Post("/reset", sessions.Reset)
			r.Post("/back", sessions.Back)

			r.Post("/authorize-url", authz.BuildURL)

			r.Post("/exchange", tokens.Exchange)
			r.Post("/refresh", tokens.Refresh)
			r.Post("/introspect", tokens.Introspect)
			r.Post("/revoke", tokens.Revoke)
			r.Get("/userinfo", tokens.UserInfo)
			r.Get("/tokens/{kind}", tokens.Inspect)
		})
	})
}

// requestLogger logs each request once it completes, with the request ID the
// middleware assigned.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
