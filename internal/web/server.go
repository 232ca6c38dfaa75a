package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/logging"
	"github.com/hpungsan/tratativa/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const shutdownTimeout = 5 * time.Second

// NewServer creates the HTTP server for the checklist UI.
func NewServer(env ops.Env, version, bind string, port int) (*http.Server, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}
	loc, err := env.Config.Location()
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		env:      env,
		renderer: NewRenderer(templateSub, version, loc, env.Logger),
	}

	return &http.Server{
		Addr:              net.JoinHostPort(bind, fmt.Sprint(port)),
		Handler:           newRouter(h, staticSub),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newRouter(h *Handlers, staticSub fs.FS) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeaders)
	router.Use(sameOrigin)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/checklist", http.StatusFound)
	})

	router.Get("/checklist", h.HandleChecklist)
	router.Post("/checklist/answers", h.HandleAnswerForm)
	router.Post("/checklist/contacts", h.HandleExtractForm)
	router.Post("/checklist/clear", h.HandleClearForm)

	router.Get("/templates", h.HandleTemplates)
	router.Post("/templates", h.HandleSaveTemplateForm)
	router.Post("/templates/reset", h.HandleResetTemplatesForm)
	router.Post("/templates/{id}/delete", h.HandleDeleteTemplateForm)
	router.Post("/templates/{id}/move", h.HandleMoveTemplateForm)

	router.Route("/api", func(r chi.Router) {
		r.Get("/state", h.HandleAPIState)
		r.Post("/answers", h.HandleAPIAnswers)
		r.Post("/contacts", h.HandleAPIContacts)
		r.Post("/clear", h.HandleAPIClear)

		r.Get("/templates", h.HandleAPIListTemplates)
		r.Post("/templates", h.HandleAPISaveTemplate)
		r.Post("/templates/reset", h.HandleAPIResetTemplates)
		r.Delete("/templates/{id}", h.HandleAPIDeleteTemplate)
		r.Post("/templates/{id}/move", h.HandleAPIMoveTemplate)
	})

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return router
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// sameOrigin rejects state-changing requests sent by another site's page.
// Requests without an Origin header (curl, the CLI) pass.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				http.Error(w, "cross-origin request rejected", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and shuts it down gracefully on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return serve(ctx, srv, ln, logger)
}

// serve runs srv on ln until ctx is done, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	logger.Info("checklist UI running", zap.String("url", "http://"+addr))
	if host, _, _ := net.SplitHostPort(addr); host == "0.0.0.0" || host == "::" {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
