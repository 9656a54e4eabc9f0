// Package server assembles the HTTP server: the echo router, its middleware,
// and the /api/v1 services, wired to the store and the inference backend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/pkg/errors"

	"github.com/useattune/attune/plugin/inference"
	"github.com/useattune/attune/plugin/persona"
	"github.com/useattune/attune/server/profile"
	apiv1 "github.com/useattune/attune/server/router/api/v1"
	"github.com/useattune/attune/store"
)

// Server is the assembled attune server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
}

// NewServer wires the router. The inference client is only built when an
// endpoint is configured; without one the chat route answers 503 and
// everything else works normally.
func NewServer(ctx context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	var completer inference.Completer
	if prof.InferenceBaseURL != "" {
		client, err := inference.NewClient(inference.Config{
			BaseURL: prof.InferenceBaseURL,
			APIKey:  prof.InferenceAPIKey,
			Model:   prof.InferenceModel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create inference client")
		}
		completer = client
	} else {
		slog.Warn("no inference endpoint configured, chat will answer 503")
	}

	e.GET("/healthz", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	apiv1.NewAPIV1Service(prof.Secret, prof, st, persona.Default(), completer).Register(e)

	return &Server{
		Profile:    prof,
		Store:      st,
		echoServer: e,
	}, nil
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echoServer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("server started", "addr", addr, "mode", s.Profile.Mode, "version", s.Profile.Version)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down server", "err", err)
		}
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}
	slog.Info("server shut down")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"latency", time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				attrs = append(attrs, "err", err)
			}
			slog.Info("request", attrs...)
			return err
		}
	}
}
