// Package server implements the preview server: it mounts stored
// templates, runs them through the directive engine against a mock
// render context, and streams engine lifecycle signals to connected
// clients over websockets.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/weft/internal/config"
	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/engine"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/eval"
	"github.com/conneroisu/weft/internal/events"
	"github.com/conneroisu/weft/internal/logging"
	"github.com/conneroisu/weft/internal/notify"
	"github.com/conneroisu/weft/internal/sanitize"
	"github.com/conneroisu/weft/internal/store"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PreviewServer wires the full pipeline together: store, sanitizer,
// engine, event broker, and notification bus.
type PreviewServer struct {
	cfg    *config.Config
	logger logging.Logger

	store  *store.Store
	engine *engine.Engine
	broker *events.Broker
	bus    *notify.Bus

	httpServer *http.Server

	mu      sync.Mutex
	started bool
}

// New builds a preview server and its component pipeline from config.
func New(cfg *config.Config, logger logging.Logger) (*PreviewServer, error) {
	if cfg == nil {
		return nil, errors.ConfigError("NO_CONFIG", "configuration is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	bus := notify.NewBus()
	san := sanitize.New(sanitize.NewPolicy(cfg.Security), logger)
	broker := events.NewBroker(cfg.Engine.ThrottleInterval, logger)

	st, err := store.New(cfg.Store, cfg.Security.AllowedOrigins, san, bus, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.Options{
		Evaluator:        eval.NewJSEvaluator(),
		Sanitizer:        san,
		Broker:           broker,
		Loader:           st,
		Bus:              bus,
		Logger:           logger,
		AnimationTimeout: cfg.Engine.AnimationTimeout,
	})

	s := &PreviewServer{
		cfg:    cfg,
		logger: logger.WithComponent("server"),
		store:  st,
		engine: eng,
		broker: broker,
		bus:    bus,
	}
	return s, nil
}

// Engine exposes the directive engine, mainly for tests and the render
// command.
func (s *PreviewServer) Engine() *engine.Engine { return s.engine }

// Store exposes the template store.
func (s *PreviewServer) Store() *store.Store { return s.store }

func (s *PreviewServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/render", s.handleRender)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start runs the HTTP server until the context is canceled.
func (s *PreviewServer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.ConfigError("ALREADY_STARTED", "server already started")
	}
	s.started = true

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "preview server starting", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown stops the HTTP server and releases the pipeline.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	s.engine.BeforeNavigate()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, err, "store close failed")
	}
	if srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Render loads a stored template and processes its directives against
// the configured mock state.
func (s *PreviewServer) Render(ctx context.Context, path string) (string, error) {
	markup, err := s.store.Load(ctx, path)
	if err != nil {
		return "", err
	}

	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return "", errors.MarkupError(path, "stored template did not parse", err)
	}
	doc := &html.Node{Type: html.DocumentNode}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	doc.AppendChild(root)
	for _, n := range nodes {
		root.AppendChild(n)
	}

	rc := engine.NewContext("preview", s.cfg.Preview.MockState)
	s.engine.Apply(ctx, root, rc)

	return dom.RenderChildren(root)
}

func (s *PreviewServer) handleRender(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}

	out, err := s.Render(r.Context(), path)
	if err != nil {
		s.logger.Warn(r.Context(), err, "render failed", "path", path)
		var ee *errors.EngineError
		status := http.StatusInternalServerError
		if errors.As(err, &ee) {
			switch ee.Type {
			case errors.ErrorTypeConfig:
				status = http.StatusBadRequest
			case errors.ErrorTypeNetwork:
				status = http.StatusBadGateway
			}
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, out)
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
