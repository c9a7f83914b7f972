// ABOUTME: Local swarmbase backend: a chi router exposing /api/{agents,tools,frameworks,swarms} over the SQLite store.
// ABOUTME: Implements the resource contract the client package speaks, including membership sub-routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/2389-research/swarmbase/render"
	"github.com/2389-research/swarmbase/store"
)

// Config holds the listen address and optional bearer token.
type Config struct {
	Addr      string // default: 127.0.0.1:7780
	AuthToken string // empty disables authentication
}

// Server serves the resource API.
type Server struct {
	store  *store.Store
	router chi.Router
	addr   string
	token  string
	now    func() time.Time
	charts *render.Cache
}

// New builds a server over st.
func New(st *store.Store, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7780"
	}
	s := &Server{
		store:  st,
		addr:   cfg.Addr,
		token:  cfg.AuthToken,
		now:    time.Now,
		charts: render.NewCache(render.Render, 10*time.Minute, render.DefaultMaxEntries),
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Bool("auth", s.token != "").Msg("swarmbase backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.token != "" {
		r.Use(authMiddleware(s.token))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		for _, kind := range store.Kinds() {
			r.Route("/"+string(kind), func(r chi.Router) {
				r.Get("/", s.handleList(kind))
				r.Post("/", s.handleCreate(kind))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGet(kind))
					r.Put("/", s.handleUpdate(kind))
					r.Delete("/", s.handleDelete(kind))
					s.memberRoutes(kind, r)
				})
			})
		}
	})
	return r
}

// memberRoutes registers the membership sub-routes of one collection.
func (s *Server) memberRoutes(kind store.Kind, r chi.Router) {
	switch kind {
	case store.Agents:
		r.Get("/tools", s.handleAgentTools)
		r.Post("/tools", s.handleAddMember(store.Agents, "tools", store.Tools, false))
		r.Delete("/tools", s.handleRemoveMember(store.Agents, "tools"))
		r.Get("/relationships", s.handleRelationships)
		r.Post("/relationships", s.handleAddRelationship)
		r.Delete("/relationships/{relatedID}", s.handleRemoveRelationship)
	case store.Frameworks:
		r.Post("/swarms", s.handleAddMember(store.Frameworks, "swarms", store.Swarms, true))
		r.Delete("/swarms", s.handleRemoveMember(store.Frameworks, "swarms"))
		r.Post("/tools", s.handleAddMember(store.Frameworks, "tools", store.Tools, false))
	case store.Swarms:
		r.Post("/agents", s.handleAddMember(store.Swarms, "agents", store.Agents, true))
		r.Delete("/agents", s.handleRemoveMember(store.Swarms, "agents"))
		r.Get("/chart", s.handleSwarmChart)
		r.Get("/lint", s.handleSwarmLint)
	}
}
