// ABOUTME: Read-only swarm views served by the backend: the agency chart as DOT/SVG/PNG and lint diagnostics.
// ABOUTME: Swarms are rehydrated with builder.SwarmBuilder over store-backed resource clients.
package server

import (
	"context"
	"net/http"

	"github.com/2389-research/swarmbase/builder"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/dot"
	"github.com/2389-research/swarmbase/export"
	"github.com/2389-research/swarmbase/lint"
	"github.com/2389-research/swarmbase/product"
	"github.com/2389-research/swarmbase/render"
	"github.com/2389-research/swarmbase/store"
)

// storeResource lets builders read and write one collection of the store
// directly, without an HTTP round trip.
type storeResource struct {
	store *store.Store
	kind  store.Kind
}

var _ builder.ResourceClient = storeResource{}

func (r storeResource) Create(ctx context.Context, rec client.Record) (client.Record, error) {
	doc, err := r.store.Create(ctx, r.kind, store.Document(rec))
	return client.Record(doc), err
}

func (r storeResource) Get(ctx context.Context, id string) (client.Record, error) {
	doc, err := r.store.Get(ctx, r.kind, id)
	return client.Record(doc), err
}

func (s *Server) loadSwarm(ctx context.Context, id string) (*product.Swarm, error) {
	sb := builder.NewSwarmBuilder(
		storeResource{s.store, store.Swarms},
		storeResource{s.store, store.Agents},
		storeResource{s.store, store.Tools},
	)
	if err := sb.FromID(ctx, id); err != nil {
		return nil, err
	}
	return sb.Product()
}

// handleSwarmChart serves the agency chart. ?format= is dot (default), svg or png.
func (s *Server) handleSwarmChart(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	swarm, err := s.loadSwarm(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := s.charts.Render(r.Context(), swarm.ID, dot.Serialize(export.ExportGraph(swarm)), format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSwarmLint(w http.ResponseWriter, r *http.Request) {
	swarm, err := s.loadSwarm(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	diags := lint.Lint(swarm)
	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"errors":      lint.Count(diags, lint.SeverityError),
		"warnings":    lint.Count(diags, lint.SeverityWarning),
		"diagnostics": diags,
	})
}
