// ABOUTME: CRUD handlers for the resource collections plus JSON response helpers.
// ABOUTME: Tool writes turn code/version fields into timestamped code_versions entries.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/2389-research/swarmbase/builder"
	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/render"
	"github.com/2389-research/swarmbase/store"
)

// maxBodyBytes bounds request bodies; tool code is the largest payload.
const maxBodyBytes = 4 << 20

var errBadRequest = errors.New("bad request")

// urlParam returns a route parameter with percent-escapes decoded. chi
// matches on RawPath when the request carried escapes the default encoding
// would not produce (an escaped '/'), and hands back the raw segment.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cached_charts": s.charts.Len()})
}

func (s *Server) handleList(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := s.store.List(r.Context(), kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func (s *Server) handleCreate(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := decodeDocument(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if kind == store.Tools {
			s.recordCodeVersion(doc)
		}
		created, err := s.store.Create(r.Context(), kind, doc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Info().Str("kind", string(kind)).Interface("id", created["id"]).Msg("resource created")
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) handleGet(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		doc, err := s.store.Get(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if ts, err := s.store.UpdatedAt(r.Context(), kind, id); err == nil {
			w.Header().Set("Last-Modified", ts.UTC().Format(http.TimeFormat))
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// handleUpdate merges the request body over the stored document.
func (s *Server) handleUpdate(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		patch, err := decodeDocument(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := s.store.Get(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for k, v := range patch {
			doc[k] = v
		}
		if kind == store.Tools {
			s.recordCodeVersion(doc)
		}
		updated, err := s.store.Update(r.Context(), kind, id, doc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleDelete(kind store.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		if err := s.store.Delete(r.Context(), kind, id); err != nil {
			writeError(w, r, err)
			return
		}
		if kind == store.Swarms {
			s.charts.Invalidate(id)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// recordCodeVersion moves top-level code and version fields into a new
// code_versions entry. Documents without code are left alone.
func (s *Server) recordCodeVersion(doc store.Document) {
	code, ok := doc["code"]
	if !ok {
		delete(doc, "version")
		return
	}
	entry := map[string]any{
		"version":    doc["version"],
		"code":       code,
		"created_at": s.now().UTC().Format(builder.CodeVersionLayout),
	}
	if entry["version"] == nil {
		entry["version"] = ""
	}
	versions, _ := doc["code_versions"].([]any)
	doc["code_versions"] = append(versions, entry)
	delete(doc, "code")
	delete(doc, "version")
}

func decodeDocument(r *http.Request) (store.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	doc := store.Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", errBadRequest, err)
	}
	if doc == nil {
		doc = store.Document{}
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store and request errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrExists):
		status = http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, render.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, chart.ErrUnknownKind):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrGraphvizMissing):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
