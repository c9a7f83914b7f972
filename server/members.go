// ABOUTME: Membership sub-routes: agent tools and relationships, framework swarms and tools, swarm agents.
// ABOUTME: Referenced resources must exist; adding an existing member is a no-op.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/store"
)

// memberID reads the referenced id from {"id": ...} or {"<singular>_id": ...}.
func memberID(doc store.Document, member store.Kind) (string, error) {
	rec := client.Record(doc)
	if id := rec.ID(); id != "" {
		return id, nil
	}
	key := string(member[:len(member)-1]) + "_id"
	if id := rec.String(key); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: missing id", errBadRequest)
}

// handleAddMember appends a member id to field. Object lists store
// {"id": ...} entries; plain lists store the id string.
func (s *Server) handleAddMember(parent store.Kind, field string, member store.Kind, asObjects bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := decodeDocument(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := memberID(body, member)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := s.store.Get(ctx, member, id); err != nil {
			writeError(w, r, err)
			return
		}
		doc, err := s.store.Get(ctx, parent, urlParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !slices.Contains(client.Record(doc).Strings(field), id) {
			list, _ := doc[field].([]any)
			if asObjects {
				doc[field] = append(list, map[string]any{"id": id})
			} else {
				doc[field] = append(list, id)
			}
		}
		updated, err := s.store.Update(ctx, parent, urlParam(r, "id"), doc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// handleRemoveMember drops every entry of field that refers to the id.
func (s *Server) handleRemoveMember(parent store.Kind, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := decodeDocument(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id := client.Record(body).ID()
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: missing id", errBadRequest))
			return
		}
		parentID := urlParam(r, "id")
		doc, err := s.store.Get(ctx, parent, parentID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		list, _ := doc[field].([]any)
		kept := slices.DeleteFunc(slices.Clone(list), func(item any) bool {
			return entryID(item) == id
		})
		if len(kept) == len(list) {
			writeError(w, r, fmt.Errorf("%w: %s %s has no %s %s", store.ErrNotFound, parent, parentID, field, id))
			return
		}
		doc[field] = kept
		if _, err := s.store.Update(ctx, parent, parentID, doc); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func entryID(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		return client.Record(v).ID()
	}
	return ""
}

// handleAgentTools resolves the agent's tool ids to tool documents. Ids
// whose tool has since been deleted are skipped.
func (s *Server) handleAgentTools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agent, err := s.store.Get(ctx, store.Agents, urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tools := []store.Document{}
	for _, id := range client.Record(agent).Strings("tools") {
		t, err := s.store.Get(ctx, store.Tools, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		tools = append(tools, t)
	}
	writeJSON(w, http.StatusOK, tools)
}

func (s *Server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	agent, err := s.store.Get(r.Context(), store.Agents, urlParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rels := client.Record(agent).Records("relationships")
	writeJSON(w, http.StatusOK, rels)
}

// handleAddRelationship records a relationship whose source defaults to the
// agent in the path. The kind must be supervises or collaborates.
func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID := urlParam(r, "id")
	body, err := decodeDocument(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec := client.Record(body)
	kind, err := chart.ParseKind(rec.String("relationship_type"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	source := rec.String("source_agent_id")
	if source == "" {
		source = agentID
	}
	target := rec.String("target_agent_id")
	if target == "" {
		writeError(w, r, fmt.Errorf("%w: missing target_agent_id", errBadRequest))
		return
	}
	for _, id := range []string{source, target} {
		if _, err := s.store.Get(ctx, store.Agents, id); err != nil {
			writeError(w, r, err)
			return
		}
	}

	agent, err := s.store.Get(ctx, store.Agents, agentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rel := map[string]any{
		"relationship_type": string(kind),
		"source_agent_id":   source,
		"target_agent_id":   target,
	}
	list, _ := agent["relationships"].([]any)
	dup := slices.ContainsFunc(list, func(item any) bool {
		m, ok := item.(map[string]any)
		return ok && m["relationship_type"] == rel["relationship_type"] &&
			m["source_agent_id"] == source && m["target_agent_id"] == target
	})
	if !dup {
		agent["relationships"] = append(list, rel)
	}
	updated, err := s.store.Update(ctx, store.Agents, agentID, agent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, updated)
}

// handleRemoveRelationship drops every relationship of the agent that
// targets relatedID.
func (s *Server) handleRemoveRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, relatedID := urlParam(r, "id"), urlParam(r, "relatedID")
	agent, err := s.store.Get(ctx, store.Agents, agentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, _ := agent["relationships"].([]any)
	kept := slices.DeleteFunc(slices.Clone(list), func(item any) bool {
		m, ok := item.(map[string]any)
		return ok && client.Record(m).String("target_agent_id") == relatedID
	})
	if len(kept) == len(list) {
		writeError(w, r, fmt.Errorf("%w: agent %s has no relationship with %s", store.ErrNotFound, agentID, relatedID))
		return
	}
	agent["relationships"] = kept
	if _, err := s.store.Update(ctx, store.Agents, agentID, agent); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
