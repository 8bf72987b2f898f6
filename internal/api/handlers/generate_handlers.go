package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/pkg/models"
)

// sseWriter prepares an SSE response and returns the flusher, or nil
// after writing an error when streaming is unsupported.
func sseWriter(w http.ResponseWriter) http.Flusher {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return nil
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher
}

func sseError(w http.ResponseWriter, flusher http.Flusher, err error) {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
	flusher.Flush()
}

// StreamNarrative streams the blueprint narrative for the workspace's
// active configuration as SSE text fragments.
func (h *Handlers) StreamNarrative(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Workspaces.Get(chi.URLParam(r, "workspaceId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	flusher := sseWriter(w)
	if flusher == nil {
		return
	}

	err = h.Gen.StreamNarrative(r.Context(), snap.Config, func(chunk string) error {
		payload, _ := json.Marshal(map[string]string{"text": chunk})
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		sseError(w, flusher, err)
		return
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

// StreamSimulation runs a grid-world simulation for an agent workspace
// and streams the structured actions.
func (h *Handlers) StreamSimulation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task string `json:"task"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Task == "" {
		respondError(w, http.StatusBadRequest, "task is required")
		return
	}

	snap, err := h.Workspaces.Get(chi.URLParam(r, "workspaceId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if snap.Config.Kind != models.KindAgent || snap.Config.Agent == nil {
		respondError(w, http.StatusBadRequest, "simulation requires an agent workspace")
		return
	}

	flusher := sseWriter(w)
	if flusher == nil {
		return
	}

	err = h.Gen.StreamSimulation(r.Context(), *snap.Config.Agent, req.Task, func(action gensvc.SimAction) error {
		payload, _ := json.Marshal(action)
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		sseError(w, flusher, err)
		return
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

// RunDilemma generates an ethical dilemma for the workspace's
// configuration, has the configured asset resolve it, and returns both.
func (h *Handlers) RunDilemma(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Workspaces.Get(chi.URLParam(r, "workspaceId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	dilemma, err := h.Gen.GenerateDilemma(r.Context(), snap.Config)
	if err != nil {
		respondGenError(w, err)
		return
	}
	report, err := h.Gen.ResolveDilemma(r.Context(), snap.Config, dilemma)
	if err != nil {
		respondGenError(w, err)
		return
	}

	log.Info().Str("workspace", snap.ID).Str("choice", report.Choice).Msg("Dilemma resolved")
	respondJSON(w, http.StatusOK, map[string]any{
		"dilemma": dilemma,
		"report":  report,
	})
}
