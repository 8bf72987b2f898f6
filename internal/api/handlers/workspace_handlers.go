package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/or4cl3/forge/pkg/models"
)

// CreateWorkspace opens a new editing workspace. The kind defaults to
// llm when omitted.
func (h *Handlers) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind models.AssetKind `json:"kind"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Kind == "" {
		req.Kind = models.KindLLM
	}
	if !req.Kind.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown asset kind %q", req.Kind))
		return
	}

	snap, err := h.Workspaces.Create(req.Kind)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (h *Handlers) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Workspaces.List())
}

func (h *Handlers) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Workspaces.Get(chi.URLParam(r, "workspaceId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspaces.Delete(chi.URLParam(r, "workspaceId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetKind switches the workspace to a fresh template of the requested
// kind.
func (h *Handlers) SetKind(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind models.AssetKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Kind.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown asset kind %q", req.Kind))
		return
	}

	snap, err := h.Workspaces.SetKind(chi.URLParam(r, "workspaceId"), req.Kind)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// PatchConfig updates one scalar field. A section/field that does not
// apply to the active kind leaves the configuration unchanged and still
// returns 200 with the current state.
func (h *Handlers) PatchConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section string `json:"section"`
		Field   string `json:"field"`
		Value   any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.Workspaces.SetField(chi.URLParam(r, "workspaceId"), req.Section, req.Field, req.Value)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) ToggleSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Item string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.Workspaces.ToggleSet(chi.URLParam(r, "workspaceId"), req.Path, req.Item)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) PatchWebSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.Workspaces.SetWebSearchField(chi.URLParam(r, "workspaceId"), req.Field, req.Value)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Workspaces.Status(chi.URLParam(r, "workspaceId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// PutBioSignal either installs an externally measured sample or, when
// the simulate flag is present, toggles the built-in signal simulator.
func (h *Handlers) PutBioSignal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Simulate   *bool   `json:"simulate,omitempty"`
		Active     bool    `json:"active"`
		Engagement float64 `json:"engagement"`
		Focus      float64 `json:"focus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "workspaceId")
	if req.Simulate != nil {
		var err error
		if *req.Simulate {
			err = h.Workspaces.StartBioFeed(id)
		} else {
			err = h.Workspaces.StopBioFeed(id)
		}
		if err != nil {
			respondStoreError(w, err)
			return
		}
		snap, err := h.Workspaces.Get(id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, snap)
		return
	}

	snap, err := h.Workspaces.SetBioSignal(id, models.BioSignal{
		Active:     req.Active,
		Engagement: req.Engagement,
		Focus:      req.Focus,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Describe schedules debounced synthesis; the settled result arrives on
// the workspace event stream.
func (h *Handlers) Describe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "workspaceId")
	// The synthesis outlives this request: the context must survive the
	// 202 response or the debounced call dies with context canceled.
	ctx := context.WithoutCancel(r.Context())
	if err := h.Workspaces.Describe(ctx, id, req.Description); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// Synthesize runs synthesis immediately and returns the installed
// configuration.
func (h *Handlers) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := chi.URLParam(r, "workspaceId")
	snap, err := h.Workspaces.Synthesize(r.Context(), id, req.Description)
	if err != nil {
		if _, getErr := h.Workspaces.Get(id); getErr != nil {
			respondStoreError(w, getErr)
			return
		}
		respondGenError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// WorkspaceEvents streams workspace change events over SSE until the
// client disconnects.
func (h *Handlers) WorkspaceEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceId")
	if _, err := h.Workspaces.Get(id); err != nil {
		respondStoreError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ch := h.Workspaces.Subscribe(id)
	defer h.Workspaces.Unsubscribe(id, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(ev)
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ExportConfig serves the active configuration as a downloadable
// versioned envelope.
func (h *Handlers) ExportConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceId")
	env, err := h.Workspaces.Export(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("forge-%s-config.json", env.Config.Kind)))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(env)
}

// ImportConfig installs an exported envelope, also accepting a bare
// configuration for compatibility with hand-edited files.
func (h *Handlers) ImportConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var env models.ConfigEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Config.Kind == "" {
		// Bare configuration without the envelope wrapper.
		var cfg models.UnifiedConfig
		if err := json.Unmarshal(body, &cfg); err != nil || cfg.Kind == "" {
			respondError(w, http.StatusBadRequest, "Not a valid configuration file")
			return
		}
		env = models.ConfigEnvelope{SchemaVersion: models.SchemaVersion, Config: cfg}
	}

	id := chi.URLParam(r, "workspaceId")
	snap, err := h.Workspaces.Import(id, env)
	if err != nil {
		if _, getErr := h.Workspaces.Get(id); getErr != nil {
			respondStoreError(w, getErr)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info().Str("workspace", id).Str("kind", string(snap.Config.Kind)).Msg("Configuration imported")
	respondJSON(w, http.StatusOK, snap)
}
