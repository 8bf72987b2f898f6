package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/or4cl3/forge/internal/api/middleware"
	"github.com/or4cl3/forge/internal/catalog"
	"github.com/or4cl3/forge/internal/sigil"
	"github.com/or4cl3/forge/pkg/models"
)

func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	studio := middleware.GetStudio(r.Context())
	assets, err := h.Store.ListAssets(r.Context(), studio)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if assets == nil {
		assets = []models.SavedAsset{}
	}
	respondJSON(w, http.StatusOK, assets)
}

// SaveAsset snapshots a workspace's active configuration into the
// gallery. Saving under an existing name appends a version.
func (h *Handlers) SaveAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkspaceID string `json:"workspaceId"`
		Name        string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	snap, err := h.Workspaces.Get(req.WorkspaceID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	studio := middleware.GetStudio(r.Context())
	asset, err := h.Store.SaveVersion(r.Context(), studio, req.Name, sigil.Generate(snap.Config), snap.Config)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	log.Info().Str("asset", req.Name).Str("studio", studio).
		Int("versions", len(asset.Versions)).Msg("Asset version saved")
	respondJSON(w, http.StatusCreated, asset)
}

func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	studio := middleware.GetStudio(r.Context())
	asset, err := h.Store.GetAsset(r.Context(), studio, chi.URLParam(r, "assetName"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	studio := middleware.GetStudio(r.Context())
	name := chi.URLParam(r, "assetName")
	if err := h.Store.DeleteAsset(r.Context(), studio, name); err != nil {
		respondStoreError(w, err)
		return
	}
	log.Info().Str("asset", name).Str("studio", studio).Msg("Asset deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListAssetVersions(w http.ResponseWriter, r *http.Request) {
	studio := middleware.GetStudio(r.Context())
	asset, err := h.Store.GetAsset(r.Context(), studio, chi.URLParam(r, "assetName"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset.Versions)
}

func (h *Handlers) GetAssetVersion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "version must be an integer")
		return
	}

	studio := middleware.GetStudio(r.Context())
	version, err := h.Store.GetVersion(r.Context(), studio, chi.URLParam(r, "assetName"), index)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, version)
}

// LoadAssetVersion installs a saved snapshot into a workspace. Version
// -1 (the default when omitted) loads the latest.
func (h *Handlers) LoadAssetVersion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkspaceID string `json:"workspaceId"`
		Version     *int   `json:"version,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	index := -1
	if req.Version != nil {
		index = *req.Version
	}

	studio := middleware.GetStudio(r.Context())
	name := chi.URLParam(r, "assetName")
	version, err := h.Store.GetVersion(r.Context(), studio, name, index)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	snap, err := h.Workspaces.LoadConfig(req.WorkspaceID, version.Config)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	log.Info().Str("asset", name).Int("version", index).
		Str("workspace", req.WorkspaceID).Msg("Asset version loaded")
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	studio := middleware.GetStudio(r.Context())
	settings, err := h.Store.GetSettings(r.Context(), studio)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme     models.ThemeName `json:"theme"`
		Onboarded bool             `json:"onboarded"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Theme == "" {
		req.Theme = models.ThemeDefault
	}
	if _, ok := catalog.LookupTheme(req.Theme); !ok {
		respondError(w, http.StatusBadRequest, "unknown theme")
		return
	}

	studio := middleware.GetStudio(r.Context())
	settings := &models.StudioSettings{
		Studio:    studio,
		Theme:     req.Theme,
		Onboarded: req.Onboarded,
	}
	if err := h.Store.UpsertSettings(r.Context(), settings); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
