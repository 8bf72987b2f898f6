// Package handlers implements the HTTP handlers for the Forge server.
// All state flows through the workspace manager and the Store
// interface; handlers do request plumbing only.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/or4cl3/forge/internal/catalog"
	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/internal/store"
	"github.com/or4cl3/forge/internal/workspace"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store      store.Store
	Workspaces *workspace.Manager
	Gen        gensvc.Service
}

// New creates a new Handlers instance with all dependencies.
func New(s store.Store, ws *workspace.Manager, gen gensvc.Service) *Handlers {
	return &Handlers{Store: s, Workspaces: ws, Gen: gen}
}

// Catalog serves the static pick lists the configuration forms are
// built from.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"domains":   catalog.Domains(),
		"goals":     catalog.Goals(),
		"tools":     catalog.Tools(),
		"stepTypes": catalog.StepTypes(),
		"frontends": catalog.Frontends(),
		"backends":  catalog.Backends(),
		"databases": catalog.Databases(),
		"themes":    catalog.Themes(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps storage and lookup failures onto HTTP codes.
func respondStoreError(w http.ResponseWriter, err error) {
	var nf *store.ErrNotFound
	if errors.As(err, &nf) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondGenError maps generation-service failures onto HTTP codes:
// rejected input is the caller's fault, everything else is an upstream
// failure.
func respondGenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gensvc.ErrDescriptionTooShort),
		errors.Is(err, gensvc.ErrDescriptionTooLong),
		errors.Is(err, gensvc.ErrInjectionSuspected):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gensvc.ErrNoCredential):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusBadGateway, err.Error())
	}
}
