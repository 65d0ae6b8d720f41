package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/store"
)

// StateHandler exposes the pull fallback of the sync protocol: clients that
// miss a broadcast (or have no WebSocket at all) can fetch or replace the
// full snapshot over plain HTTP.
type StateHandler struct {
	store *store.Store
}

func NewStateHandler(st *store.Store) *StateHandler {
	return &StateHandler{store: st}
}

func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.store.State())
}

func (h *StateHandler) Replace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	state, err := h.store.SetState(r.Context(), body)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedState) {
			http.Error(w, "Malformed state document", http.StatusBadRequest)
			return
		}
		log.Printf("ERROR [state.Replace]: %v", err)
		http.Error(w, "Failed to replace state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

func (h *StateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state := h.store.Reset(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}
