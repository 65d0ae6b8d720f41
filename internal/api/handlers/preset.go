package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository"
	"github.com/dom/broadcast-overlay/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PresetHandler manages named full-state snapshots. Applying a preset is a
// bulk SetState, so it flows through the store and broadcasts like any other
// mutation.
type PresetHandler struct {
	presetRepo repository.PresetRepository
	store      *store.Store
}

func NewPresetHandler(presetRepo repository.PresetRepository, st *store.Store) *PresetHandler {
	return &PresetHandler{
		presetRepo: presetRepo,
		store:      st,
	}
}

type CreatePresetRequest struct {
	Name string `json:"name"`
	// State is optional; when omitted the current live state is saved.
	State json.RawMessage `json:"state,omitempty"`
}

type PresetResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	State     json.RawMessage `json:"state"`
	CreatedAt int64           `json:"createdAt"`
}

func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presetRepo.GetAll(r.Context())
	if err != nil {
		log.Printf("ERROR [preset.List]: %v", err)
		http.Error(w, "Failed to list presets", http.StatusInternalServerError)
		return
	}

	resp := make([]PresetResponse, len(presets))
	for i, p := range presets {
		resp[i] = PresetResponse{
			ID:        p.ID.String(),
			Name:      p.Name,
			State:     json.RawMessage(p.Data),
			CreatedAt: p.CreatedAt.UnixMilli(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *PresetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	data := []byte(req.State)
	if len(data) == 0 {
		var err error
		data, err = json.Marshal(h.store.State())
		if err != nil {
			log.Printf("ERROR [preset.Create]: %v", err)
			http.Error(w, "Failed to snapshot state", http.StatusInternalServerError)
			return
		}
	} else {
		// Validate the supplied document before storing it.
		var state domain.BroadcastState
		if err := json.Unmarshal(data, &state); err != nil {
			http.Error(w, "Malformed state document", http.StatusBadRequest)
			return
		}
	}

	preset := &domain.Preset{
		ID:   uuid.New(),
		Name: req.Name,
		Data: data,
	}

	if err := h.presetRepo.Create(r.Context(), preset); err != nil {
		if errors.Is(err, domain.ErrEmptyPresetName) {
			http.Error(w, "Preset name required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrPresetNameTaken) {
			http.Error(w, "Preset name is already taken", http.StatusConflict)
			return
		}
		log.Printf("ERROR [preset.Create]: %v", err)
		http.Error(w, "Failed to create preset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(PresetResponse{
		ID:        preset.ID.String(),
		Name:      preset.Name,
		State:     json.RawMessage(preset.Data),
		CreatedAt: preset.CreatedAt.UnixMilli(),
	})
}

func (h *PresetHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid preset ID", http.StatusBadRequest)
		return
	}

	preset, err := h.presetRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPresetNotFound) {
			http.Error(w, "Preset not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [preset.Apply]: %v", err)
		http.Error(w, "Failed to load preset", http.StatusInternalServerError)
		return
	}

	state, err := h.store.SetState(r.Context(), preset.Data)
	if err != nil {
		log.Printf("ERROR [preset.Apply]: stored preset %s is malformed: %v", id, err)
		http.Error(w, "Preset document is malformed", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid preset ID", http.StatusBadRequest)
		return
	}

	if err := h.presetRepo.Delete(r.Context(), id); err != nil {
		log.Printf("ERROR [preset.Delete]: %v", err)
		http.Error(w, "Failed to delete preset", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
