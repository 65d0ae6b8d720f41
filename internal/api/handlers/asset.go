package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/dom/broadcast-overlay/internal/assets"
	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AssetHandler struct {
	cache *assets.Cache
}

func NewAssetHandler(cache *assets.Cache) *AssetHandler {
	return &AssetHandler{cache: cache}
}

type AssetUploadResponse struct {
	Metadata domain.AssetMetadata `json:"metadata"`
	URL      string               `json:"url"`
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cache.List())
}

func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Multipart field 'file' required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	meta, err := h.cache.Put(r.Context(), slot, header.Filename, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptySlot):
			http.Error(w, "Asset slot must not be empty", http.StatusBadRequest)
		case errors.Is(err, domain.ErrAssetTooLarge):
			http.Error(w, "Asset exceeds maximum size", http.StatusRequestEntityTooLarge)
		default:
			log.Printf("ERROR [asset.Upload]: %v", err)
			http.Error(w, "Failed to store asset", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AssetUploadResponse{
		Metadata: meta,
		URL:      h.cache.URL(meta.Slot, meta.UploadedAt),
	})
}

func (h *AssetHandler) Content(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")

	asset, err := h.cache.Content(r.Context(), slot)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [asset.Content]: %v", err)
		http.Error(w, "Failed to load asset", http.StatusInternalServerError)
		return
	}

	// Content is keyed by the upload token, so it can be cached forever: a
	// re-upload changes the token and with it the URL.
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(asset.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(asset.Data)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")
	h.cache.Delete(r.Context(), slot)
	w.WriteHeader(http.StatusNoContent)
}
