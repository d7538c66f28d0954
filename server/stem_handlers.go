package server

import (
	"net/http"

	"stemhub/service"
	"stemhub/storage"

	"github.com/gorilla/mux"
)

type createStemRequest struct {
	User    string `json:"user" validate:"required"`
	Name    string `json:"name" validate:"required"`
	TrackID string `json:"trackId" validate:"required"`
}

type updateStemRequest struct {
	Name    *string `json:"name" validate:"required,min=1"`
	User    *string `json:"user" validate:"omitnil,min=1"`
	TrackID *string `json:"trackId" validate:"omitnil,min=1"`
}

// CreateStemHandler POST /stems
func (h *APIHandler) CreateStemHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createStemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkAssignedUser(p, req.User); err != nil {
		writeError(w, r, err)
		return
	}

	stem, err := h.stems.Create(r.Context(), service.CreateStemInput{
		User:    req.User,
		Name:    req.Name,
		TrackID: req.TrackID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Stem created successfully.", stem)
}

// GetStemsHandler GET /stems
func (h *APIHandler) GetStemsHandler(w http.ResponseWriter, r *http.Request) {
	stems, err := h.stems.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Stems retrieved successfully.", stems)
}

// GetStemHandler GET /stems/{id}
func (h *APIHandler) GetStemHandler(w http.ResponseWriter, r *http.Request) {
	stem, err := h.stems.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Stem retrieved successfully.", stem)
}

// UpdateStemHandler PUT /stems/{id}
func (h *APIHandler) UpdateStemHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.stems.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}
	if req.User != nil {
		if err := checkAssignedUser(p, *req.User); err != nil {
			writeError(w, r, err)
			return
		}
	}

	stem, err := h.stems.Update(r.Context(), id, service.UpdateStemInput{
		Name:    req.Name,
		User:    req.User,
		TrackID: req.TrackID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Stem updated successfully.", stem)
}

// UploadStemAudioHandler PUT /stems/{id}/audio
func (h *APIHandler) UploadStemAudioHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.stems.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}

	audioPath, err := h.receiveAudio(w, r, storage.KindStem, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stem, err := h.stems.UploadAudio(r.Context(), id, service.UploadAudioInput{AudioPath: audioPath})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Audio uploaded successfully.", stem)
}

// DeleteStemHandler DELETE /stems/{id}
func (h *APIHandler) DeleteStemHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.stems.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.stems.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Stem deleted successfully.", nil)
}
