package server

import (
	"net/http"

	"stemhub/model"
	"stemhub/service"
	"stemhub/storage"

	"github.com/gorilla/mux"
)

type createTrackRequest struct {
	User  string        `json:"user" validate:"required"`
	Name  string        `json:"name" validate:"required"`
	Genre []model.Genre `json:"genre" validate:"omitempty,dive,genre"`
}

type updateTrackRequest struct {
	Name  *string        `json:"name" validate:"required,min=1"`
	User  *string        `json:"user" validate:"omitnil,min=1"`
	Genre *[]model.Genre `json:"genre" validate:"omitnil,dive,genre"`
}

// CreateTrackHandler POST /tracks
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createTrackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkAssignedUser(p, req.User); err != nil {
		writeError(w, r, err)
		return
	}

	track, err := h.tracks.Create(r.Context(), service.CreateTrackInput{
		User:  req.User,
		Name:  req.Name,
		Genre: req.Genre,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Track created successfully.", track)
}

// GetTracksHandler GET /tracks
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.tracks.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tracks retrieved successfully.", tracks)
}

// GetTrackHandler GET /tracks/{id}
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.tracks.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Track retrieved successfully.", track)
}

// UpdateTrackHandler PUT /tracks/{id}
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateTrackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.tracks.GetByID(r.Context(), id)
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

	track, err := h.tracks.Update(r.Context(), id, service.UpdateTrackInput{
		Name:  req.Name,
		User:  req.User,
		Genre: req.Genre,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Track updated successfully.", track)
}

// UploadTrackAudioHandler PUT /tracks/{id}/audio
func (h *APIHandler) UploadTrackAudioHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.tracks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}

	audioPath, err := h.receiveAudio(w, r, storage.KindTrack, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	track, err := h.tracks.UploadAudio(r.Context(), id, service.UploadAudioInput{AudioPath: audioPath})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Audio uploaded successfully.", track)
}

// DeleteTrackHandler DELETE /tracks/{id}
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := h.tracks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := checkOwner(p, existing.User); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tracks.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Track successfully deleted.", nil)
}
