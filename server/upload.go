package server

import (
	"errors"
	"net/http"
	"strings"

	"stemhub/storage"
)

const (
	// audioField is the multipart field carrying the file.
	audioField = "audio"
	// multipartMemory is kept in memory; larger parts spill to temp files.
	multipartMemory = 32 << 20
	// multipartOverhead leaves room for boundaries and part headers.
	multipartOverhead = 1 << 20
)

// receiveAudio reads the "audio" part of a multipart request, checks its
// type and size, and stores it as {ownerID}-{filename}. Nothing is written
// when a check fails.
func (h *APIHandler) receiveAudio(w http.ResponseWriter, r *http.Request, kind, ownerID string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			return "", storage.TooLarge(h.maxUpload)
		}
		return "", ErrMalformed.New("invalid multipart form: %v", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(audioField)
	if err != nil {
		return "", ErrMalformed.New("missing '%s' file in form", audioField)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := storage.CheckUpload(contentType, header.Size, h.maxUpload); err != nil {
		return "", err
	}

	return h.files.Save(r.Context(), kind, ownerID, storage.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
}
