package server

import (
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"stemhub/core/auth"
	"stemhub/logger"
	"stemhub/service"
	"stemhub/storage"

	"github.com/gorilla/mux"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	tracks    *service.TrackService
	stems     *service.StemService
	comments  *service.CommentService
	files     storage.FileStore
	issuer    *auth.Issuer
	maxUpload int64
	apiDoc    []byte
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Tracks        *service.TrackService
	Stems         *service.StemService
	Comments      *service.CommentService
	Files         storage.FileStore
	Issuer        *auth.Issuer
	MaxUploadSize int64
	// DocsServerURL is the servers[0].url of the OpenAPI document.
	DocsServerURL string
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(deps Deps) *APIHandler {
	maxUpload := deps.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxUploadSize
	}
	docsURL := deps.DocsServerURL
	if docsURL == "" {
		docsURL = APIBasePath
	}

	h := &APIHandler{
		tracks:    deps.Tracks,
		stems:     deps.Stems,
		comments:  deps.Comments,
		files:     deps.Files,
		issuer:    deps.Issuer,
		maxUpload: maxUpload,
	}
	h.apiDoc = marshalOpenAPI(docsURL, h.apiRoutes())
	return h
}

// HealthHandler reports that the process is serving.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "ok", map[string]string{
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeUploadHandler streams a stored audio file: /uploads/{kind}/{name}
func (h *APIHandler) ServeUploadHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, name := vars["kind"], vars["name"]
	if !storage.ValidKind(kind) {
		writeError(w, r, storage.ErrNotFound.New("unknown kind %q", kind))
		return
	}

	rc, err := h.files.Open(r.Context(), kind, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("[HTTP] 发送文件失败",
			logger.String("kind", kind),
			logger.String("name", name),
			logger.ErrorField(err))
	}
}
