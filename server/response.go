package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"stemhub/core/auth"
	"stemhub/logger"
	"stemhub/service"
	"stemhub/storage"

	"github.com/zeebo/errs"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ErrMalformed rejects bodies that cannot be decoded.
var ErrMalformed = errs.Class("malformed request")

// Response 是所有接口统一的返回结构
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("[HTTP] 写入响应失败", logger.ErrorField(err))
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{Status: statusSuccess, Message: message, Data: data})
}

// writeError is the only place where errors become HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	resp := Response{Status: statusError, Message: message}
	var fields FieldErrors
	if errors.As(err, &fields) {
		resp.Data = map[string]string(fields)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("[HTTP] 请求处理失败",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.ErrorField(err))
	} else {
		logger.Debug("[HTTP] 请求被拒绝",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.ErrorField(err))
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case service.ErrNotFound.Has(err):
		return http.StatusNotFound, publicMessage(err, service.ErrNotFound)
	case storage.ErrNotFound.Has(err):
		return http.StatusNotFound, "file not found"
	case service.ErrValidation.Has(err):
		return http.StatusBadRequest, publicMessage(err, service.ErrValidation)
	case ErrMalformed.Has(err):
		return http.StatusBadRequest, publicMessage(err, ErrMalformed)
	case storage.ErrInvalidFileType.Has(err):
		return http.StatusBadRequest, "Invalid file type. Only audio/mpeg and audio/wav are allowed."
	case storage.ErrFileTooLarge.Has(err):
		return http.StatusRequestEntityTooLarge, publicMessage(err, storage.ErrFileTooLarge)
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "File too large. The limit is " + storage.FormatSize(maxBytes.Limit) + "."
	case auth.ErrUnauthorized.Has(err):
		return http.StatusUnauthorized, publicMessage(err, auth.ErrUnauthorized)
	case auth.ErrForbidden.Has(err):
		return http.StatusForbidden, publicMessage(err, auth.ErrForbidden)
	}
	return http.StatusInternalServerError, "Internal server error"
}

// publicMessage strips the class prefix from err's text.
func publicMessage(err error, class errs.Class) string {
	return strings.TrimPrefix(err.Error(), string(class)+": ")
}
