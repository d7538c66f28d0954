package server

import (
	"net/http"
	"strings"
	"time"

	"stemhub/core/auth"
	"stemhub/logger"
)

// corsMiddleware 添加 CORS 头并直接应答预检请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger 记录每个请求的方法、路径、状态码和耗时
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("[HTTP] 请求完成",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("latency", time.Since(start)))
	})
}

// AuthMiddleware checks the bearer token and stores the principal in the
// request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, auth.ErrUnauthorized.New("Authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			writeError(w, r, auth.ErrUnauthorized.New("Invalid authorization header format"))
			return
		}

		claims, err := h.issuer.ParseToken(parts[1])
		if err != nil {
			writeError(w, r, auth.ErrUnauthorized.New("Invalid or expired token"))
			return
		}

		ctx := auth.WithPrincipal(r.Context(), auth.Principal{UserID: claims.UserID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireRole wraps next with authentication and a role gate.
func (h *APIHandler) RequireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		if len(roles) > 0 && !p.HasRole(roles...) {
			writeError(w, r, auth.ErrForbidden.New("role %q may not perform this action", p.Role))
			return
		}
		next(w, r)
	})
}

func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, auth.ErrUnauthorized.New("authentication required")
	}
	return p, nil
}

// checkOwner rejects callers that are neither admin nor ownerID.
func checkOwner(p auth.Principal, ownerID string) error {
	if !p.CanModify(ownerID) {
		return auth.ErrForbidden.New("only the owner or an admin may modify this resource")
	}
	return nil
}

// checkAssignedUser keeps non-admins from creating or moving resources on
// behalf of someone else.
func checkAssignedUser(p auth.Principal, user string) error {
	if p.IsAdmin() || user == p.UserID {
		return nil
	}
	return auth.ErrForbidden.New("user must match the authenticated user")
}
