// Package middleware provides HTTP middleware for the trade service.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/httputil"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/token"
)

// AuthMiddleware guards protected routes with access-token verification.
// It holds no state beyond the codec; there is no session storage and no
// revocation list.
type AuthMiddleware struct {
	codec  *token.Codec
	logger *logging.Logger
}

// NewAuthMiddleware creates the access-token gate.
func NewAuthMiddleware(codec *token.Codec, logger *logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewDefault("auth")
	}
	return &AuthMiddleware{codec: codec, logger: logger}
}

// Handler verifies the bearer token and attaches the caller's identity to
// the request context. Expired and malformed tokens produce distinct 401
// messages; unexpected verification failures surface as 500s so a broken
// server is never reported as a bad token.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, errors.Unauthorized("token required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			m.respondError(w, r, errors.Unauthorized("token required"))
			return
		}

		claims, err := m.codec.VerifyAccess(parts[1])
		if err != nil {
			serviceErr := errors.GetServiceError(err)
			if serviceErr == nil || (serviceErr.Code != errors.CodeTokenExpired && serviceErr.Code != errors.CodeTokenInvalid) {
				m.logger.WithContext(r.Context()).WithError(err).Error("token verification failed unexpectedly")
				m.respondError(w, r, errors.Internal("internal server error", err))
				return
			}
			m.respondError(w, r, serviceErr)
			return
		}

		ctx := logging.WithUserID(r.Context(), claims.UserID)
		ctx = logging.WithEmail(ctx, claims.Email)

		m.logger.WithContext(ctx).Debug("authentication successful")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err *errors.ServiceError) {
	httputil.WriteErrorResponse(w, r, err.HTTPStatus, string(err.Code), err.Message, nil)

	m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": err.HTTPStatus,
	}).Warn("authentication failed")
}

// GetUserID extracts the authenticated user id from context.
func GetUserID(ctx context.Context) string {
	return logging.GetUserID(ctx)
}

// GetEmail extracts the authenticated user email from context.
func GetEmail(ctx context.Context) string {
	return logging.GetEmail(ctx)
}
