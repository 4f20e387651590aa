// Package httputil provides JSON response and request-body helpers shared
// by handlers and middleware.
package httputil

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
)

// errorBody is the envelope every error response uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
// On failure it writes a 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, string(errors.CodeValidation), "invalid request body", nil)
		return false
	}
	return true
}

// WriteErrorResponse writes the standard error envelope.
func WriteErrorResponse(w http.ResponseWriter, _ *http.Request, status int, code, message string, details map[string]interface{}) {
	WriteJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message, Details: details}})
}

// WriteServiceError translates err into the error envelope. Unrecognized
// errors become opaque 500s; the stack trace is included only when the
// server runs in development mode.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, development bool) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("internal server error", err)
	}

	details := serviceErr.Details
	if serviceErr.Code == errors.CodeInternal && development {
		if details == nil {
			details = make(map[string]interface{})
		}
		if serviceErr.Err != nil {
			details["cause"] = serviceErr.Err.Error()
		}
		details["stack"] = string(debug.Stack())
	}

	WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, details)
}

// BadRequest writes a 400 validation error.
func BadRequest(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, nil, http.StatusBadRequest, string(errors.CodeValidation), message, nil)
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "unauthorized"
	}
	WriteErrorResponse(w, nil, http.StatusUnauthorized, string(errors.CodeUnauthorized), message, nil)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, nil, http.StatusNotFound, string(errors.CodeNotFound), message, nil)
}

// InternalError writes an opaque 500.
func InternalError(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, nil, http.StatusInternalServerError, string(errors.CodeInternal), message, nil)
}

// RequireUserID extracts the authenticated user id from the request
// context, writing a 401 when absent.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := logging.GetUserID(r.Context())
	if userID == "" {
		Unauthorized(w, "token required")
		return "", false
	}
	return userID, true
}
