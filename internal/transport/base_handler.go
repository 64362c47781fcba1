package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// FieldIssue is one entry of a {"detail": [...]} validation body.
type FieldIssue struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes {"detail": message}.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "message", message)
	} else {
		h.Logger.Debug("http error", "status", status, "message", message)
	}
	h.WriteJSON(w, status, map[string]string{"detail": message})
}

// WriteValidation writes {"detail": [{"loc": [...], "msg": ...}]}.
func (h *BaseHandler) WriteValidation(w http.ResponseWriter, issues []FieldIssue) {
	h.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

// WriteAppError maps an AppError onto its status and body.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if details, ok := appErr.Details.(internal.ValidationErrors); ok {
		issues := make([]FieldIssue, len(details.Errors))
		for i, e := range details.Errors {
			issues[i] = FieldIssue{Loc: []string{"body", e.Field}, Msg: e.Message}
		}
		h.WriteValidation(w, issues)
		return
	}
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteError(w, status, appErr.Message)
}

// DecodeJSON reads the request body into v, answering 400 itself on failure.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			h.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		} else {
			h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
