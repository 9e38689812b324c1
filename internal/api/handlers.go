// Package api exposes HTTP handlers for the signup directory.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"example.com/signup/internal/domain"
	httptransport "example.com/signup/internal/transport/http"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{activity}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{activity}/unregister", h.unregister)
	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	catalog := make(ActivityCatalog, 0, len(activities))
	for _, a := range activities {
		catalog = append(catalog, NamedActivity{Name: a.Name, View: toActivityView(a)})
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	enrollment, err := h.service.Signup(r.Context(), r.PathValue("activity"), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: enrollment.SignupMessage()})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	enrollment, err := h.service.Unregister(r.Context(), r.PathValue("activity"), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: enrollment.UnregisterMessage()})
}

// emailParam rejects a request without an email query parameter. A present
// but blank value is left to the service, which looks up the activity first.
func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := r.URL.Query()
	if !query.Has("email") {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email query parameter is required")
		return "", false
	}
	return query.Get("email"), true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, detail := statusFor(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", httptransport.RequestIDFromContext(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Debug("request rejected", fields...)
	}
	writeError(w, status, code, detail)
}

// statusFor maps domain errors onto HTTP status, error type and detail.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		return http.StatusNotFound, "not_found", "Activity not found"
	case errors.Is(err, domain.ErrNotRegistered):
		return http.StatusNotFound, "not_found", "Student is not signed up for this activity"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return http.StatusBadRequest, "already_registered", "Student is already signed up for this activity"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, "validation_failed", "email must not be blank"
	default:
		return http.StatusInternalServerError, "server_error", "internal error"
	}
}

// ActivityView is the wire shape of one activity record.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// NamedActivity pairs an activity name with its record.
type NamedActivity struct {
	Name string
	View ActivityView
}

// ActivityCatalog encodes as a JSON object keyed by activity name, keeping
// directory order instead of the sorted keys a Go map would produce.
type ActivityCatalog []NamedActivity

// MarshalJSON implements json.Marshaler.
func (c ActivityCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.View)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MessageResponse confirms a roster change.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(a domain.Activity) ActivityView {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}
