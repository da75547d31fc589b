package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/middleware"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the service's error kinds onto HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *apperrors.ValidationError
	var notFoundErr *apperrors.NotFoundError
	var conflictErr *apperrors.ConflictError
	var upstreamErr *apperrors.UpstreamError
	var storageErr *apperrors.StorageError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflictErr.Error()})
	case errors.As(err, &upstreamErr):
		h.log.Errorf("Upstream failure: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream service unavailable"})
	case errors.As(err, &storageErr):
		h.log.Errorf("Storage failure: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage temporarily unavailable"})
	default:
		h.log.Errorf("Unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// requester extracts the authenticated user's id and role from the context
func requester(r *http.Request) (int64, models.Role, bool) {
	idStr, _ := r.Context().Value(middleware.UserIDKey).(string)
	roleStr, _ := r.Context().Value(middleware.RoleKey).(string)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, models.Role(roleStr), true
}

// isStaff reports whether the role may see other clients' data
func isStaff(role models.Role) bool {
	return role == models.RoleAssistant || role == models.RoleManager
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
