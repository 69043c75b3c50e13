package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"devregistry/db"
	"devregistry/validation"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Developers is the persistence gateway the handlers delegate to.
type Developers interface {
	Create(ctx context.Context, developer db.Developer) (db.Developer, error)
	FindAll(ctx context.Context) ([]db.Developer, error)
	FindOne(ctx context.Context, id string) (db.Developer, error)
	Update(ctx context.Context, id string, patch db.DeveloperPatch) (db.Developer, error)
	Remove(ctx context.Context, id string) (db.Developer, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	developers Developers
	logger     log.FieldLogger
}

func New(developers Developers, logger log.FieldLogger) *Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{developers: developers, logger: logger}
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    any    `json:"message"`
}

func (h *Handler) CreateDeveloper(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	developer, err := validation.ParseCreate(body)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	saved, err := h.developers.Create(r.Context(), developer)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/developers/%s", saved.Id))
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) GetDevelopers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	developers, err := h.developers.FindAll(r.Context())
	if err != nil {
		h.fail(w, r, "", err)
		return
	}

	h.writeJSON(w, http.StatusOK, developers)
}

func (h *Handler) GetDeveloper(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	developer, err := h.developers.FindOne(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}

	h.writeJSON(w, http.StatusOK, developer)
}

func (h *Handler) UpdateDeveloper(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	patch, err := validation.ParsePatch(body)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}

	developer, err := h.developers.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}

	h.writeJSON(w, http.StatusOK, developer)
}

func (h *Handler) DeleteDeveloper(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.developers.Remove(r.Context(), id); err != nil {
		h.fail(w, r, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.developers.Ping(r.Context()); err != nil {
		h.logger.WithError(err).Warn("health check failed")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		h.logger.WithError(err).Warn("error reading body")
		h.writeError(w, http.StatusBadRequest, "could not read request body")
		return nil, false
	}
	return body, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Messages)
	case errors.Is(err, db.ErrNotFound):
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("developer %s not found", id))
	case errors.Is(err, db.ErrDuplicateID):
		h.writeError(w, http.StatusConflict, "developer id already exists")
	default:
		h.logger.WithError(err).
			WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).
			Error("request failed")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message any) {
	h.writeJSON(w, status, errorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		h.logger.WithError(err).Error("error encoding response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		h.logger.WithError(err).Debug("error writing response")
	}
}
