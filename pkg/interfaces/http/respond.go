package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/services"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 10 << 20

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps application errors to status codes. Anything
// unrecognised is logged and reported as a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *services.ValidationError
		limit      *services.LimitError
		notFound   *services.NotFoundError
		conflict   *services.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Message, Details: validation.Details})
	case errors.As(err, &limit):
		writeError(w, http.StatusBadRequest, limit.Message)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, repositories.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict with existing data.")
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestInfoFrom(r.Context()).id),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodeObject decodes a JSON object body. Anything else decodes to nil.
func decodeObject(r *http.Request) (map[string]any, error) {
	var body any
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	obj, _ := body.(map[string]any)
	return obj, nil
}

// pathID reads a numeric route variable. Routes constrain ids to digits.
func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}
