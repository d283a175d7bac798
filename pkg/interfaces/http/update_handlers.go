package httpserver

import (
	"net/http"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := s.svc.Updates.List(r.Context(), entities.ProjectID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}

func (s *Server) handleAddUpdate(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or empty 'update_text'.")
		return
	}
	text, _ := input["update_text"].(string)
	update, err := s.svc.Updates.Add(r.Context(), entities.ProjectID(pathID(r, "id")), text, input["due_date"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Update added successfully.",
		"new_update": update,
	})
}

func (s *Server) handleToggleUpdate(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Updates.Toggle(r.Context(), entities.UpdateID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteUpdate(w http.ResponseWriter, r *http.Request) {
	id := entities.UpdateID(pathID(r, "id"))
	if err := s.svc.Updates.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Update deleted successfully.",
		"deleted_update_id": id,
	})
}

func (s *Server) handleUpdatesLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.svc.Updates.Log(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}
