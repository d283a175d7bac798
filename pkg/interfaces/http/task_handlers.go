package httpserver

import (
	"net/http"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/interfaces/output"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.List(r.Context(), entities.ProjectID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil || input == nil {
		writeError(w, http.StatusBadRequest, "Missing JSON data")
		return
	}
	task, err := s.svc.Tasks.Add(r.Context(), entities.ProjectID(pathID(r, "id")), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing JSON data")
		return
	}
	result, err := s.svc.Tasks.Update(r.Context(), entities.TaskID(pathID(r, "id")), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result.Task == nil {
		writeMessage(w, http.StatusOK, result.Message)
		return
	}
	writeJSON(w, http.StatusOK, result.Task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.Delete(r.Context(), entities.TaskID(pathID(r, "id"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted successfully.")
}

func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) {
	chart, err := s.svc.Tasks.Gantt(r.Context(), entities.ProjectID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := output.WriteSVG(w, chart); err != nil {
		s.logger.Warn("failed to write gantt chart")
	}
}
