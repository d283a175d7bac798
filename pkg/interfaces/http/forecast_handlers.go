package httpserver

import (
	"net/http"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

func (s *Server) handleListForecast(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Forecasts.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddForecast(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil || input == nil {
		writeError(w, http.StatusBadRequest, "Missing JSON data")
		return
	}
	entry, err := s.svc.Forecasts.Add(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":            "Forecast entry added.",
		"new_forecast_entry": entry,
	})
}

func (s *Server) handleDeleteForecast(w http.ResponseWriter, r *http.Request) {
	id := entities.ForecastID(pathID(r, "id"))
	if err := s.svc.Forecasts.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Forecast entry removed.",
		"deleted_entry_id": id,
	})
}

func (s *Server) handleToggleForecast(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Forecasts.ToggleCompletion(r.Context(), entities.ForecastID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Dashboard.View(r.Context(), r.URL.Query().Get("business_segment"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
