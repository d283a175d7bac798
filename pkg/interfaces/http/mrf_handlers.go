package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleSaveMRF(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	result, err := s.svc.MRFs.Save(r.Context(), payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMRFItemLog(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.MRFs.ItemLog(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMRF(w http.ResponseWriter, r *http.Request) {
	mrf, err := s.svc.MRFs.Get(r.Context(), mux.Vars(r)["form_no"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mrf)
}

func (s *Server) handleMRFItemDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	item, err := s.svc.MRFs.ItemDetails(r.Context(), q.Get("form_no"), q.Get("item_no"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateMRFItem(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Request body must contain JSON data.")
		return
	}
	message, err := s.svc.MRFs.UpdateItem(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}
