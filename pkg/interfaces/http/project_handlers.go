package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/application/services"
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// maxUploadBytes bounds multipart CSV uploads
const maxUploadBytes = 32 << 20

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.ListActive(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.ListCompleted(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleExportProjects streams projects as CSV. ?completed=1 exports
// finished projects instead of open ones.
func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	completed, _ := strconv.ParseBool(r.URL.Query().Get("completed"))
	filename := "projects.csv"
	if completed {
		filename = "completed_projects.csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := s.svc.Projects.ExportCSV(r.Context(), w, completed); err != nil {
		s.writeServiceError(w, r, err)
	}
}

func (s *Server) handleUploadProjects(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("csv-file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "No 'csv-file' part")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read upload: "+err.Error())
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Invalid file type, please upload a .csv file")
		return
	}

	result, err := s.svc.Projects.ImportCSV(r.Context(), file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeImportResult(w, result)
}

func (s *Server) handleBulkProjects(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Expected a list of projects")
		return
	}
	rows, ok := body.([]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "Expected a list of projects")
		return
	}
	result, err := s.svc.Projects.ImportRows(r.Context(), rows, services.SourceBulk)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeImportResult(w, result)
}

func writeImportResult(w http.ResponseWriter, result *dto.ImportResult) {
	status := http.StatusOK
	if result.HasWarnings() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Request body must contain JSON data.")
		return
	}
	result, err := s.svc.Projects.UpdateFields(r.Context(), entities.ProjectID(pathID(r, "id")), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), entities.ProjectID(pathID(r, "id"))); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Project deleted successfully.")
}

func (s *Server) handleProjectDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.svc.Projects.Details(r.Context(), entities.ProjectID(pathID(r, "id")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
