package httpserver

import (
	"net/http"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

var (
	anyRole       = entities.ValidRoles
	adminOnly     = []entities.Role{entities.Administrator}
	projectEditor = []entities.Role{entities.Administrator, entities.DSEngineer}
	mrfEditor     = []entities.Role{entities.Administrator, entities.Procurement, entities.DSEngineer}
)

// pages maps page routes to the files served from the static directory
var pages = map[string]string{
	"/":                   "index.html",
	"/forecast":           "forecast.html",
	"/updates_log":        "updates_log.html",
	"/project_gantt":      "project_gantt.html",
	"/clients":            "clients.html",
	"/mrf_form":           "mrf_form.html",
	"/mrf_items_log":      "mrf_items_log.html",
	"/project_mrf_status": "project_mrf_status.html",
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.requestID, s.recoverer, s.logRequests, s.loadSession)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	for path, file := range pages {
		r.Handle(path, s.require(anyRole, s.servePage(file))).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.Handle("/logout", s.require(anyRole, s.handleLogout)).Methods(http.MethodPost)
	api.Handle("/user/profile", s.require(anyRole, s.handleProfile)).Methods(http.MethodGet)

	api.Handle("/projects", s.require(anyRole, s.handleListProjects)).Methods(http.MethodGet)
	api.Handle("/projects/completed", s.require(anyRole, s.handleListCompleted)).Methods(http.MethodGet)
	api.Handle("/projects/export.csv", s.require(anyRole, s.handleExportProjects)).Methods(http.MethodGet)
	api.Handle("/projects/upload", s.require(adminOnly, s.handleUploadProjects)).Methods(http.MethodPost)
	api.Handle("/projects/bulk", s.require(adminOnly, s.handleBulkProjects)).Methods(http.MethodPost)
	api.Handle("/projects/{id:[0-9]+}", s.require(projectEditor, s.handleUpdateProject)).Methods(http.MethodPut)
	api.Handle("/projects/{id:[0-9]+}", s.require(adminOnly, s.handleDeleteProject)).Methods(http.MethodDelete)
	api.Handle("/projects/{id:[0-9]+}/details", s.require(anyRole, s.handleProjectDetails)).Methods(http.MethodGet)

	api.Handle("/projects/{id:[0-9]+}/updates", s.require(anyRole, s.handleListUpdates)).Methods(http.MethodGet)
	api.Handle("/projects/{id:[0-9]+}/updates", s.require(projectEditor, s.handleAddUpdate)).Methods(http.MethodPost)
	api.Handle("/updates/log", s.require(anyRole, s.handleUpdatesLog)).Methods(http.MethodGet)
	api.Handle("/updates/{id:[0-9]+}/complete", s.require(projectEditor, s.handleToggleUpdate)).Methods(http.MethodPut)
	api.Handle("/updates/{id:[0-9]+}", s.require(projectEditor, s.handleDeleteUpdate)).Methods(http.MethodDelete)

	api.Handle("/forecast", s.require(anyRole, s.handleListForecast)).Methods(http.MethodGet)
	api.Handle("/forecast", s.require(projectEditor, s.handleAddForecast)).Methods(http.MethodPost)
	api.Handle("/forecast/entry/{id:[0-9]+}", s.require(projectEditor, s.handleDeleteForecast)).Methods(http.MethodDelete)
	api.Handle("/forecast/entry/{id:[0-9]+}/complete", s.require(projectEditor, s.handleToggleForecast)).Methods(http.MethodPut)

	api.Handle("/dashboard", s.require(anyRole, s.handleDashboard)).Methods(http.MethodGet)

	api.Handle("/projects/{id:[0-9]+}/tasks", s.require(anyRole, s.handleListTasks)).Methods(http.MethodGet)
	api.Handle("/projects/{id:[0-9]+}/tasks", s.require(projectEditor, s.handleAddTask)).Methods(http.MethodPost)
	api.Handle("/projects/{id:[0-9]+}/gantt.svg", s.require(anyRole, s.handleGantt)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", s.require(projectEditor, s.handleUpdateTask)).Methods(http.MethodPut)
	api.Handle("/tasks/{id:[0-9]+}", s.require(projectEditor, s.handleDeleteTask)).Methods(http.MethodDelete)

	api.Handle("/mrf", s.require(mrfEditor, s.handleSaveMRF)).Methods(http.MethodPost)
	api.Handle("/mrfs", s.require(anyRole, s.handleMRFItemLog)).Methods(http.MethodGet)
	api.Handle("/mrf/{form_no}", s.require(anyRole, s.handleGetMRF)).Methods(http.MethodGet)
	api.Handle("/mrf_details", s.require(anyRole, s.handleMRFItemDetails)).Methods(http.MethodGet)
	api.Handle("/mrf_items", s.require(mrfEditor, s.handleUpdateMRFItem)).Methods(http.MethodPut)
}
