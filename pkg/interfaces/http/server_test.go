package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/vsinha/cmrp/pkg/application/services"
	"github.com/vsinha/cmrp/pkg/config"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testServer struct {
	*Server
	svc *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	svc := services.New(services.Deps{
		Repos: services.Repositories{
			Tx:        store,
			Users:     store.Users(),
			Sessions:  store.Sessions(),
			Projects:  store.Projects(),
			Updates:   store.Updates(),
			Forecasts: store.Forecasts(),
			Tasks:     store.Tasks(),
			MRFs:      store.MRFs(),
		},
		Limits: config.DefaultConfig().Limits,
		Logger: zaptest.NewLogger(t),
	})
	svc.Auth.WithHashCost(bcrypt.MinCost)
	srv := New(Options{Services: svc, Logger: zaptest.NewLogger(t)})
	return &testServer{Server: srv, svc: svc}
}

// do runs a request through the full middleware chain
func (ts *testServer) do(t *testing.T, method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

// login creates a user with the given role and returns its session cookie
func (ts *testServer) login(t *testing.T, username string, role entities.Role) *http.Cookie {
	t.Helper()
	_, err := ts.svc.Auth.CreateUser(context.Background(), username, "password1", role)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/login", map[string]string{"username": username, "password": "password1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cmrp_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRegisterLoginLogout(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/register", map[string]string{"username": "ana"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing username, password, or role", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "ana", "password": "secret-pass", "role": "Finance",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Account created successfully. You can now log in.", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "ana", "password": "secret-pass", "role": "Finance",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/login", map[string]string{"username": "ana", "password": "wrong-pass"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/login", map[string]string{"username": "ana"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing username or password", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/login", map[string]string{"username": "ana", "password": "secret-pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Login successful! Welcome ana.", body["message"])
	assert.Equal(t, "/", body["redirect_url"])

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cmrp_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	rec = ts.do(t, http.MethodGet, "/api/user/profile", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	assert.Equal(t, "ana", profile["username"])
	assert.Equal(t, "Finance", profile["role"])

	rec = ts.do(t, http.MethodPost, "/api/logout", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful.", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodGet, "/api/user/profile", nil, session)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorization(t *testing.T) {
	ts := newTestServer(t)
	guest := ts.login(t, "gus", entities.Guest)
	engineer := ts.login(t, "eve", entities.DSEngineer)

	tests := []struct {
		name   string
		method string
		target string
		cookie *http.Cookie
		want   int
	}{
		{"anonymous api", http.MethodGet, "/api/projects", nil, http.StatusUnauthorized},
		{"guest reads", http.MethodGet, "/api/projects", guest, http.StatusOK},
		{"guest cannot add forecast", http.MethodPost, "/api/forecast", guest, http.StatusForbidden},
		{"engineer cannot delete project", http.MethodDelete, "/api/projects/1", engineer, http.StatusForbidden},
		{"engineer cannot bulk import", http.MethodPost, "/api/projects/bulk", engineer, http.StatusForbidden},
		{"guest cannot save mrf", http.MethodPost, "/api/mrf", guest, http.StatusForbidden},
		{"unknown cookie", http.MethodGet, "/api/projects", &http.Cookie{Name: "cmrp_session", Value: "nope"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.target, nil, tt.cookie)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := ts.do(t, http.MethodPost, "/api/forecast", nil, guest)
	assert.Equal(t, "Forbidden: Your role ('Guest') does not have permission.", decode(t, rec)["error"])
}

func TestPagesRedirectAnonymousVisitors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/forecast", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var next *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == nextCookie {
			next = c
		}
	}
	require.NotNil(t, next)
	assert.Equal(t, "/forecast", next.Value)

	_, err := ts.svc.Auth.CreateUser(context.Background(), "ana", "password1", entities.Finance)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"ana","password":"password1"}`))
	req.AddCookie(next)
	login := httptest.NewRecorder()
	ts.Handler().ServeHTTP(login, req)
	require.Equal(t, http.StatusOK, login.Code)
	assert.Equal(t, "/forecast", decode(t, login)["redirect_url"])
}

func TestPagesRenderPlaceholder(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.login(t, "ana", entities.Finance)

	rec := ts.do(t, http.MethodGet, "/mrf_items_log", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mrf items log")

	rec = ts.do(t, http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"/forecast", true},
		{"/projects?id=1", true},
		{"//evil.example", false},
		{"/\\evil.example", false},
		{"https://evil.example", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNext(tt.uri), tt.uri)
	}
}

func TestProjectLifecycle(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "root", entities.Administrator)

	rec := ts.do(t, http.MethodPost, "/api/projects/bulk", map[string]string{"not": "a list"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Expected a list of projects", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/projects/bulk", []map[string]any{
		{"Project #": "P-1", "Project Name": "Substation", "Amount": "1,000"},
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["inserted_count"])

	rec = ts.do(t, http.MethodGet, "/api/projects", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Substation", projects[0]["project_name"])
	id := projects[0]["id"].(float64)

	rec = ts.do(t, http.MethodPut, "/api/projects/1", "not an object", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/projects/1", map[string]any{"status": 150}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["details"])

	rec = ts.do(t, http.MethodGet, "/api/projects/999/details", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/projects/1/updates", map[string]any{"update_text": "poles delivered"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Update added successfully.", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodGet, "/api/projects/export.csv", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "projects.csv")
	assert.Contains(t, rec.Body.String(), "Substation")

	rec = ts.do(t, http.MethodDelete, "/api/projects/1", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted successfully.", decode(t, rec)["message"])
	assert.EqualValues(t, 1, id)
}

func TestUploadReportsWarnings(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "root", entities.Administrator)

	upload := func(filename, content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("csv-file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/projects/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.AddCookie(admin)
		rec := httptest.NewRecorder()
		ts.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := upload("projects.txt", "Project Name\nA\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid file type, please upload a .csv file", decode(t, rec)["error"])

	rec = upload("projects.csv", "Project Name,Project #\nGood,1\n,2\n")
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["inserted_count"])
	assert.EqualValues(t, 1, body["skipped_count"])

	rec = upload("clean.csv", "Project Name,Project #\nOther,3\n")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/projects/upload", strings.NewReader("{}"))
	req.AddCookie(admin)
	missing := httptest.NewRecorder()
	ts.Handler().ServeHTTP(missing, req)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "No 'csv-file' part", decode(t, missing)["error"])
}

func TestForecastAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "root", entities.Administrator)

	rec := ts.do(t, http.MethodPost, "/api/projects/bulk", []map[string]any{
		{"Project #": "P-1", "Project Name": "Substation", "Amount": "1000"},
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/forecast", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing JSON data", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/forecast", map[string]any{
		"project_id":           1,
		"forecast_date":        "2024-06-30",
		"forecast_input_type":  "percent",
		"forecast_input_value": 20,
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Forecast entry added.", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodGet, "/api/forecast", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)

	rec = ts.do(t, http.MethodGet, "/api/dashboard", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/api/forecast/entry/999", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksAndGantt(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "root", entities.Administrator)

	rec := ts.do(t, http.MethodPost, "/api/projects/bulk", []map[string]any{
		{"Project #": "P-1", "Project Name": "Substation"},
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/projects/1/tasks", map[string]any{
		"task_name":  "Survey",
		"start_date": "2024-06-01",
		"end_date":   "2024-06-10",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/projects/1/tasks", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/projects/1/gantt.svg", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Contains(t, rec.Body.String(), "Survey")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ts.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
