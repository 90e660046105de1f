package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/abroadcrm/internal/bootstrap"
	"github.com/yigit/abroadcrm/internal/config"
	pkgAuth "github.com/yigit/abroadcrm/internal/pkg/auth"
)

const baseURL = "http://localhost:8080/uploads"

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pkgAuth.BcryptCost = bcrypt.MinCost

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = config.DriverMemory
	cfg.Auth.BlacklistBackend = "memory"
	cfg.Storage.Backend = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Storage.BaseURL = baseURL
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "168h"
	cfg.JWT.Issuer = "abroadcrm-test"
	cfg.Seed.AdminUsername = "admin"
	cfg.Seed.AdminEmail = "admin@example.com"
	cfg.Seed.AdminPassword = "admin123"

	deps, err := bootstrap.BuildDependencies(context.Background(), cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	return &testServer{t: t, router: bootstrap.SetupRouter(cfg, deps, zerolog.Nop())}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, w)
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return d
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	detail, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return detail["code"].(string)
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	detail, ok := decode(t, w)["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return detail["message"].(string)
}

func id(t *testing.T, obj map[string]interface{}) int64 {
	t.Helper()
	v, ok := obj["id"].(float64)
	require.True(t, ok, "missing id in %v", obj)
	return int64(v)
}

func (s *testServer) login(username, password string) (access, refresh string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	body := decode(s.t, w)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func (s *testServer) createCounselor(adminToken, username string) int64 {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/users", adminToken, map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     "counselor",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return id(s.t, data(s.t, w))
}

func studentBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"first_name":        "Ana",
		"last_name":         "Silva",
		"email":             email,
		"phone":             "5550100",
		"date_of_birth":     "2003-04-12",
		"gender":            "female",
		"address":           "12 Harbour Road",
		"current_education": "bachelor",
		"field_of_study":    "Computer Science",
		"institution":       "City College",
		"gpa":               "3.6",
		"graduation_year":   2024,
		"preferred_country": "Canada",
		"intended_program":  "master",
		"preferred_field":   "Data Science",
		"intake_year":       "Fall 2026",
	}
}

func universityBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":                   name,
		"country":                "Canada",
		"city":                   "Toronto",
		"website":                "https://www.example.edu",
		"type":                   "public",
		"established_year":       1827,
		"total_students":         0,
		"international_students": 50,
		"tuition_fee_range":      "CAD 30k-45k",
		"application_fee":        "125.00",
	}
}

func TestPingAndSwagger(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])

	w = s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Study Abroad CRM API")
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", errorCode(t, w))

	access, refresh := s.login("admin", "admin123")

	w = s.do(http.MethodGet, "/api/v1/auth/verify", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Token valid", body["message"])
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])

	w = s.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["username"])

	w = s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_008", errorCode(t, w))

	t.Run("refresh rotates the token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "Bearer", body["tokenType"])
		assert.NotEmpty(t, body["accessToken"])
		assert.NotEqual(t, refresh, body["refreshToken"])

		w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_005", errorCode(t, w))
	})

	t.Run("logout always succeeds", func(t *testing.T) {
		for _, token := range []string{"garbage", "", refresh} {
			w := s.do(http.MethodPost, "/api/v1/auth/logout", access, map[string]string{"refreshToken": token})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Logout successful", decode(t, w)["message"])
		}
	})

	t.Run("logout revokes a live refresh token", func(t *testing.T) {
		_, live := s.login("admin", "admin123")
		w := s.do(http.MethodPost, "/api/v1/auth/logout", access, map[string]string{"refresh": live})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": live})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_005", errorCode(t, w))
	})
}

func TestStudentScopingAndRemarks(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin", "admin123")
	aliceID := s.createCounselor(admin, "alice")
	bobID := s.createCounselor(admin, "bob")
	alice, _ := s.login("alice", "password123")
	bob, _ := s.login("bob", "password123")

	w := s.do(http.MethodPost, "/api/v1/students", alice, studentBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data(t, w)
	studentID := id(t, created)
	assert.Equal(t, float64(aliceID), created["assigned_counselor"])

	studentPath := fmt.Sprintf("/api/v1/students/%d", studentID)

	t.Run("other counselors cannot see the student", func(t *testing.T) {
		w := s.do(http.MethodGet, studentPath, bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "RES_001", errorCode(t, w))
		assert.Equal(t, "Not found.", errorMessage(t, w))

		w = s.do(http.MethodGet, "/api/v1/students", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0.0, data(t, w)["pagination"].(map[string]interface{})["totalItems"])

		w = s.do(http.MethodGet, "/api/v1/students", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1.0, data(t, w)["pagination"].(map[string]interface{})["totalItems"])

		w = s.do(http.MethodDelete, studentPath, bob, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("counselors may only assign themselves", func(t *testing.T) {
		body := studentBody("other@example.com")
		body["assigned_counselor"] = bobID
		w := s.do(http.MethodPost, "/api/v1/students", alice, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VAL_001", errorCode(t, w))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/students", admin, studentBody("ana@example.com"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "RES_002", errorCode(t, w))
	})

	t.Run("invalid payload is a validation error", func(t *testing.T) {
		body := studentBody("bad@example.com")
		body["gender"] = "unknown"
		w := s.do(http.MethodPost, "/api/v1/students", alice, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VAL_001", errorCode(t, w))
	})

	t.Run("patch keeps unspecified fields", func(t *testing.T) {
		w := s.do(http.MethodPatch, studentPath, alice, map[string]string{"status": "applied"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		patched := data(t, w)
		assert.Equal(t, "applied", patched["status"])
		assert.Equal(t, "Ana", patched["first_name"])
		assert.Equal(t, float64(aliceID), patched["assigned_counselor"])
	})

	t.Run("stats follow the visible rows", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/students/stats", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode(t, w)
		assert.Equal(t, 1.0, stats["total_students"])
		assert.Equal(t, 1.0, stats["applied"])
		assert.Equal(t, 0.0, stats["inquiry"])

		w = s.do(http.MethodGet, "/api/v1/students/stats", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0.0, decode(t, w)["total_students"])
	})

	t.Run("remark counselor is the requester", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/students/remarks", alice, map[string]interface{}{
			"student":      studentID,
			"counselor":    bobID,
			"contact_type": "call",
			"content":      "Discussed intake options",
			"priority":     "high",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(aliceID), data(t, w)["counselor"])

		w = s.do(http.MethodGet, studentPath, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		remarks := data(t, w)["remarks"].([]interface{})
		require.Len(t, remarks, 1)
		assert.Equal(t, "alice", remarks[0].(map[string]interface{})["counselor_name"])
	})

	t.Run("remark on an invisible student is a field error", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/students/remarks", bob, map[string]interface{}{
			"student":      studentID,
			"contact_type": "email",
			"content":      "Trying anyway",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VAL_001", errorCode(t, w))
		assert.Contains(t, w.Body.String(), "Invalid pk - object does not exist.")
	})

	t.Run("non numeric id is not found", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/students/abc", alice, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "RES_001", errorCode(t, w))
		assert.Equal(t, "Not found.", errorMessage(t, w))

		w = s.do(http.MethodGet, "/api/v1/students/999999", alice, nil)
		assert.Equal(t, "Not found.", errorMessage(t, w))
	})

	w = s.do(http.MethodDelete, studentPath, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, studentPath, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUniversitiesAndApplications(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin", "admin123")
	s.createCounselor(admin, "alice")
	s.createCounselor(admin, "bob")
	alice, _ := s.login("alice", "password123")
	bob, _ := s.login("bob", "password123")

	w := s.do(http.MethodPost, "/api/v1/universities", alice, universityBody("Forbidden U"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/universities", admin, universityBody("Lakeshore University"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	universityID := id(t, data(t, w))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/universities/%d", universityID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, data(t, w)["international_percentage"])

	w = s.do(http.MethodPost, "/api/v1/students", alice, studentBody("ana@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	studentID := id(t, data(t, w))

	applicationBody := map[string]interface{}{
		"student":          studentID,
		"university":       universityID,
		"program":          "MSc Data Science",
		"level":            "master",
		"intake":           "Fall 2026",
		"current_step":     3,
		"total_steps":      8,
		"application_date": "2026-01-10",
		"application_fee":  "125.00",
	}

	w = s.do(http.MethodPost, "/api/v1/applications", bob, applicationBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid pk - object does not exist.")

	w = s.do(http.MethodPost, "/api/v1/applications", alice, applicationBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data(t, w)
	applicationID := id(t, created)
	assert.True(t, strings.HasPrefix(created["application_id"].(string), "APP"))
	assert.Len(t, created["application_id"], 13)

	appPath := fmt.Sprintf("/api/v1/applications/%d", applicationID)

	w = s.do(http.MethodGet, appPath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := data(t, w)
	assert.Equal(t, 37.5, detail["progress_percentage"])
	assert.Equal(t, "Lakeshore University", detail["university_name"])

	w = s.do(http.MethodGet, appPath, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("document upload", func(t *testing.T) {
		w := s.do(http.MethodPost, appPath+"/documents", alice, map[string]string{
			"name":          "Transcript",
			"document_type": "academic",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		docPath := fmt.Sprintf("%s/documents/%d/file", appPath, id(t, data(t, w)))

		req := httptest.NewRequest(http.MethodPost, docPath, nil)
		req.Header.Set("Authorization", "Bearer "+alice)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No file was submitted.")

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "transcript.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req = httptest.NewRequest(http.MethodPost, docPath, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+alice)
		rec = httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		file, ok := data(t, rec)["file"].(string)
		require.True(t, ok)
		require.True(t, strings.HasPrefix(file, baseURL+"/"), file)

		served := s.do(http.MethodGet, strings.TrimPrefix(file, "http://localhost:8080"), "", nil)
		assert.Equal(t, http.StatusOK, served.Code)
		assert.Equal(t, "%PDF-1.4 test", served.Body.String())
	})

	t.Run("timeline", func(t *testing.T) {
		w := s.do(http.MethodPost, appPath+"/timeline", alice, map[string]interface{}{
			"status":      "document_review",
			"description": "Documents received",
			"completed":   true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(http.MethodGet, appPath+"/timeline", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Documents received")
	})

	w = s.do(http.MethodDelete, appPath, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEmployeeTargets(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.login("admin", "admin123")
	aliceID := s.createCounselor(admin, "alice")
	s.createCounselor(admin, "bob")
	alice, _ := s.login("alice", "password123")
	bob, _ := s.login("bob", "password123")

	target := map[string]interface{}{
		"target_type":    "students",
		"target_value":   10,
		"achieved_value": 4,
		"month":          "2026-03-15",
	}

	w := s.do(http.MethodPost, "/api/v1/employees/targets", alice, target)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data(t, w)
	assert.Equal(t, float64(aliceID), created["employee"])
	assert.Equal(t, "2026-03-01", created["month"])
	assert.Equal(t, 40.0, created["achievement_percentage"])

	w = s.do(http.MethodPost, "/api/v1/employees/targets", alice, target)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "RES_002", errorCode(t, w))

	w = s.do(http.MethodGet, "/api/v1/employees/targets?month=2026-03", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, data(t, w)["pagination"].(map[string]interface{})["totalItems"])

	w = s.do(http.MethodGet, "/api/v1/employees/targets?month=2026-03", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, data(t, w)["pagination"].(map[string]interface{})["totalItems"])

	w = s.do(http.MethodPut, fmt.Sprintf("/api/v1/employees/%d/performance", aliceID), alice, map[string]interface{}{
		"assigned_students": 3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/v1/employees/%d/performance", aliceID), admin, map[string]interface{}{
		"assigned_students":       7,
		"monthly_target_students": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0.0, data(t, w)["target_achievement_percentage"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/employees/targets/%d", id(t, created)), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/employees/targets/%d", id(t, created)), alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
