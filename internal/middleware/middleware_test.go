package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.ErrResourceNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"invalid", fmt.Errorf("%w: user is inactive", apperrors.ErrTokenInvalid), http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"missing", apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"bad request", apperrors.NewBadRequestError("no file"), http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"validation", apperrors.NewFieldValidationError("email", "This field is required."), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"conflict", apperrors.NewFieldConflictError("email", "student with this email already exists."), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.status == http.StatusNotFound {
				assert.Equal(t, NotFoundMessage, body.Error.Message)
			}
		})
	}
}

func TestHandleAPIError_FieldDetailsAndNoLeak(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	fields := apperrors.FieldErrors{}
	fields.Add("email", "This field is required.")
	fields.Add("first_name", "This field is required.")
	HandleAPIError(c, fields.Validation())

	var body struct {
		Error struct {
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Error.Details, 2)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	HandleAPIError(c, errors.New("pq: password authentication failed for user secret"))
	assert.NotContains(t, w.Body.String(), "secret")
}

type fakeResolver struct {
	users map[string]*models.User
	err   error
}

func (f fakeResolver) ResolveAccessToken(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrTokenInvalid
}

func newAuthRouter(resolver AccessTokenResolver, roles ...models.Role) *gin.Engine {
	m := NewAuthMiddleware(resolver)
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.UserID, "username": user.Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	resolver := fakeResolver{users: map[string]*models.User{
		"good": {ID: 7, Username: "maria", Role: models.RoleCounselor},
	}}
	r := newAuthRouter(resolver)

	cases := []struct {
		header string
		status int
		code   dto.ErrorCode
	}{
		{"", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"Token good", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"Bearer bad", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.header)
		assert.Equal(t, tc.code, decodeError(t, w).Error.Code, tc.header)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"username":"maria"}`, w.Body.String())
}

func TestJWTAuth_Expired(t *testing.T) {
	r := newAuthRouter(fakeResolver{err: apperrors.ErrTokenExpired})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer old")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}

func TestRoleRequired(t *testing.T) {
	resolver := fakeResolver{users: map[string]*models.User{
		"admin":     {ID: 1, Username: "admin", Role: models.RoleAdmin},
		"counselor": {ID: 2, Username: "maria", Role: models.RoleCounselor},
	}}
	r := newAuthRouter(resolver, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer counselor")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer admin")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()), RequestLogger(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Error.Code)
}
