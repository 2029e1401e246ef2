package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
	"github.com/yigit/flashclass/internal/pkg/auth"
)

type fakeAuthenticator struct {
	tokens map[string]models.Identity
	err    error
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (models.Identity, *auth.Claims, error) {
	if f.err != nil {
		return models.Identity{}, nil, f.err
	}
	id, ok := f.tokens[token]
	if !ok {
		return models.Identity{}, nil, apperrors.ErrTokenInvalid
	}
	return id, &auth.Claims{UserID: id.ID, Email: id.Email}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(a Authenticator) *gin.Engine {
	m := NewAuthMiddleware(a)
	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID})
	})
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestJWTAuth(t *testing.T) {
	r := newRouter(fakeAuthenticator{tokens: map[string]models.Identity{
		"user-token":  {ID: "u1", Role: models.RoleUser},
		"admin-token": {ID: "a1", Role: models.RoleAdmin},
	}})

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"valid token", "/me", "Bearer user-token", http.StatusOK, ""},
		{"query token", "/me?token=user-token", "", http.StatusOK, ""},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden, dto.ErrorCodeAccessDenied},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestHandleAPIErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{apperrors.NewNotFoundError("class", "c1"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewAccessDeniedError("Admin role required"), http.StatusForbidden, dto.ErrorCodeAccessDenied},
		{apperrors.NewValidationError(map[string]string{"email": "email is required"}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.NewBackendError("class", errors.New("refused")), http.StatusServiceUnavailable, dto.ErrorCodeBackendUnavailable},
		{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeTokenRevoked},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantErr), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Error.Code)
		})
	}
}

func TestHandleAPIErrorIncludesFieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError(map[string]string{"email": "email is required"}))

	resp := decodeError(t, w)
	assert.Equal(t, map[string]interface{}{"email": "email is required"}, resp.Error.Details)
}

func TestAccessDeniedKeepsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewAccessDeniedError("You cannot change your own role"))
	assert.Equal(t, "You cannot change your own role", decodeError(t, w).Error.Message)
}
