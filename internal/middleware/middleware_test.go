package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
	"github.com/yigit/schoolcore/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Error   dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"domain not found", apperrors.ErrClassroomNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "classroom not found: resource not found"},
		{"custom conflict", apperrors.NewConflictError("roll number 3 is taken"), http.StatusConflict, dto.ErrorCodeConflict, "roll number 3 is taken"},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden, "nope"},
		{"bad request", apperrors.NewBadRequestError("invalid id"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "invalid id"},
		{"validation", apperrors.NewValidationError("period must be positive"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "period must be positive"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "unauthorized"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, fmt.Errorf("wrapped: %w", tt.err))

			assert.Equal(t, tt.status, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.code, detail.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, tt.message, detail.Message)
			} else {
				assert.Contains(t, detail.Message, tt.message)
			}
		})
	}
}

func TestHandleAPIErrorDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	err := apperrors.NewCustomError(apperrors.ErrAlreadyEnrolled, "already in 5A").
		WithDetails(map[string]interface{}{"classroom_name": "5A"})
	HandleAPIError(c, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "already in 5A", detail.Message)
	assert.Equal(t, map[string]interface{}{"classroom_name": "5A"}, detail.Details)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	verrs := &apperrors.ValidationErrors{}
	verrs.Addf(1, "Invalid student_id %d", 7)
	HandleAPIError(c, verrs)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail = decodeError(t, w)
	assert.Equal(t, []interface{}{"Record 1: Invalid student_id 7"}, detail.Details)
}

func TestBindAndValidate(t *testing.T) {
	bind := func(body string) (*httptest.ResponseRecorder, bool, dto.TimetableEntryRequest) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req dto.TimetableEntryRequest
		ok := BindAndValidate(c, &req)
		return w, ok, req
	}

	_, ok, req := bind(`{"classroom_id":1,"day":"Monday","period":2,"subject":"Math"}`)
	assert.True(t, ok)
	assert.Equal(t, 2, req.Period)

	w, ok, _ := bind(`{"classroom_id":1,"day":"funday","period":2,"subject":"Math"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "day", detail.Field)
	assert.Equal(t, []interface{}{"Day must be a weekday name"}, detail.Details)

	w, ok, _ = bind(`{"classroom_id":`)
	assert.False(t, ok)
	assert.Equal(t, dto.ErrorCodeBadRequest, decodeError(t, w).Code)
}

func TestJWTAuthAndRoles(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", TokenIssuer: "schoolcore"})
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	router.GET("/admin", m.JWTAuth(), m.RoleRequired(models.UserTypeAdmin), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"school_id": actor.SchoolID})
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	admin, err := jwtService.GenerateToken(models.Actor{UserID: 1, SchoolID: 9, UserType: models.UserTypeAdmin}, time.Hour)
	require.NoError(t, err)
	teacher, err := jwtService.GenerateToken(models.Actor{UserID: 2, SchoolID: 9, UserType: models.UserTypeTeacher}, time.Hour)
	require.NoError(t, err)

	w := call("Bearer " + admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"school_id":9}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, call("Bearer "+teacher).Code)

	w = call("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Code)

	w = call("Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Code)

	assert.Equal(t, http.StatusUnauthorized, call("Token "+admin).Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, w.Header().Get(requestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
