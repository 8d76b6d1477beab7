package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testUserID = "5b0c6f0e-4d7e-4a8f-9c3b-2f1d7f1e6a01"

type roleResolver struct{}

func (roleResolver) GetPermissionsByRoleName(_ context.Context, role string) ([]string, error) {
	return model.DefaultRolePermissions[role], nil
}

type registrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func newRouter(t *testing.T, handlers ...registrar) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.Configure("handler-test-secret", time.Hour, false)
	middleware.InitPermissionMiddleware(roleResolver{})

	r := gin.New()
	for _, h := range handlers {
		h.RegisterRoutes(&r.RouterGroup)
	}
	return r
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  testUserID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(middleware.GetJWTSecret())
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return s
}

// envelope mirrors response.Response with the data kept raw.
type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Kind       string          `json:"kind"`
}

func call(t *testing.T, r http.Handler, method, path, role string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Unmarshal(data) error: %v", err)
	}
}
