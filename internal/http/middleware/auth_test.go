package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
	"github.com/ctfacademy/academy-backend/internal/services"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	authService := services.NewAuthService(log, "test-secret", 15*time.Minute)

	r := gin.New()
	r.Use(NewAuthMiddleware(log, authService).RequireAuth())
	r.GET("/whoami", func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String()})
	})
	return r, authService
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	r, authService := newAuthTestRouter(t)

	userID := uuid.New()
	token, err := authService.MintAccessToken(userID)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	r, authService := newAuthTestRouter(t)

	token, err := authService.MintAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong scheme", "Basic abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}
