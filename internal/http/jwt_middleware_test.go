package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"todo-llm/internal/domain"
	"todo-llm/internal/service"
)

func newAuthTestRouter(t *testing.T, jwtSvc *service.JWTService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour)
	r := newAuthTestRouter(t, jwtSvc)

	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("generate pair failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestJWTAuthMiddleware_Unauthenticated(t *testing.T) {
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour)
	r := newAuthTestRouter(t, jwtSvc)

	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("generate pair failed: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token as access", "Bearer " + pair.RefreshToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	jwtSvc := service.NewJWTService("test-secret", time.Nanosecond, time.Hour)
	r := newAuthTestRouter(t, jwtSvc)

	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("generate pair failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}
