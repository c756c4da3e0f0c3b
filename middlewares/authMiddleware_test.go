package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ysrn87/pos_backend/utils"
)

// The activity log records the actor's name straight from the request
// context, so the middleware must populate every identity key from the
// token claims, not just id and role.
func TestAuthMiddlewarePopulatesIdentityContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := utils.JwtGenerate(42, "Ayu Lestari", "ADMIN")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	var (
		gotId       int
		gotName     string
		gotRole     string
		nameOk      bool
		correlation string
	)
	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		ctx := c.Request.Context()
		gotId, _ = utils.GetUserIdFromContext(ctx)
		gotName, nameOk = utils.GetUserNameFromContext(ctx)
		gotRole, _ = utils.GetUserRoleFromContext(ctx)
		correlation, _ = utils.GetCorrelationIdFromContext(ctx)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotId != 42 {
		t.Errorf("user id: expected 42, got %d", gotId)
	}
	if !nameOk || gotName != "Ayu Lestari" {
		t.Errorf("user name: expected %q present, got %q (present=%v)", "Ayu Lestari", gotName, nameOk)
	}
	if gotRole != "ADMIN" {
		t.Errorf("user role: expected ADMIN, got %q", gotRole)
	}
	if correlation == "" {
		t.Error("correlation id missing from context")
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(AuthMiddleware())
	router.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abcdef"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.name, rec.Code)
		}
	}
}
