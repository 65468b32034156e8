package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticVerifier struct {
	user *supabase.User
	err  error
}

func (v staticVerifier) VerifyToken(_ context.Context, token string) (*supabase.User, error) {
	return v.user, v.err
}

func authTestRouter(verifier TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(Auth(verifier))
	router.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuth_MissingHeaderIs401(t *testing.T) {
	router := authTestRouter(staticVerifier{user: &supabase.User{ID: "user-1"}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestAuth_MalformedHeaderIs401(t *testing.T) {
	router := authTestRouter(staticVerifier{user: &supabase.User{ID: "user-1"}})

	for _, header := range []string{"token", "Bearer", "Bearer ", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestAuth_VerifierErrorIs401(t *testing.T) {
	router := authTestRouter(staticVerifier{err: errors.New("invalid token")})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidTokenSetsUser(t *testing.T) {
	router := authTestRouter(staticVerifier{user: &supabase.User{ID: "user-42"}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"user_id":"user-42"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestDevVerifier_UsesTokenAsUserID(t *testing.T) {
	user, err := DevVerifier{}.VerifyToken(context.Background(), "local-user")
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if user.ID != "local-user" {
		t.Errorf("Expected user ID local-user, got %s", user.ID)
	}
}
