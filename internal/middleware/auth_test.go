package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}
	return signed
}

func newAuthRouter() (*gin.Engine, *gin.Context) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured gin.Context
	r.GET("/protected", Auth(testSecret), func(c *gin.Context) {
		captured = *c.Copy()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &captured
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r, _ := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r, _ := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	r, _ := newAuthRouter()
	signed := signToken(t, jwt.MapClaims{
		"id":   primitive.NewObjectID().Hex(),
		"name": "Jo",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}, testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	r, _ := newAuthRouter()
	signed := signToken(t, jwt.MapClaims{
		"id":  primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %d", w.Code)
	}
}

func TestAuthInjectsClaims(t *testing.T) {
	r, captured := newAuthRouter()
	userID := primitive.NewObjectID()
	signed := signToken(t, jwt.MapClaims{
		"id":      userID.Hex(),
		"name":    "Ravi",
		"isAdmin": true,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	gotID, _ := captured.Get("userId")
	if gotID != userID {
		t.Fatalf("expected userId %v in context, got %v", userID, gotID)
	}
	gotName, _ := captured.Get("name")
	if gotName != "Ravi" {
		t.Fatalf("expected name Ravi, got %v", gotName)
	}
	gotAdmin, _ := captured.Get("isAdmin")
	if gotAdmin != true {
		t.Fatalf("expected isAdmin true, got %v", gotAdmin)
	}
}

func TestAdminOnlyBlocksNonAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Auth(testSecret), AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	signed := signToken(t, jwt.MapClaims{
		"id":      primitive.NewObjectID().Hex(),
		"name":    "Ann",
		"isAdmin": false,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
}
