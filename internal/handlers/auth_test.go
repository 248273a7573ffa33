package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	signed, err := IssueToken(userID, "Nadia", true, "secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parsing issued token failed: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if claims["id"] != userID.Hex() {
		t.Fatalf("expected id %s, got %v", userID.Hex(), claims["id"])
	}
	if claims["name"] != "Nadia" {
		t.Fatalf("expected name Nadia, got %v", claims["name"])
	}
	if claims["isAdmin"] != true {
		t.Fatalf("expected isAdmin true, got %v", claims["isAdmin"])
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("expected exp claim: %v", err)
	}
	if remaining := time.Until(exp.Time); remaining <= 0 || remaining > time.Hour {
		t.Fatalf("unexpected token lifetime: %v", remaining)
	}
}

func TestIssueTokenRejectedByOtherSecret(t *testing.T) {
	signed, err := IssueToken(primitive.NewObjectID(), "Nadia", false, "secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(tk *jwt.Token) (interface{}, error) {
		return []byte("different"), nil
	})
	if err == nil && token.Valid {
		t.Fatal("expected verification to fail with a different secret")
	}
}
