package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const testSecret = "test-secret"

func signHS256(t *testing.T, claims jwt.Claims, secret string) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}
	return tokenString
}

func TestVerifyToken_Subject(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)
	tokenString := signHS256(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	claims, err := v.VerifyToken(context.Background(), "Bearer "+tokenString)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Errorf("Expected user 'u1', got '%s'", claims.UserID())
	}
}

func TestVerifyToken_NestedUserClaim(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)
	tokenString := signHS256(t, jwt.MapClaims{"user": map[string]string{"id": "u42"}}, testSecret)

	claims, err := v.VerifyToken(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID() != "u42" {
		t.Errorf("Expected user 'u42', got '%s'", claims.UserID())
	}
}

func TestVerifyToken_Rejections(t *testing.T) {
	v := NewVerifier(testSecret, "https://issuer.example", nil)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
		},
		{
			name: "wrong secret",
			token: signHS256(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u1", Issuer: "https://issuer.example",
			}}, "other-secret"),
		},
		{
			name: "expired",
			token: signHS256(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Issuer:    "https://issuer.example",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}}, testSecret),
		},
		{
			name: "wrong issuer",
			token: signHS256(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u1", Issuer: "https://evil.example",
			}}, testSecret),
		},
		{
			name: "no user",
			token: signHS256(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Issuer: "https://issuer.example",
			}}, testSecret),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyToken(context.Background(), tt.token); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestVerifyToken_KidWithoutKeySource(t *testing.T) {
	v := NewVerifier(testSecret, "", nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	token.Header["kid"] = "k1"
	tokenString, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	// A kid forces asymmetric verification even when the secret would match
	if _, err := v.VerifyToken(context.Background(), tokenString); err == nil {
		t.Error("Expected error for kid token without key source")
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	tokenString, err := IssueToken(testSecret, "https://issuer.example", "u7", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := NewVerifier(testSecret, "https://issuer.example", nil).VerifyToken(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID() != "u7" {
		t.Errorf("Expected user 'u7', got '%s'", claims.UserID())
	}

	if _, err := IssueToken("", "", "u7", time.Hour); err == nil {
		t.Error("Expected error for empty secret")
	}
	if _, err := IssueToken(testSecret, "", "", time.Hour); err == nil {
		t.Error("Expected error for empty user")
	}
}

func TestVerifyToken_ES256ViaJWKS(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	publicJWK, err := jwk.FromRaw(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("Failed to build JWK: %v", err)
	}
	if err := publicJWK.Set(jwk.KeyIDKey, "test-key"); err != nil {
		t.Fatalf("Failed to set kid: %v", err)
	}
	if err := publicJWK.Set(jwk.AlgorithmKey, AlgorithmES256); err != nil {
		t.Fatalf("Failed to set alg: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(publicJWK); err != nil {
		t.Fatalf("Failed to add key: %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Failed to marshal JWKS: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher, err := NewJWKSFetcher(ctx, server.URL, time.Hour)
	if err != nil {
		t.Fatalf("NewJWKSFetcher failed: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	token.Header["kid"] = "test-key"
	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}

	v := NewVerifier("", "", fetcher)
	claims, err := v.VerifyToken(ctx, tokenString)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID() != "u9" {
		t.Errorf("Expected user 'u9', got '%s'", claims.UserID())
	}

	token.Header["kid"] = "unknown-key"
	unknown, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	if _, err := v.VerifyToken(ctx, unknown); err == nil {
		t.Error("Expected error for unknown kid")
	}
}
