package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/spf13/pflag"

	"Connector/internal/auth"
)

// gentoken issues development tokens for the API.
//
// Usage:
//
//	go run ./cmd/gentoken --user u1 --secret $JWT_SECRET
//	go run ./cmd/gentoken --user u1 --es256 --jwks-out jwks.json
//
// The --es256 mode generates a fresh P-256 keypair, writes the public JWKS
// to --jwks-out (serve it at JWKS_URL) and signs the token with a kid.
func main() {
	user := pflag.String("user", "", "user id to place in the sub claim (required)")
	secret := pflag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
	issuer := pflag.String("issuer", os.Getenv("JWT_ISSUER"), "iss claim")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	es256 := pflag.Bool("es256", false, "sign with a generated ES256 key instead of the secret")
	jwksOut := pflag.String("jwks-out", "jwks.json", "where --es256 writes the public JWKS")
	kid := pflag.String("kid", "dev-key", "key id for --es256")
	pflag.Parse()

	if *user == "" {
		log.Fatal("--user is required")
	}

	if !*es256 {
		token, err := auth.IssueToken(*secret, *issuer, *user, *ttl)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate private key: %v", err)
	}

	jwksData, err := publicJWKS(privateKey, *kid)
	if err != nil {
		log.Fatalf("Failed to build JWKS: %v", err)
	}
	if err := os.WriteFile(*jwksOut, jwksData, 0o644); err != nil {
		log.Fatalf("Failed to write JWKS: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Public JWKS written to %s\n", *jwksOut)

	token, err := signES256(privateKey, *kid, *issuer, *user, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

// publicJWKS renders the public half of key as a JWK set
func publicJWKS(key *ecdsa.PrivateKey, kid string) ([]byte, error) {
	jwkKey, err := jwk.FromRaw(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("create JWK from public key: %w", err)
	}
	if err := jwkKey.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, fmt.Errorf("set kid: %w", err)
	}
	if err := jwkKey.Set(jwk.AlgorithmKey, auth.AlgorithmES256); err != nil {
		return nil, fmt.Errorf("set alg: %w", err)
	}
	if err := jwkKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set use: %w", err)
	}

	set := jwk.NewSet()
	if err := set.AddKey(jwkKey); err != nil {
		return nil, fmt.Errorf("add key: %w", err)
	}
	return json.MarshalIndent(set, "", "  ")
}

// signES256 issues a token the server verifies through its JWKS fetcher
func signES256(key *ecdsa.PrivateKey, kid, issuer, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	token.Header["kid"] = kid
	return token.SignedString(key)
}
