// Package auth verifies the bearer tokens that identify the acting user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm constants for JWT signing methods
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
)

var (
	// ErrMissingToken is returned when no token was presented
	ErrMissingToken = errors.New("missing token")

	// ErrMissingUserID is returned when a verified token names no user
	ErrMissingUserID = errors.New("token does not identify a user")
)

// UserClaim is the nested identity object some issuers place in tokens
// instead of the standard subject: {"user": {"id": "..."}}
type UserClaim struct {
	ID string `json:"id"`
}

// Claims represents the JWT claims we care about
type Claims struct {
	User *UserClaim `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the acting user: the subject, or the nested user id
func (c *Claims) UserID() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.User != nil {
		return c.User.ID
	}
	return ""
}

// KeyFetcher resolves the public key for an asymmetric token's key id.
// Returns interface{} to support both RSA and ECDSA keys.
type KeyFetcher interface {
	FetchPublicKey(ctx context.Context, kid string) (interface{}, error)
}

// Verifier checks token signatures and claims.
//
// Tokens carrying a `kid` header must verify against the KeyFetcher;
// tokens without one verify with the shared HS256 secret. The algorithm is
// chosen by these signals, never by the token's alg header alone.
type Verifier struct {
	keys   KeyFetcher
	issuer string
	secret []byte
}

// NewVerifier creates a verifier. keys may be nil when only HS256 is used;
// issuer is enforced only when non-empty.
func NewVerifier(secret, issuer string, keys KeyFetcher) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		keys:   keys,
	}
}

// stripBearerPrefix removes the "Bearer " prefix from a token string
func stripBearerPrefix(tokenString string) string {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	return strings.TrimSpace(tokenString)
}

// VerifyToken verifies tokenString and returns its claims
func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = stripBearerPrefix(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	kid, _ := unverified.Header["kid"].(string)

	var claims *Claims
	if kid != "" {
		claims, err = v.verifyAsymmetric(ctx, tokenString, kid)
	} else {
		claims, err = v.verifyHS256(tokenString)
	}
	if err != nil {
		return nil, err
	}

	if claims.UserID() == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// parserOptions returns the claim checks shared by both verification paths
func (v *Verifier) parserOptions(methods ...string) []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithLeeway(30 * time.Second)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	return opts
}

// verifyHS256 verifies a JWT using HMAC-SHA256 with the shared secret
func (v *Verifier) verifyHS256(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("HS256 verification failed: secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.parserOptions(AlgorithmHS256)...)
	if err != nil {
		return nil, fmt.Errorf("HS256 verification failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("HS256 verification failed: token invalid")
	}
	return claims, nil
}

// verifyAsymmetric verifies a JWT using RSA or ECDSA with a key from the fetcher
func (v *Verifier) verifyAsymmetric(ctx context.Context, tokenString, kid string) (*Claims, error) {
	if v.keys == nil {
		return nil, fmt.Errorf("asymmetric verification failed: no key source configured")
	}

	publicKey, err := v.keys.FetchPublicKey(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, v.parserOptions(AlgorithmRS256, AlgorithmES256)...)
	if err != nil {
		return nil, fmt.Errorf("asymmetric verification failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("asymmetric verification failed: token invalid")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for userID. Used by development tooling;
// production tokens come from the identity provider.
func IssueToken(secret, issuer, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	if userID == "" {
		return "", ErrMissingUserID
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
