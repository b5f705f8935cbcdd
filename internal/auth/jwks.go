package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSFetcher resolves signing keys from a single JWKS endpoint.
// The key set is cached and refreshed in the background; an unknown kid
// forces one immediate refresh to pick up rotated keys.
type JWKSFetcher struct {
	cache *jwk.Cache
	url   string
}

// NewJWKSFetcher registers url with a background-refreshing cache.
// The cache stops refreshing when ctx is done.
func NewJWKSFetcher(ctx context.Context, url string, minRefresh time.Duration) (*JWKSFetcher, error) {
	if minRefresh <= 0 {
		minRefresh = time.Hour
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(minRefresh)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS url: %w", err)
	}

	return &JWKSFetcher{cache: cache, url: url}, nil
}

// FetchPublicKey returns the raw public key for kid
func (f *JWKSFetcher) FetchPublicKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := f.cache.Get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		// Key not found in cache - try refreshing
		set, err = f.cache.Refresh(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
		}
		key, ok = set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("key %q not found in JWKS", kid)
		}
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract public key: %w", err)
	}
	return raw, nil
}
