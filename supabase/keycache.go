package supabase

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrKeysUnavailable is returned when the JWKS endpoint cannot be reached
	// or returns an unusable response
	ErrKeysUnavailable = errors.New("key material unavailable")

	// ErrNoMatchingKey is returned when the key set has no entry for a kid
	ErrNoMatchingKey = errors.New("no matching key")
)

// JWKS represents the JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeyCache fetches and caches the public key set published by the identity
// provider. It is owned by the application composition root and shared by
// reference with the token validator.
//
// A zero TTL keeps a fetched key set until Invalidate is called; a process
// restart or an explicit Invalidate are the only ways to force a refetch.
type KeyCache struct {
	jwksURL    string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu      sync.RWMutex
	jwks    *JWKS
	jwksExp time.Time

	keyMu sync.RWMutex
	keys  map[string]*rsa.PublicKey
}

// KeyCacheConfig holds configuration for KeyCache
type KeyCacheConfig struct {
	JWKSURL     string
	TTL         time.Duration
	HTTPTimeout time.Duration
	Now         func() time.Time
}

// NewKeyCache creates a key cache for the given JWKS endpoint
func NewKeyCache(config KeyCacheConfig) *KeyCache {
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 10 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &KeyCache{
		jwksURL: config.JWKSURL,
		ttl:     config.TTL,
		now:     config.Now,
		httpClient: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		keys: make(map[string]*rsa.PublicKey),
	}
}

// Keyset returns the cached key set, fetching it from the JWKS endpoint on a
// miss. Concurrent first fetches may each hit the endpoint; both store an
// equivalent set, so no single-flight is needed.
func (c *KeyCache) Keyset(ctx context.Context) (*JWKS, error) {
	c.mu.RLock()
	if c.jwks != nil && (c.ttl == 0 || c.now().Before(c.jwksExp)) {
		defer c.mu.RUnlock()
		return c.jwks, nil
	}
	c.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrKeysUnavailable, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrKeysUnavailable, err)
	}

	c.mu.Lock()
	c.jwks = &jwks
	c.jwksExp = c.now().Add(c.ttl)
	c.mu.Unlock()

	return &jwks, nil
}

// PublicKey returns the RSA public key for the given kid, fetching the key
// set if necessary. An unknown kid is not retried against a fresh key set;
// callers that suspect a rotation should Invalidate first.
func (c *KeyCache) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.keyMu.RLock()
	if key, exists := c.keys[kid]; exists {
		c.keyMu.RUnlock()
		return key, nil
	}
	c.keyMu.RUnlock()

	jwks, err := c.Keyset(ctx)
	if err != nil {
		return nil, err
	}

	var jwk *JWK
	for i := range jwks.Keys {
		if jwks.Keys[i].Kid == kid {
			jwk = &jwks.Keys[i]
			break
		}
	}

	if jwk == nil {
		return nil, fmt.Errorf("%w: kid %s not found in key set", ErrNoMatchingKey, kid)
	}

	publicKey, err := jwkToRSAPublicKey(jwk)
	if err != nil {
		return nil, fmt.Errorf("failed to convert JWK to RSA public key: %w", err)
	}

	c.keyMu.Lock()
	c.keys[kid] = publicKey
	c.keyMu.Unlock()

	return publicKey, nil
}

// jwkToRSAPublicKey converts a JWK to an RSA public key
func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)

	var e int
	for _, b := range eBytes {
		e = e*256 + int(b)
	}

	return &rsa.PublicKey{
		N: n,
		E: e,
	}, nil
}

// Invalidate drops the cached key set and all parsed keys, forcing a refetch
// on the next use
func (c *KeyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jwks = nil
	c.jwksExp = time.Time{}

	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	c.keys = make(map[string]*rsa.PublicKey)
}

// Stats returns cache statistics
func (c *KeyCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	stats := map[string]interface{}{
		"jwks_cached":       c.jwks != nil,
		"jwks_expires_at":   c.jwksExp,
		"cached_keys_count": len(c.keys),
	}

	if c.jwks != nil {
		stats["jwks_keys_count"] = len(c.jwks.Keys)
	}

	return stats
}
