package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// minRefetchInterval bounds how often an unknown kid may trigger a fetch
const minRefetchInterval = 30 * time.Second

// JWKSKeySource resolves token signing keys from the issuer's JSON Web Key
// Set. The set is refreshed every refresh interval and on an unknown key id.
type JWKSKeySource struct {
	url     string
	client  *http.Client
	refresh time.Duration
	logger  *logging.SafeLogger

	mu          sync.RWMutex
	keys        jose.JSONWebKeySet
	fetchedAt   time.Time
	attemptedAt time.Time

	refetch singleflight.Group
}

// NewJWKSKeySource creates a key source; keys are fetched lazily
func NewJWKSKeySource(url string, client *http.Client, refresh time.Duration, logger *logging.SafeLogger) *JWKSKeySource {
	return &JWKSKeySource{url: url, client: client, refresh: refresh, logger: logger}
}

// Keyfunc returns the public key for the token's kid
func (s *JWKSKeySource) Keyfunc(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("token has no kid header")
	}

	if key, ok := s.lookup(kid); ok && !s.stale(s.refresh) {
		return key, nil
	}
	s.refreshKeys()
	if key, ok := s.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

// refreshKeys fetches the set at most once per minRefetchInterval, counting
// failed attempts. Concurrent callers share one in-flight fetch.
func (s *JWKSKeySource) refreshKeys() {
	_, _, _ = s.refetch.Do("jwks", func() (interface{}, error) {
		s.mu.Lock()
		if !s.attemptedAt.IsZero() && time.Since(s.attemptedAt) < minRefetchInterval {
			s.mu.Unlock()
			return nil, nil
		}
		s.attemptedAt = time.Now()
		s.mu.Unlock()

		if err := s.fetch(context.Background()); err != nil {
			// Fall back to the cached set while the issuer is unreachable.
			s.logger.Warn("failed to refresh JWKS", zap.String("url", s.url), zap.Error(err))
		}
		return nil, nil
	})
}

func (s *JWKSKeySource) lookup(kid string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys.Key(kid) {
		if k.Use == "" || k.Use == "sig" {
			return k.Key, true
		}
	}
	return nil, false
}

func (s *JWKSKeySource) stale(age time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt.IsZero() || time.Since(s.fetchedAt) > age
}

func (s *JWKSKeySource) fetch(ctx context.Context) error {
	ctx, span := utils.TraceExternalService(ctx, "jwks", "fetch")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	s.mu.Lock()
	s.keys = set
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug("JWKS refreshed", zap.Int("keys", len(set.Keys)))
	return nil
}
