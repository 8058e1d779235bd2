package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lajospolya/popular-vote/internal/config"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// ErrNoClaims is returned when a handler runs without authentication
var ErrNoClaims = errors.New("claims not found")

// Authenticator validates bearer tokens: signature, issuer, audience and
// expiry. Valid claims are stored in the gin context.
type Authenticator struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	logger  *logging.SafeLogger
}

// NewAuthenticator verifies RS256 tokens against the issuer's JWKS, or
// HS256 tokens when a shared secret is configured.
func NewAuthenticator(cfg *config.Config, client *http.Client, logger *logging.SafeLogger) *Authenticator {
	if cfg.AuthHS256Secret != "" {
		secret := []byte(cfg.AuthHS256Secret)
		return newAuthenticator(func(*jwt.Token) (interface{}, error) { return secret, nil },
			cfg.AuthIssuer, cfg.AuthAudience, jwt.SigningMethodHS256.Alg(), logger)
	}
	keys := NewJWKSKeySource(cfg.AuthJWKSURL, client, cfg.AuthJWKSRefresh, logger)
	return newAuthenticator(keys.Keyfunc, cfg.AuthIssuer, cfg.AuthAudience, jwt.SigningMethodRS256.Alg(), logger)
}

func newAuthenticator(keyfunc jwt.Keyfunc, issuer, audience, method string, logger *logging.SafeLogger) *Authenticator {
	return &Authenticator{
		keyfunc: keyfunc,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
		logger: logger,
	}
}

// Middleware rejects requests without a valid bearer token with 401
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims := &models.JWTClaims{}
		if _, err := a.parser.ParseWithClaims(token, claims, a.keyfunc); err != nil {
			a.logger.Debug("rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(claimsKey, claims)

		ac := utils.AuditContextFrom(c.Request.Context())
		ac.AuthID = claims.Subject
		c.Request = c.Request.WithContext(utils.WithAuditContext(c.Request.Context(), ac))
		c.Next()
	}
}

// Claims returns the validated token claims
func Claims(c *gin.Context) (*models.JWTClaims, error) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, ErrNoClaims
	}
	claims, ok := v.(*models.JWTClaims)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// AuthID returns the caller's subject, or "" when unauthenticated
func AuthID(c *gin.Context) string {
	claims, err := Claims(c)
	if err != nil {
		return ""
	}
	return claims.Subject
}

// RequireScope is called at the top of a handler. It writes 403 and
// returns false when the token lacks scope.
func RequireScope(c *gin.Context, scope string) bool {
	claims, err := Claims(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return false
	}
	if !claims.HasScope(scope) {
		observability.Logger().Debug("insufficient scope",
			zap.String("auth_id", observability.MaskAuthID(claims.Subject)),
			zap.String("scope", scope))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
		return false
	}
	return true
}
