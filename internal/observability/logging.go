package observability

import (
	"github.com/lajospolya/popular-vote/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskAuthID keeps the provider prefix of a subject and hides the rest,
// e.g. "auth0|64f1c2..." becomes "auth0|****c2".
func MaskAuthID(authID string) string {
	prefix := ""
	rest := authID
	for i := 0; i < len(authID); i++ {
		if authID[i] == '|' {
			prefix = authID[:i+1]
			rest = authID[i+1:]
			break
		}
	}
	if len(rest) <= 2 {
		return prefix + "****"
	}
	return prefix + "****" + rest[len(rest)-2:]
}
