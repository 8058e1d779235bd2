package models

import (
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Scopes granted by the identity provider
const (
	ScopeReadCitizens          = "read:citizens"
	ScopeDeleteCitizens        = "delete:citizens"
	ScopeReadSelf              = "read:self"
	ScopeWriteSelf             = "write:self"
	ScopeDeclarePolitician     = "write:declare-politician"
	ScopeReadVerifyPolitician  = "read:verify-politician"
	ScopeWriteVerifyPolitician = "write:verify-politician"
	ScopeReadPolicies          = "read:policies"
	ScopeWritePolicies         = "write:policies"
	ScopeDeletePolicies        = "delete:policies"
	ScopeReadOpinions          = "read:opinions"
	ScopeWriteOpinions         = "write:opinions"
	ScopeDeleteOpinions        = "delete:opinions"
	ScopeReadParties           = "read:political-parties"
	ScopeWriteParties          = "write:political-parties"
	ScopeDeleteParties         = "delete:political-parties"
	ScopeReadVotes             = "read:votes"
	ScopeWriteVotes            = "write:votes"
)

// JWTClaims represents the claims of an access token issued by the identity
// provider. The subject is the citizen's auth id.
type JWTClaims struct {
	jwt.RegisteredClaims
	Scope       string   `json:"scope,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Scopes returns the space separated scope claim merged with the
// permissions claim that RBAC-enabled APIs emit.
func (c *JWTClaims) Scopes() []string {
	scopes := strings.Fields(c.Scope)
	for _, p := range c.Permissions {
		if !slices.Contains(scopes, p) {
			scopes = append(scopes, p)
		}
	}
	return scopes
}

// HasScope reports whether the token grants the given scope
func (c *JWTClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes(), scope)
}
