package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lajospolya/popular-vote/internal/config"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// IdentityProvider mirrors role grants to the external identity provider,
// which is what puts the matching scopes into the citizen's next token.
type IdentityProvider interface {
	AddRole(ctx context.Context, authID, roleID string) error
	RemoveRole(ctx context.Context, authID, roleID string) error
}

// RoleIDs are the identity provider's ids for the roles the API grants
type RoleIDs struct {
	ReadOnlyCitizen string
	Citizen         string
	Politician      string
}

// RoleIDsFromConfig reads the role ids from configuration
func RoleIDsFromConfig(cfg *config.Config) RoleIDs {
	return RoleIDs{
		ReadOnlyCitizen: cfg.IDPReadOnlyCitizenRoleID,
		Citizen:         cfg.IDPCitizenRoleID,
		Politician:      cfg.IDPPoliticianRoleID,
	}
}

// NoopIdentityProvider accepts every grant. It is used when no identity
// provider domain is configured.
type NoopIdentityProvider struct {
	logger *logging.SafeLogger
}

func NewNoopIdentityProvider(logger *logging.SafeLogger) *NoopIdentityProvider {
	return &NoopIdentityProvider{logger: logger}
}

func (p *NoopIdentityProvider) AddRole(_ context.Context, authID, roleID string) error {
	p.logger.Debug("identity provider disabled, skipping role grant",
		zap.String("auth_id", observability.MaskAuthID(authID)),
		zap.String("role_id", roleID))
	return nil
}

func (p *NoopIdentityProvider) RemoveRole(_ context.Context, authID, roleID string) error {
	p.logger.Debug("identity provider disabled, skipping role revoke",
		zap.String("auth_id", observability.MaskAuthID(authID)),
		zap.String("role_id", roleID))
	return nil
}

// Auth0IdentityProvider calls the Auth0 management API with a machine to
// machine token obtained through the client credentials grant.
type Auth0IdentityProvider struct {
	baseURL string
	client  *http.Client
	logger  *logging.SafeLogger
}

// NewAuth0IdentityProvider builds the management client. The token source
// and the API calls share base, which carries tracing and timeouts.
func NewAuth0IdentityProvider(cfg *config.Config, base *http.Client, logger *logging.SafeLogger) *Auth0IdentityProvider {
	baseURL := strings.TrimSuffix(cfg.IDPDomain, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.IDPClientID,
		ClientSecret: cfg.IDPClientSecret,
		TokenURL:     baseURL + "/oauth/token",
		EndpointParams: url.Values{
			"audience": {baseURL + "/api/v2/"},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := cc.Client(ctx)
	client.Timeout = base.Timeout

	return &Auth0IdentityProvider{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

func (p *Auth0IdentityProvider) AddRole(ctx context.Context, authID, roleID string) error {
	return p.changeRoles(ctx, http.MethodPost, "add_role", authID, roleID)
}

func (p *Auth0IdentityProvider) RemoveRole(ctx context.Context, authID, roleID string) error {
	return p.changeRoles(ctx, http.MethodDelete, "remove_role", authID, roleID)
}

func (p *Auth0IdentityProvider) changeRoles(ctx context.Context, method, operation, authID, roleID string) error {
	ctx, span := utils.TraceExternalService(ctx, "auth0", operation)
	defer span.End()

	body, err := json.Marshal(map[string][]string{"roles": {roleID}})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/v2/users/%s/roles", p.baseURL, url.PathEscape(authID))
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build identity provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		observability.IdentityProviderCalls.WithLabelValues(operation, "error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"idp.operation": operation})
		p.logger.Error("identity provider call failed",
			zap.String("operation", operation),
			zap.String("auth_id", observability.MaskAuthID(authID)),
			zap.Error(err))
		return fmt.Errorf("identity provider %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("identity provider %s: unexpected status %d: %s", operation, resp.StatusCode, strings.TrimSpace(string(detail)))
		observability.IdentityProviderCalls.WithLabelValues(operation, "error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"http.status_code": resp.StatusCode})
		p.logger.Error("identity provider rejected role change",
			zap.String("operation", operation),
			zap.String("auth_id", observability.MaskAuthID(authID)),
			zap.Int("status", resp.StatusCode))
		return err
	}

	observability.IdentityProviderCalls.WithLabelValues(operation, "success").Inc()
	p.logger.Info("identity provider role updated",
		zap.String("operation", operation),
		zap.String("auth_id", observability.MaskAuthID(authID)),
		zap.String("role_id", roleID))
	return nil
}

// NewIdentityProvider picks the Auth0 bridge when a domain is configured
// and the no-op bridge otherwise.
func NewIdentityProvider(cfg *config.Config, base *http.Client, logger *logging.SafeLogger) IdentityProvider {
	if !cfg.IdentityProviderEnabled() {
		logger.Warn("IDP_DOMAIN not set, role grants will not reach the identity provider")
		return NewNoopIdentityProvider(logger)
	}
	return NewAuth0IdentityProvider(cfg, base, logger)
}
