package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// CitizenService handles registration, profiles and the politician
// declaration and verification flow.
type CitizenService struct {
	store   CitizenStore
	geo     PostalCodeLookup
	idp     IdentityProvider
	roles   RoleIDs
	auditor utils.Auditor
	logger  *logging.SafeLogger
}

// NewCitizenService creates a new citizen service instance
func NewCitizenService(store CitizenStore, geo PostalCodeLookup, idp IdentityProvider, roles RoleIDs, auditor utils.Auditor, logger *logging.SafeLogger) *CitizenService {
	return &CitizenService{
		store:   store,
		geo:     geo,
		idp:     idp,
		roles:   roles,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *CitizenService) List(ctx context.Context) ([]models.Citizen, error) {
	citizens, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list citizens: %w", err)
	}
	return citizens, nil
}

// Get returns the public profile of a citizen
func (s *CitizenService) Get(ctx context.Context, id int64) (models.CitizenProfile, error) {
	profile, err := s.store.Profile(ctx, id)
	if err != nil {
		return profile, fmt.Errorf("failed to get citizen %d: %w", id, err)
	}
	return profile, nil
}

// Search finds citizens by name prefix
func (s *CitizenService) Search(ctx context.Context, givenName, surname string) ([]models.Citizen, error) {
	givenName, surname = strings.TrimSpace(givenName), strings.TrimSpace(surname)
	if givenName == "" && surname == "" {
		return nil, fmt.Errorf("%w: givenName or surname is required", models.ErrInvalidInput)
	}
	citizens, err := s.store.Search(ctx, givenName, surname)
	if err != nil {
		return nil, fmt.Errorf("failed to search citizens: %w", err)
	}
	return citizens, nil
}

// Self returns the caller's own profile including verification state
func (s *CitizenService) Self(ctx context.Context, authID string) (models.CitizenProfile, error) {
	profile, err := s.store.ProfileByAuthID(ctx, authID)
	if err != nil {
		return profile, fmt.Errorf("failed to get self: %w", err)
	}
	return profile, nil
}

// Register creates the caller's citizen record, then grants the read-only
// citizen role at the identity provider.
func (s *CitizenService) Register(ctx context.Context, authID string, req models.CreateCitizenRequest) (models.Citizen, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "register_citizen")
	defer span.End()

	if strings.TrimSpace(req.GivenName) == "" || strings.TrimSpace(req.Surname) == "" {
		return models.Citizen{}, fmt.Errorf("%w: givenName and surname are required", models.ErrInvalidInput)
	}

	citizen, err := s.store.Create(ctx, models.Citizen{
		GivenName:  strings.TrimSpace(req.GivenName),
		MiddleName: req.MiddleName,
		Surname:    strings.TrimSpace(req.Surname),
		Role:       models.RoleCitizen,
		AuthID:     authID,
	})
	if err != nil {
		return citizen, fmt.Errorf("failed to register citizen: %w", err)
	}

	s.logger.Info("citizen registered",
		zap.Int64("citizen_id", citizen.ID),
		zap.String("auth_id", observability.MaskAuthID(authID)))
	s.auditor.Record(ctx, utils.AuditActionCreate, utils.AuditResourceCitizen, strconv.FormatInt(citizen.ID, 10), citizen.ToResponse(), nil)

	if err := s.idp.AddRole(ctx, authID, s.roles.ReadOnlyCitizen); err != nil {
		return citizen, fmt.Errorf("citizen %d registered but role grant failed: %w", citizen.ID, err)
	}
	return citizen, nil
}

// UpdatePostalCode records the caller's verified postal code and grants the
// full citizen role. It returns the refreshed self view.
func (s *CitizenService) UpdatePostalCode(ctx context.Context, authID string, postalCodeID int64) (models.CitizenProfile, error) {
	citizen, err := s.store.GetByAuthID(ctx, authID)
	if err != nil {
		return models.CitizenProfile{}, fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if _, err := s.geo.PostalCode(ctx, postalCodeID); err != nil {
		return models.CitizenProfile{}, fmt.Errorf("postal code %d: %w", postalCodeID, err)
	}
	if _, err := s.store.UpdatePostalCode(ctx, citizen.ID, postalCodeID); err != nil {
		return models.CitizenProfile{}, fmt.Errorf("failed to update postal code: %w", err)
	}

	s.auditor.Record(ctx, utils.AuditActionUpdate, utils.AuditResourceCitizen, strconv.FormatInt(citizen.ID, 10),
		map[string]int64{"postalCodeId": postalCodeID}, nil)

	if err := s.idp.AddRole(ctx, authID, s.roles.Citizen); err != nil {
		return models.CitizenProfile{}, fmt.Errorf("postal code saved but role grant failed: %w", err)
	}
	return s.Self(ctx, authID)
}

// DeclarePolitician stores the caller's political details and opens a
// pending verification.
func (s *CitizenService) DeclarePolitician(ctx context.Context, authID string, req models.DeclarePoliticianRequest) error {
	citizen, err := s.store.GetByAuthID(ctx, authID)
	if err != nil {
		return fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if citizen.Role != models.RoleCitizen {
		return fmt.Errorf("citizen %d is already a %s: %w", citizen.ID, citizen.Role, models.ErrInvalidState)
	}

	details, err := s.store.DeclarePolitician(ctx, models.CitizenPoliticalDetails{
		CitizenID:           citizen.ID,
		LevelOfPoliticsID:   req.LevelOfPoliticsID,
		ElectoralDistrictID: req.ElectoralDistrictID,
		PoliticalPartyID:    req.PoliticalPartyID,
	})
	if err != nil {
		return fmt.Errorf("failed to declare politician: %w", err)
	}

	s.logger.Info("politician declared", zap.Int64("citizen_id", citizen.ID))
	s.auditor.Record(ctx, utils.AuditActionCreate, utils.AuditResourcePoliticianVerification,
		strconv.FormatInt(citizen.ID, 10), details, nil)
	return nil
}

func (s *CitizenService) PendingVerifications(ctx context.Context) ([]models.Citizen, error) {
	citizens, err := s.store.PendingVerifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending verifications: %w", err)
	}
	return citizens, nil
}

// VerifyPolitician promotes a declared citizen, then moves their identity
// provider role from citizen to politician. Role changes are not rolled
// back locally when the identity provider fails.
func (s *CitizenService) VerifyPolitician(ctx context.Context, id int64) (models.CitizenProfile, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "verify_politician")
	defer span.End()

	citizen, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.CitizenProfile{}, fmt.Errorf("failed to get citizen %d: %w", id, err)
	}
	if citizen.Role != models.RoleCitizen {
		return models.CitizenProfile{}, fmt.Errorf("only citizens can be verified as politicians: %w", models.ErrInvalidState)
	}

	promoted, err := s.store.PromoteToPolitician(ctx, id)
	if err != nil {
		return models.CitizenProfile{}, fmt.Errorf("failed to verify politician %d: %w", id, err)
	}

	s.logger.Info("politician verified", zap.Int64("citizen_id", id))
	s.auditor.Record(ctx, utils.AuditActionVerify, utils.AuditResourcePoliticianVerification,
		strconv.FormatInt(id, 10), promoted.ToResponse(), nil)

	if err := s.idp.AddRole(ctx, promoted.AuthID, s.roles.Politician); err != nil {
		return models.CitizenProfile{}, fmt.Errorf("politician %d verified but role grant failed: %w", id, err)
	}
	if err := s.idp.RemoveRole(ctx, promoted.AuthID, s.roles.Citizen); err != nil {
		return models.CitizenProfile{}, fmt.Errorf("politician %d verified but role revoke failed: %w", id, err)
	}
	return s.Self(ctx, promoted.AuthID)
}

// Politicians pages through verified politicians
func (s *CitizenService) Politicians(ctx context.Context, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.Citizen], error) {
	if err := req.Validate(); err != nil {
		return models.Page[models.Citizen]{}, err
	}
	page, err := s.store.Politicians(ctx, levelOfPoliticsID, req)
	if err != nil {
		return page, fmt.Errorf("failed to list politicians: %w", err)
	}
	return page, nil
}

// Delete soft-deletes a citizen
func (s *CitizenService) Delete(ctx context.Context, id int64) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete citizen %d: %w", id, err)
	}
	s.logger.Info("citizen deleted", zap.Int64("citizen_id", id))
	s.auditor.Record(ctx, utils.AuditActionDelete, utils.AuditResourceCitizen, strconv.FormatInt(id, 10), nil, nil)
	return nil
}
