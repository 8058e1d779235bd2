package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// PolicyService manages policies, their co-authors and bookmarks
type PolicyService struct {
	store    PolicyStore
	citizens PoliticianLookup
	cache    Cache
	auditor  utils.Auditor
	logger   *logging.SafeLogger
	now      func() time.Time
}

// NewPolicyService creates a new policy service instance
func NewPolicyService(store PolicyStore, citizens PoliticianLookup, cache Cache, auditor utils.Auditor, logger *logging.SafeLogger) *PolicyService {
	return &PolicyService{
		store:    store,
		citizens: citizens,
		cache:    cache,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// viewerID resolves the caller for bookmark flags. Unregistered callers see
// every policy as not bookmarked.
func (s *PolicyService) viewerID(ctx context.Context, authID string) (int64, error) {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if errors.Is(err, models.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return citizen.ID, nil
}

// List pages through policies, optionally filtered by level of politics
func (s *PolicyService) List(ctx context.Context, authID string, levelOfPoliticsID *int64, req models.PageRequest) (models.Page[models.PolicySummary], error) {
	if err := req.Validate(); err != nil {
		return models.Page[models.PolicySummary]{}, err
	}
	viewer, err := s.viewerID(ctx, authID)
	if err != nil {
		return models.Page[models.PolicySummary]{}, fmt.Errorf("failed to resolve viewer: %w", err)
	}
	page, err := s.store.List(ctx, viewer, levelOfPoliticsID, req)
	if err != nil {
		return page, fmt.Errorf("failed to list policies: %w", err)
	}
	return page, nil
}

// Get returns a policy with its co-authors
func (s *PolicyService) Get(ctx context.Context, id int64) (models.Policy, []models.Citizen, error) {
	policy, err := s.store.Get(ctx, id)
	if err != nil {
		return policy, nil, fmt.Errorf("failed to get policy %d: %w", id, err)
	}
	coAuthors, err := s.store.CoAuthors(ctx, id)
	if err != nil {
		return policy, nil, fmt.Errorf("failed to get co-authors of policy %d: %w", id, err)
	}
	return policy, coAuthors, nil
}

func (s *PolicyService) Details(ctx context.Context, id int64) (models.PolicyDetails, error) {
	details, err := s.store.Details(ctx, id)
	if err != nil {
		return details, fmt.Errorf("failed to get policy details %d: %w", id, err)
	}
	return details, nil
}

// Create publishes a policy for the caller. The caller must have declared
// political details; the policy inherits their level of politics.
func (s *PolicyService) Create(ctx context.Context, authID string, req models.CreatePolicyRequest) (models.Policy, []models.Citizen, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "create_policy")
	defer span.End()

	if strings.TrimSpace(req.Description) == "" {
		return models.Policy{}, nil, fmt.Errorf("%w: description is required", models.ErrInvalidInput)
	}
	if !req.CloseDate.After(s.now()) {
		return models.Policy{}, nil, fmt.Errorf("%w: closeDate must be in the future", models.ErrInvalidInput)
	}

	publisher, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return models.Policy{}, nil, fmt.Errorf("failed to resolve publisher: %w", err)
	}
	details, err := s.citizens.PoliticalDetails(ctx, publisher.ID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Policy{}, nil, fmt.Errorf("citizen %d: %w", publisher.ID, models.ErrNotPolitician)
	}
	if err != nil {
		return models.Policy{}, nil, fmt.Errorf("failed to get political details: %w", err)
	}

	policy, coAuthors, err := s.store.Create(ctx, models.NewPolicy{
		Description:               req.Description,
		PublisherCitizenID:        publisher.ID,
		LevelOfPoliticsID:         details.LevelOfPoliticsID,
		CitizenPoliticalDetailsID: details.ID,
		CloseDate:                 req.CloseDate,
		CoAuthorCitizenIDs:        req.CoAuthorCitizenIDs,
	})
	if err != nil {
		return policy, nil, fmt.Errorf("failed to create policy: %w", err)
	}

	s.logger.Info("policy created",
		zap.Int64("policy_id", policy.ID),
		zap.Int64("publisher_id", publisher.ID),
		zap.Int("co_authors", len(coAuthors)))
	s.auditor.Record(ctx, utils.AuditActionCreate, utils.AuditResourcePolicy, strconv.FormatInt(policy.ID, 10),
		policy.ToResponse(coAuthors), nil)
	return policy, coAuthors, nil
}

func (s *PolicyService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete policy %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, pollCacheKey(id))
	s.logger.Info("policy deleted", zap.Int64("policy_id", id))
	s.auditor.Record(ctx, utils.AuditActionDelete, utils.AuditResourcePolicy, strconv.FormatInt(id, 10), nil, nil)
	return nil
}

// ByPublisher pages through the policies a citizen published
func (s *PolicyService) ByPublisher(ctx context.Context, citizenID int64, req models.PageRequest) (models.Page[models.Policy], error) {
	if err := req.Validate(); err != nil {
		return models.Page[models.Policy]{}, err
	}
	if _, err := s.citizens.GetByID(ctx, citizenID); err != nil {
		return models.Page[models.Policy]{}, fmt.Errorf("failed to get citizen %d: %w", citizenID, err)
	}
	page, err := s.store.ByPublisher(ctx, citizenID, req)
	if err != nil {
		return page, fmt.Errorf("failed to list policies of citizen %d: %w", citizenID, err)
	}
	return page, nil
}

// Bookmark marks a policy for the caller; repeating it is a no-op
func (s *PolicyService) Bookmark(ctx context.Context, authID string, policyID int64) error {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if _, err := s.store.Get(ctx, policyID); err != nil {
		return fmt.Errorf("failed to get policy %d: %w", policyID, err)
	}
	if err := s.store.Bookmark(ctx, citizen.ID, policyID); err != nil {
		return fmt.Errorf("failed to bookmark policy %d: %w", policyID, err)
	}
	return nil
}

// Unbookmark removes a bookmark if present
func (s *PolicyService) Unbookmark(ctx context.Context, authID string, policyID int64) error {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if err := s.store.Unbookmark(ctx, citizen.ID, policyID); err != nil {
		return fmt.Errorf("failed to remove bookmark on policy %d: %w", policyID, err)
	}
	return nil
}

func (s *PolicyService) IsBookmarked(ctx context.Context, authID string, policyID int64) (bool, error) {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve citizen: %w", err)
	}
	bookmarked, err := s.store.IsBookmarked(ctx, citizen.ID, policyID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return bookmarked, nil
}

// Bookmarks pages through the caller's bookmarked policies
func (s *PolicyService) Bookmarks(ctx context.Context, authID string, req models.PageRequest) (models.Page[models.PolicySummary], error) {
	if err := req.Validate(); err != nil {
		return models.Page[models.PolicySummary]{}, err
	}
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return models.Page[models.PolicySummary]{}, fmt.Errorf("failed to resolve citizen: %w", err)
	}
	page, err := s.store.Bookmarks(ctx, citizen.ID, req)
	if err != nil {
		return page, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return page, nil
}
