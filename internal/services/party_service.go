package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// PartyService manages political parties
type PartyService struct {
	store    PartyStore
	members  PartyMembership
	policies PartyPolicies
	auditor  utils.Auditor
	logger   *logging.SafeLogger
}

// NewPartyService creates a new political party service instance
func NewPartyService(store PartyStore, members PartyMembership, policies PartyPolicies, auditor utils.Auditor, logger *logging.SafeLogger) *PartyService {
	return &PartyService{
		store:    store,
		members:  members,
		policies: policies,
		auditor:  auditor,
		logger:   logger,
	}
}

// All lists every party matching the filter, newest first
func (s *PartyService) All(ctx context.Context, filter models.PartyFilter) ([]models.PoliticalParty, error) {
	parties, err := s.store.All(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list political parties: %w", err)
	}
	return parties, nil
}

// List pages through parties matching the filter
func (s *PartyService) List(ctx context.Context, filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error) {
	if err := req.Validate(); err != nil {
		return models.Page[models.PoliticalParty]{}, err
	}
	page, err := s.store.List(ctx, filter, req)
	if err != nil {
		return page, fmt.Errorf("failed to page political parties: %w", err)
	}
	return page, nil
}

func (s *PartyService) Get(ctx context.Context, id int64) (models.PoliticalParty, error) {
	party, err := s.store.Get(ctx, id)
	if err != nil {
		return party, fmt.Errorf("failed to get political party %d: %w", id, err)
	}
	return party, nil
}

// Members lists the politicians affiliated with a party
func (s *PartyService) Members(ctx context.Context, id int64) ([]models.Citizen, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get political party %d: %w", id, err)
	}
	members, err := s.members.PartyMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of party %d: %w", id, err)
	}
	return members, nil
}

// Policies lists the policies published by members of a party
func (s *PartyService) Policies(ctx context.Context, id int64) ([]models.Policy, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get political party %d: %w", id, err)
	}
	policies, err := s.policies.ByParty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies of party %d: %w", id, err)
	}
	return policies, nil
}

func (s *PartyService) Create(ctx context.Context, req models.PoliticalPartyRequest) (models.PoliticalParty, error) {
	if err := req.Validate(); err != nil {
		return models.PoliticalParty{}, err
	}
	party, err := s.store.Create(ctx, req.ToParty(0))
	if err != nil {
		return party, fmt.Errorf("failed to create political party: %w", err)
	}

	s.logger.Info("political party created", zap.Int64("party_id", party.ID), zap.String("name", party.DisplayName))
	s.auditor.Record(ctx, utils.AuditActionCreate, utils.AuditResourcePoliticalParty, strconv.FormatInt(party.ID, 10), party.ToResponse(), nil)
	return party, nil
}

func (s *PartyService) Update(ctx context.Context, id int64, req models.PoliticalPartyRequest) (models.PoliticalParty, error) {
	if err := req.Validate(); err != nil {
		return models.PoliticalParty{}, err
	}
	party, err := s.store.Update(ctx, req.ToParty(id))
	if err != nil {
		return party, fmt.Errorf("failed to update political party %d: %w", id, err)
	}
	s.auditor.Record(ctx, utils.AuditActionUpdate, utils.AuditResourcePoliticalParty, strconv.FormatInt(id, 10), party.ToResponse(), nil)
	return party, nil
}

func (s *PartyService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete political party %d: %w", id, err)
	}
	s.logger.Info("political party deleted", zap.Int64("party_id", id))
	s.auditor.Record(ctx, utils.AuditActionDelete, utils.AuditResourcePoliticalParty, strconv.FormatInt(id, 10), nil, nil)
	return nil
}
