package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// OpinionService manages opinions and their likes
type OpinionService struct {
	store    OpinionStore
	citizens CitizenLookup
	policies PolicyLookup
	auditor  utils.Auditor
	logger   *logging.SafeLogger
}

// NewOpinionService creates a new opinion service instance
func NewOpinionService(store OpinionStore, citizens CitizenLookup, policies PolicyLookup, auditor utils.Auditor, logger *logging.SafeLogger) *OpinionService {
	return &OpinionService{
		store:    store,
		citizens: citizens,
		policies: policies,
		auditor:  auditor,
		logger:   logger,
	}
}

func (s *OpinionService) List(ctx context.Context) ([]models.Opinion, error) {
	opinions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	return opinions, nil
}

// ByPolicy lists the opinions on a policy with their authors' names
func (s *OpinionService) ByPolicy(ctx context.Context, policyID int64) ([]models.OpinionDetail, error) {
	if _, err := s.policies.Get(ctx, policyID); err != nil {
		return nil, fmt.Errorf("failed to get policy %d: %w", policyID, err)
	}
	opinions, err := s.store.ByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions of policy %d: %w", policyID, err)
	}
	return opinions, nil
}

func (s *OpinionService) Get(ctx context.Context, id int64) (models.Opinion, error) {
	opinion, err := s.store.Get(ctx, id)
	if err != nil {
		return opinion, fmt.Errorf("failed to get opinion %d: %w", id, err)
	}
	return opinion, nil
}

// Create posts an opinion by the caller on an existing policy
func (s *OpinionService) Create(ctx context.Context, authID string, req models.CreateOpinionRequest) (models.Opinion, error) {
	if strings.TrimSpace(req.Description) == "" {
		return models.Opinion{}, fmt.Errorf("%w: description is required", models.ErrInvalidInput)
	}
	author, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return models.Opinion{}, fmt.Errorf("failed to resolve author: %w", err)
	}
	if _, err := s.policies.Get(ctx, req.PolicyID); err != nil {
		return models.Opinion{}, fmt.Errorf("failed to get policy %d: %w", req.PolicyID, err)
	}

	opinion, err := s.store.Create(ctx, models.Opinion{
		Description: req.Description,
		AuthorID:    author.ID,
		PolicyID:    req.PolicyID,
	})
	if err != nil {
		return opinion, fmt.Errorf("failed to create opinion: %w", err)
	}

	s.logger.Debug("opinion created", zap.Int64("opinion_id", opinion.ID), zap.Int64("policy_id", opinion.PolicyID))
	s.auditor.Record(ctx, utils.AuditActionCreate, utils.AuditResourceOpinion, strconv.FormatInt(opinion.ID, 10), opinion.ToResponse(), nil)
	return opinion, nil
}

func (s *OpinionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete opinion %d: %w", id, err)
	}
	s.auditor.Record(ctx, utils.AuditActionDelete, utils.AuditResourceOpinion, strconv.FormatInt(id, 10), nil, nil)
	return nil
}

// Like records the caller's like; liking twice is a no-op
func (s *OpinionService) Like(ctx context.Context, authID string, opinionID int64) error {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if _, err := s.store.Get(ctx, opinionID); err != nil {
		return fmt.Errorf("failed to get opinion %d: %w", opinionID, err)
	}
	if err := s.store.Like(ctx, citizen.ID, opinionID); err != nil {
		return fmt.Errorf("failed to like opinion %d: %w", opinionID, err)
	}
	return nil
}

// Unlike removes the caller's like if present
func (s *OpinionService) Unlike(ctx context.Context, authID string, opinionID int64) error {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return fmt.Errorf("failed to resolve citizen: %w", err)
	}
	if err := s.store.Unlike(ctx, citizen.ID, opinionID); err != nil {
		return fmt.Errorf("failed to unlike opinion %d: %w", opinionID, err)
	}
	return nil
}

func (s *OpinionService) LikedOpinionIDs(ctx context.Context, authID string) ([]int64, error) {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve citizen: %w", err)
	}
	ids, err := s.store.LikedOpinionIDs(ctx, citizen.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked opinions: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// LikeCounts returns like counts for the given opinions. Opinions without
// likes are absent from the map.
func (s *OpinionService) LikeCounts(ctx context.Context, opinionIDs []int64) (map[int64]int64, error) {
	if len(opinionIDs) == 0 {
		return map[int64]int64{}, nil
	}
	counts, err := s.store.LikeCounts(ctx, opinionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return counts, nil
}
