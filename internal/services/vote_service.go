package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// VoteService casts votes and serves poll aggregates
type VoteService struct {
	store    VoteStore
	citizens CitizenLookup
	policies PolicyLookup
	cache    Cache
	pollTTL  time.Duration
	auditor  utils.Auditor
	logger   *logging.SafeLogger
	now      func() time.Time
}

// NewVoteService creates a new vote service instance
func NewVoteService(store VoteStore, citizens CitizenLookup, policies PolicyLookup, cache Cache, pollTTL time.Duration, auditor utils.Auditor, logger *logging.SafeLogger) *VoteService {
	return &VoteService{
		store:    store,
		citizens: citizens,
		policies: policies,
		cache:    cache,
		pollTTL:  pollTTL,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// Cast records the caller's vote on a policy. A vote cannot be changed:
// a second cast reports AlreadyVoted. Closed policies fail with
// ErrVotingClosed before the store is reached; the store still guards the
// close date for casts racing the deadline.
func (s *VoteService) Cast(ctx context.Context, authID string, req models.CastVoteRequest) (models.VoteResult, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "cast_vote")
	defer span.End()

	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to resolve voter: %w", err)
	}
	policy, err := s.policies.Get(ctx, req.PolicyID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to get policy %d: %w", req.PolicyID, err)
	}
	if !policy.IsOpen(s.now()) {
		observability.VotesCast.WithLabelValues("closed").Inc()
		return models.VoteResult{}, fmt.Errorf("policy %d: %w", policy.ID, models.ErrVotingClosed)
	}
	if _, err := s.store.Selection(ctx, req.SelectionID); err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to get selection %d: %w", req.SelectionID, err)
	}

	result, err := s.store.Cast(ctx, citizen.ID, policy.ID, req.SelectionID)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"policy_id": policy.ID})
		return models.VoteResult{}, fmt.Errorf("failed to cast vote: %w", err)
	}

	observability.VotesCast.WithLabelValues(string(result.Outcome)).Inc()
	utils.AddSpanAttribute(span, "vote.outcome", string(result.Outcome))

	if !result.IsAccepted() {
		s.logger.Debug("vote not recorded",
			zap.Int64("citizen_id", citizen.ID),
			zap.Int64("policy_id", policy.ID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("reason", result.Reason))
		return result, nil
	}

	s.cache.Invalidate(ctx, pollCacheKey(policy.ID))
	s.auditor.Record(ctx, utils.AuditActionVote, utils.AuditResourceVote, strconv.FormatInt(policy.ID, 10),
		map[string]int64{"citizenId": citizen.ID, "selectionId": req.SelectionID}, nil)
	s.logger.Info("vote cast",
		zap.Int64("citizen_id", citizen.ID),
		zap.Int64("policy_id", policy.ID))
	return result, nil
}

// HasVoted reports whether the caller already voted on a policy
func (s *VoteService) HasVoted(ctx context.Context, authID string, policyID int64) (bool, error) {
	citizen, err := s.citizens.GetByAuthID(ctx, authID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve voter: %w", err)
	}
	voted, err := s.store.HasVoted(ctx, citizen.ID, policyID)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return voted, nil
}

// Poll returns the vote count for every selection, zero-vote ones
// included, ordered by selection id.
func (s *VoteService) Poll(ctx context.Context, policyID int64) ([]models.PollSelectionCount, error) {
	// Existence is checked before the cache so a deleted policy never
	// serves cached counts.
	if _, err := s.policies.Get(ctx, policyID); err != nil {
		return nil, fmt.Errorf("failed to get policy %d: %w", policyID, err)
	}

	key := pollCacheKey(policyID)
	var counts []models.PollSelectionCount
	if s.cache.GetJSON(ctx, key, &counts) {
		return counts, nil
	}

	counts, err := s.store.Poll(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate poll for policy %d: %w", policyID, err)
	}

	s.cache.SetJSON(ctx, key, counts, s.pollTTL)
	return counts, nil
}
