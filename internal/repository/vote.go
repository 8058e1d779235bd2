package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lajospolya/popular-vote/internal/models"
)

// Codes returned by the cast_vote function
const (
	castInserted          = ""
	castAlreadyVoted      = "ALREADY_VOTED"
	castVotingClosed      = "VOTING_CLOSED"
	castPolicyNotFound    = "POLICY_NOT_FOUND"
	castSelectionNotFound = "SELECTION_NOT_FOUND"
)

// VoteRepository casts votes and aggregates polls
type VoteRepository struct {
	db DBTX
}

func NewVoteRepository(db DBTX) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast records one vote through cast_vote, which enforces one vote per
// citizen and policy. The function must return exactly one row.
func (r *VoteRepository) Cast(ctx context.Context, citizenID, policyID, selectionID int64) (result models.VoteResult, err error) {
	ctx, done := track(ctx, "cast", "vote")
	defer func() { err = done(err) }()

	var code *string
	err = r.db.QueryRow(ctx, `SELECT cast_vote($1, $2, $3)`, citizenID, policyID, selectionID).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return result, errors.New("cast_vote returned no row")
	}
	if err != nil {
		return result, err
	}
	if code == nil {
		return result, errors.New("cast_vote returned NULL")
	}
	return castResult(*code)
}

func castResult(code string) (models.VoteResult, error) {
	switch code {
	case castInserted:
		return models.Accepted(), nil
	case castAlreadyVoted:
		return models.AlreadyVoted(), nil
	case castVotingClosed, castPolicyNotFound, castSelectionNotFound:
		return models.Rejected(code), nil
	default:
		return models.VoteResult{}, fmt.Errorf("unexpected cast_vote code %q", code)
	}
}

func (r *VoteRepository) HasVoted(ctx context.Context, citizenID, policyID int64) (voted bool, err error) {
	ctx, done := track(ctx, "exists", "vote")
	defer func() { err = done(err) }()

	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vote
		WHERE citizen_id = $1 AND policy_id = $2)`, citizenID, policyID).Scan(&voted)
	return voted, err
}

// Poll counts votes per selection for a policy. Every selection appears,
// in id order, with zero when nobody picked it.
func (r *VoteRepository) Poll(ctx context.Context, policyID int64) (counts []models.PollSelectionCount, err error) {
	ctx, done := track(ctx, "poll", "vote")
	defer func() { err = done(err) }()

	rows, err := r.db.Query(ctx, `SELECT s.id, s.selection, COUNT(v.id)
		FROM poll_selection s
		LEFT JOIN vote v ON v.selection_id = s.id AND v.policy_id = $1
		GROUP BY s.id, s.selection
		ORDER BY s.id`, policyID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (models.PollSelectionCount, error) {
		var c models.PollSelectionCount
		err := row.Scan(&c.SelectionID, &c.Selection, &c.Count)
		return c, err
	})
}

func (r *VoteRepository) Selection(ctx context.Context, id int64) (selection models.PollSelection, err error) {
	ctx, done := track(ctx, "get", "poll_selection")
	defer func() { err = done(err) }()

	err = r.db.QueryRow(ctx, `SELECT id, selection FROM poll_selection WHERE id = $1`, id).
		Scan(&selection.ID, &selection.Selection)
	return selection, err
}
