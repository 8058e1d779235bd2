package models

// VoteOutcome tags the result of a cast attempt
type VoteOutcome string

const (
	VoteAccepted     VoteOutcome = "ACCEPTED"
	VoteAlreadyVoted VoteOutcome = "ALREADY_VOTED"
	VoteRejected     VoteOutcome = "REJECTED"
)

// VoteResult is the single result channel of a cast: Accepted,
// AlreadyVoted, or Rejected with a reason.
type VoteResult struct {
	Outcome VoteOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
}

func Accepted() VoteResult     { return VoteResult{Outcome: VoteAccepted} }
func AlreadyVoted() VoteResult { return VoteResult{Outcome: VoteAlreadyVoted} }
func Rejected(reason string) VoteResult {
	return VoteResult{Outcome: VoteRejected, Reason: reason}
}

// IsAccepted reports whether the vote was recorded
func (r VoteResult) IsAccepted() bool {
	return r.Outcome == VoteAccepted
}

// PollSelection is one of the fixed vote choices
type PollSelection struct {
	ID        int64  `json:"id"`
	Selection string `json:"selection"`
}

// PollSelectionCount is one row of a poll aggregate
type PollSelectionCount struct {
	SelectionID int64  `json:"selectionId"`
	Selection   string `json:"selection"`
	Count       int64  `json:"count"`
}

// CastVoteRequest is the body of POST /votes
type CastVoteRequest struct {
	PolicyID    int64 `json:"policyId" binding:"required"`
	SelectionID int64 `json:"selectionId" binding:"required"`
}

// HasVotedResponse is returned by GET /votes/policies/{id}/has-voted
type HasVotedResponse struct {
	HasVoted bool `json:"hasVoted"`
}
