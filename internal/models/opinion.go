package models

import "time"

// Opinion is a citizen's comment on a policy
type Opinion struct {
	ID           int64
	Description  string
	AuthorID     int64
	PolicyID     int64
	CreationDate time.Time
}

// OpinionDetail carries the author's display name
type OpinionDetail struct {
	Opinion
	AuthorName string
}

// CreateOpinionRequest is the body of POST /opinions
type CreateOpinionRequest struct {
	Description string `json:"description" binding:"required"`
	PolicyID    int64  `json:"policyId" binding:"required"`
}

type OpinionResponse struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	AuthorID     int64     `json:"authorId"`
	PolicyID     int64     `json:"policyId"`
	CreationDate time.Time `json:"creationDate"`
}

type OpinionDetailResponse struct {
	OpinionResponse
	AuthorName string `json:"authorName"`
}

// ToResponse converts an Opinion to OpinionResponse
func (o *Opinion) ToResponse() OpinionResponse {
	return OpinionResponse{
		ID:           o.ID,
		Description:  o.Description,
		AuthorID:     o.AuthorID,
		PolicyID:     o.PolicyID,
		CreationDate: o.CreationDate,
	}
}

// ToResponse converts an OpinionDetail to OpinionDetailResponse
func (o OpinionDetail) ToResponse() OpinionDetailResponse {
	return OpinionDetailResponse{
		OpinionResponse: o.Opinion.ToResponse(),
		AuthorName:      o.AuthorName,
	}
}

// OpinionLikeCount is one entry of GET /opinions/likes/count
type OpinionLikeCount struct {
	OpinionID int64 `json:"opinionId"`
	LikeCount int64 `json:"likeCount"`
}
