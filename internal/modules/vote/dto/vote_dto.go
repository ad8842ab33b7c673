package dto

type VoteRequest struct {
	VoteType string `json:"voteType" binding:"required,oneof=up down"`
}

type VoteResponse struct {
	Message   string  `json:"message"`
	Action    string  `json:"action"`
	VoteCount int64   `json:"vote_count"`
	Upvotes   int64   `json:"upvotes"`
	Downvotes int64   `json:"downvotes"`
	UserVote  *string `json:"user_vote"`
}
