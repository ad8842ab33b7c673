package dto

import (
	"time"

	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
)

const (
	SortRecent     = "recent"
	SortPopular    = "popular"
	SortAnswered   = "answered"
	SortUnanswered = "unanswered"
)

type CreateDiscussionRequest struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category" binding:"required,max=50"`
	Tags     []string `json:"tags" binding:"omitempty,max=10,dive,max=30"`
	Images   []string `json:"images" binding:"omitempty,max=10,dive,url"`
}

type CreateAnswerRequest struct {
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images" binding:"omitempty,max=10,dive,url"`
}

type CreateReplyRequest struct {
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images" binding:"omitempty,max=10,dive,url"`
}

type DiscussionFilter struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Search   string `form:"search"`
	Sort     string `form:"sort" binding:"omitempty,oneof=recent popular answered unanswered"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// VoteSummary is the tally of one target plus the viewer's own vote, if any.
type VoteSummary struct {
	VoteCount int64   `json:"vote_count"`
	Upvotes   int64   `json:"upvotes"`
	Downvotes int64   `json:"downvotes"`
	UserVote  *string `json:"user_vote"`
}

type DiscussionResponse struct {
	ID            uuid.UUID                `json:"id"`
	Title         string                   `json:"title"`
	Content       string                   `json:"content"`
	Category      string                   `json:"category"`
	Tags          []string                 `json:"tags"`
	Images        []string                 `json:"images"`
	Views         int                      `json:"views"`
	Author        commonDto.AuthorResponse `json:"author"`
	AnswerCount   int64                    `json:"answer_count"`
	HasBestAnswer bool                     `json:"has_best_answer"`
	VoteSummary
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AnswerResponse struct {
	ID           uuid.UUID                `json:"id"`
	DiscussionID uuid.UUID                `json:"discussion_id"`
	Content      string                   `json:"content"`
	Images       []string                 `json:"images"`
	IsBestAnswer bool                     `json:"is_best_answer"`
	Author       commonDto.AuthorResponse `json:"author"`
	ReplyCount   int                      `json:"reply_count"`
	VoteSummary
	Replies   []ReplyResponse `json:"replies"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ReplyResponse struct {
	ID       uuid.UUID                `json:"id"`
	AnswerID uuid.UUID                `json:"answer_id"`
	Content  string                   `json:"content"`
	Images   []string                 `json:"images"`
	Author   commonDto.AuthorResponse `json:"author"`
	VoteSummary
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DiscussionDetailResponse struct {
	Discussion DiscussionResponse `json:"discussion"`
	Answers    []AnswerResponse   `json:"answers"`
}

type PaginatedDiscussionResponse struct {
	Data []DiscussionResponse    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
