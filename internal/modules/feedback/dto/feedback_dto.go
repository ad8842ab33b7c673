package dto

import (
	"anoa.com/alienvault/internal/entity"
	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
)

type CreateFeatureSuggestionRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required,max=50"`
}

type CreateBugReportRequest struct {
	Title            string `json:"title" binding:"required,max=255"`
	Description      string `json:"description" binding:"required"`
	StepsToReproduce string `json:"steps_to_reproduce"`
	ExpectedBehavior string `json:"expected_behavior"`
	ActualBehavior   string `json:"actual_behavior"`
	Severity         string `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	BrowserInfo      string `json:"browser_info"`
	DeviceInfo       string `json:"device_info"`
}

type UpdateFeatureSuggestionRequest struct {
	Status     string  `json:"status" binding:"omitempty,oneof=pending reviewing in-progress completed rejected"`
	Priority   string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	AdminNotes *string `json:"admin_notes"`
}

type UpdateBugReportRequest struct {
	Status     string  `json:"status" binding:"omitempty,oneof=open in-progress resolved closed"`
	Severity   string  `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	AdminNotes *string `json:"admin_notes"`
}

type SuggestionFilter struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type BugReportFilter struct {
	Status   string `form:"status"`
	Severity string `form:"severity"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// Submitter identifies a signed-in user attached to anonymous-capable feedback.
type Submitter struct {
	ID       uuid.UUID
	Username string
	Email    string
}

type PaginatedSuggestionResponse struct {
	Data []entity.FeatureSuggestion `json:"data"`
	Meta commonDto.PaginationMeta   `json:"meta"`
}

type PaginatedBugReportResponse struct {
	Data []entity.BugReport       `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type SuggestionStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
}

type BugReportStats struct {
	Total    int64 `json:"total"`
	Open     int64 `json:"open"`
	Critical int64 `json:"critical"`
}

type RecentFeedback struct {
	FeatureSuggestions []entity.FeatureSuggestion `json:"feature_suggestions"`
	BugReports         []entity.BugReport         `json:"bug_reports"`
}

type StatsResponse struct {
	FeatureSuggestions SuggestionStats `json:"feature_suggestions"`
	BugReports         BugReportStats  `json:"bug_reports"`
	Recent             RecentFeedback  `json:"recent"`
}
