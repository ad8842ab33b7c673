package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/feedback/dto"
	feedbackRepo "anoa.com/alienvault/internal/modules/feedback/repository"
	"anoa.com/alienvault/pkg/apperror"
	commonDto "anoa.com/alienvault/pkg/dto"
	"anoa.com/alienvault/pkg/ratelimiter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentLimit = 5

type FeedbackService interface {
	SubmitSuggestion(ctx context.Context, submitter *dto.Submitter, req dto.CreateFeatureSuggestionRequest) (*entity.FeatureSuggestion, error)
	SubmitBugReport(ctx context.Context, submitter *dto.Submitter, req dto.CreateBugReportRequest) (*entity.BugReport, error)
	ListSuggestions(ctx context.Context, filter dto.SuggestionFilter) (*dto.PaginatedSuggestionResponse, error)
	ListBugReports(ctx context.Context, filter dto.BugReportFilter) (*dto.PaginatedBugReportResponse, error)
	UpdateSuggestion(ctx context.Context, id uuid.UUID, req dto.UpdateFeatureSuggestionRequest) (*entity.FeatureSuggestion, error)
	UpdateBugReport(ctx context.Context, id uuid.UUID, req dto.UpdateBugReportRequest) (*entity.BugReport, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type feedbackService struct {
	repo    feedbackRepo.FeedbackRepository
	limiter *ratelimiter.Limiter
}

func NewFeedbackService(repo feedbackRepo.FeedbackRepository, limiter *ratelimiter.Limiter) FeedbackService {
	return &feedbackService{
		repo:    repo,
		limiter: limiter,
	}
}

// acquire rate limits signed-in submitters. Anonymous feedback has no key to limit on.
func (s *feedbackService) acquire(ctx context.Context, submitter *dto.Submitter) (func(), error) {
	if submitter == nil || submitter.ID == uuid.Nil {
		return func() {}, nil
	}
	return s.limiter.Acquire(ctx, submitter.ID, ratelimiter.ScopeFeedback)
}

func (s *feedbackService) SubmitSuggestion(ctx context.Context, submitter *dto.Submitter, req dto.CreateFeatureSuggestionRequest) (*entity.FeatureSuggestion, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)
	if title == "" || description == "" || category == "" {
		return nil, fmt.Errorf("title, description, and category are required: %w", apperror.ErrBadRequest)
	}

	release, err := s.acquire(ctx, submitter)
	if err != nil {
		return nil, err
	}

	suggestion := &entity.FeatureSuggestion{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      entity.FeedbackStatusPending,
		Priority:    "medium",
	}
	if submitter != nil {
		suggestion.UserID = &submitter.ID
		suggestion.UserName = &submitter.Username
		suggestion.UserEmail = &submitter.Email
	}

	if err := s.repo.CreateSuggestion(ctx, suggestion); err != nil {
		release()
		return nil, fmt.Errorf("failed to save feature suggestion: %w", err)
	}
	return suggestion, nil
}

func (s *feedbackService) SubmitBugReport(ctx context.Context, submitter *dto.Submitter, req dto.CreateBugReportRequest) (*entity.BugReport, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("title and description are required: %w", apperror.ErrBadRequest)
	}

	severity := req.Severity
	if severity == "" {
		severity = entity.SeverityMedium
	}

	release, err := s.acquire(ctx, submitter)
	if err != nil {
		return nil, err
	}

	report := &entity.BugReport{
		Title:            title,
		Description:      description,
		StepsToReproduce: req.StepsToReproduce,
		ExpectedBehavior: req.ExpectedBehavior,
		ActualBehavior:   req.ActualBehavior,
		Severity:         severity,
		BrowserInfo:      req.BrowserInfo,
		DeviceInfo:       req.DeviceInfo,
		Status:           entity.BugStatusOpen,
	}
	if submitter != nil {
		report.UserID = &submitter.ID
		report.UserName = &submitter.Username
		report.UserEmail = &submitter.Email
	}

	if err := s.repo.CreateBugReport(ctx, report); err != nil {
		release()
		return nil, fmt.Errorf("failed to save bug report: %w", err)
	}
	return report, nil
}

func (s *feedbackService) ListSuggestions(ctx context.Context, filter dto.SuggestionFilter) (*dto.PaginatedSuggestionResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit)

	suggestions, total, err := s.repo.FindSuggestions(ctx, feedbackRepo.SuggestionQuery{
		Status:   filter.Status,
		Category: filter.Category,
	}, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []entity.FeatureSuggestion{}
	}

	return &dto.PaginatedSuggestionResponse{
		Data: suggestions,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *feedbackService) ListBugReports(ctx context.Context, filter dto.BugReportFilter) (*dto.PaginatedBugReportResponse, error) {
	page, limit := commonDto.NormalizePage(filter.Page, filter.Limit)

	reports, total, err := s.repo.FindBugReports(ctx, feedbackRepo.BugReportQuery{
		Status:   filter.Status,
		Severity: filter.Severity,
	}, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []entity.BugReport{}
	}

	return &dto.PaginatedBugReportResponse{
		Data: reports,
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *feedbackService) UpdateSuggestion(ctx context.Context, id uuid.UUID, req dto.UpdateFeatureSuggestionRequest) (*entity.FeatureSuggestion, error) {
	updates := map[string]any{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", apperror.ErrBadRequest)
	}

	if err := s.repo.UpdateSuggestion(ctx, id, updates); err != nil {
		return nil, notFound(err, "feature suggestion")
	}
	suggestion, err := s.repo.FindSuggestionByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "feature suggestion")
	}
	return suggestion, nil
}

func (s *feedbackService) UpdateBugReport(ctx context.Context, id uuid.UUID, req dto.UpdateBugReportRequest) (*entity.BugReport, error) {
	updates := map[string]any{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Severity != "" {
		updates["severity"] = req.Severity
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", apperror.ErrBadRequest)
	}

	if err := s.repo.UpdateBugReport(ctx, id, updates); err != nil {
		return nil, notFound(err, "bug report")
	}
	report, err := s.repo.FindBugReportByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "bug report")
	}
	return report, nil
}

func (s *feedbackService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var stats dto.StatsResponse
	var err error

	if stats.FeatureSuggestions.Total, err = s.repo.CountSuggestions(ctx, ""); err != nil {
		return nil, err
	}
	if stats.FeatureSuggestions.Pending, err = s.repo.CountSuggestions(ctx, entity.FeedbackStatusPending); err != nil {
		return nil, err
	}
	if stats.BugReports.Total, err = s.repo.CountBugReports(ctx, "", ""); err != nil {
		return nil, err
	}
	if stats.BugReports.Open, err = s.repo.CountBugReports(ctx, entity.BugStatusOpen, ""); err != nil {
		return nil, err
	}
	if stats.BugReports.Critical, err = s.repo.CountBugReports(ctx, "", entity.SeverityCritical); err != nil {
		return nil, err
	}

	if stats.Recent.FeatureSuggestions, _, err = s.repo.FindSuggestions(ctx, feedbackRepo.SuggestionQuery{}, 0, recentLimit); err != nil {
		return nil, err
	}
	if stats.Recent.BugReports, _, err = s.repo.FindBugReports(ctx, feedbackRepo.BugReportQuery{}, 0, recentLimit); err != nil {
		return nil, err
	}

	return &stats, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, apperror.ErrNotFound)
	}
	return err
}
