package repository

import (
	"context"

	"anoa.com/alienvault/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuggestionQuery struct {
	Status   string
	Category string
}

type BugReportQuery struct {
	Status   string
	Severity string
}

type FeedbackRepository interface {
	CreateSuggestion(ctx context.Context, suggestion *entity.FeatureSuggestion) error
	FindSuggestions(ctx context.Context, query SuggestionQuery, offset, limit int) ([]entity.FeatureSuggestion, int64, error)
	FindSuggestionByID(ctx context.Context, id uuid.UUID) (*entity.FeatureSuggestion, error)
	UpdateSuggestion(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateBugReport(ctx context.Context, report *entity.BugReport) error
	FindBugReports(ctx context.Context, query BugReportQuery, offset, limit int) ([]entity.BugReport, int64, error)
	FindBugReportByID(ctx context.Context, id uuid.UUID) (*entity.BugReport, error)
	UpdateBugReport(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CountSuggestions(ctx context.Context, status string) (int64, error)
	CountBugReports(ctx context.Context, status, severity string) (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) CreateSuggestion(ctx context.Context, suggestion *entity.FeatureSuggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *feedbackRepository) FindSuggestions(ctx context.Context, q SuggestionQuery, offset, limit int) ([]entity.FeatureSuggestion, int64, error) {
	var suggestions []entity.FeatureSuggestion
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.FeatureSuggestion{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&suggestions).Error; err != nil {
		return nil, 0, err
	}
	return suggestions, total, nil
}

func (r *feedbackRepository) FindSuggestionByID(ctx context.Context, id uuid.UUID) (*entity.FeatureSuggestion, error) {
	var suggestion entity.FeatureSuggestion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&suggestion).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *feedbackRepository) UpdateSuggestion(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.FeatureSuggestion{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *feedbackRepository) CreateBugReport(ctx context.Context, report *entity.BugReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *feedbackRepository) FindBugReports(ctx context.Context, q BugReportQuery, offset, limit int) ([]entity.BugReport, int64, error) {
	var reports []entity.BugReport
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BugReport{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Severity != "" {
		query = query.Where("severity = ?", q.Severity)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *feedbackRepository) FindBugReportByID(ctx context.Context, id uuid.UUID) (*entity.BugReport, error) {
	var report entity.BugReport
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *feedbackRepository) UpdateBugReport(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.BugReport{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *feedbackRepository) CountSuggestions(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.FeatureSuggestion{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *feedbackRepository) CountBugReports(ctx context.Context, status, severity string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.BugReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}
	err := query.Count(&count).Error
	return count, err
}
