package repository

import (
	"context"

	"anoa.com/alienvault/internal/entity"
	"gorm.io/gorm"
)

type DocumentQuery struct {
	Kind       entity.DocumentKind
	Semester   string
	Course     string
	Department string
}

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindAll(ctx context.Context, query DocumentQuery, offset, limit int) ([]entity.Document, int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) FindAll(ctx context.Context, q DocumentQuery, offset, limit int) ([]entity.Document, int64, error) {
	var documents []entity.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Document{}).Where("kind = ?", q.Kind)
	if q.Semester != "" {
		query = query.Where("semester = ?", q.Semester)
	}
	if q.Course != "" {
		query = query.Where("course = ?", q.Course)
	}
	if q.Department != "" {
		query = query.Where("department = ?", q.Department)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("UploadedBy").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&documents).Error; err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}
