package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind splits the shared library into lecture PDFs and e-books.
type DocumentKind string

const (
	DocumentPDF   DocumentKind = "pdf"
	DocumentEbook DocumentKind = "ebook"
)

func (k DocumentKind) Label() string {
	if k == DocumentEbook {
		return "E-book"
	}
	return "PDF"
}

type Document struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         DocumentKind `gorm:"size:10;not null;index" json:"kind"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Semester     string       `gorm:"size:20;not null;index" json:"semester"`
	Course       *string      `gorm:"size:100" json:"course"`
	Department   *string      `gorm:"size:100" json:"department"`
	YearOfStudy  *string      `gorm:"size:20" json:"year_of_study"`
	BlobURL      string       `gorm:"type:text;not null" json:"blob_url"`
	UploadedByID uuid.UUID    `gorm:"type:uuid;not null;index" json:"uploaded_by_user_id"`
	UploadedBy   User         `gorm:"foreignKey:UploadedByID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time    `gorm:"autoCreateTime;index" json:"upload_date"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}
