package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FeedbackStatusPending    = "pending"
	FeedbackStatusReviewing  = "reviewing"
	FeedbackStatusInProgress = "in-progress"
	FeedbackStatusCompleted  = "completed"
	FeedbackStatusRejected   = "rejected"

	BugStatusOpen       = "open"
	BugStatusInProgress = "in-progress"
	BugStatusResolved   = "resolved"
	BugStatusClosed     = "closed"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type FeatureSuggestion struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    string     `gorm:"size:50" json:"category"`
	Status      string     `gorm:"size:20;default:pending;index" json:"status"`
	Priority    string     `gorm:"size:20;default:medium" json:"priority"`
	AdminNotes  *string    `gorm:"type:text" json:"admin_notes,omitempty"`
	UserID      *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	UserName    *string    `gorm:"size:50" json:"user_name,omitempty"`
	UserEmail   *string    `gorm:"size:100" json:"user_email,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *FeatureSuggestion) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

type BugReport struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text;not null" json:"description"`
	StepsToReproduce string     `gorm:"type:text" json:"steps_to_reproduce"`
	ExpectedBehavior string     `gorm:"type:text" json:"expected_behavior"`
	ActualBehavior   string     `gorm:"type:text" json:"actual_behavior"`
	Severity         string     `gorm:"size:20;default:medium;index" json:"severity"`
	BrowserInfo      string     `gorm:"type:text" json:"browser_info"`
	DeviceInfo       string     `gorm:"type:text" json:"device_info"`
	Status           string     `gorm:"size:20;default:open;index" json:"status"`
	AdminNotes       *string    `gorm:"type:text" json:"admin_notes,omitempty"`
	UserID           *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	UserName         *string    `gorm:"size:50" json:"user_name,omitempty"`
	UserEmail        *string    `gorm:"size:100" json:"user_email,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *BugReport) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}
