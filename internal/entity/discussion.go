package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Discussion struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID                   `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    User                        `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Title     string                      `gorm:"size:255;not null" json:"title"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Category  string                      `gorm:"size:50;not null;index" json:"category"`
	Tags      datatypes.JSONSlice[string] `json:"tags"`
	Images    datatypes.JSONSlice[string] `json:"images"`
	Views     int                         `gorm:"default:0" json:"views"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	Answers   []Answer                    `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (d *Discussion) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

type Answer struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	DiscussionID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"discussion_id"`
	Discussion   *Discussion                 `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"author_id"`
	Author       User                        `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Content      string                      `gorm:"type:text;not null" json:"content"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	IsBestAnswer bool                        `gorm:"default:false" json:"is_best_answer"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
	Replies      []Reply                     `gorm:"constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type Reply struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AnswerID  uuid.UUID                   `gorm:"type:uuid;not null;index" json:"answer_id"`
	Answer    *Answer                     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uuid.UUID                   `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    User                        `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Images    datatypes.JSONSlice[string] `json:"images"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reply) TableName() string {
	return "replies"
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
