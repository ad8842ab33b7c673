package bootstrap

import (
	"anoa.com/alienvault/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Discussion{},
		&entity.Answer{},
		&entity.Reply{},
		&entity.Vote{},
		&entity.Notification{},
		&entity.FeatureSuggestion{},
		&entity.BugReport{},
		&entity.Document{},
	)
}
