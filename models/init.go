package models

import (
	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	// Order matters for the foreign keys
	for _, model := range []any{&Cat{}, &Observation{}, &Photo{}} {
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}
