package database

import "icarus/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come before the tables pointing at them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Bookmark{},
		&models.WaitlistEntry{},
	}
}
