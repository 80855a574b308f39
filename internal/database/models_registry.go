package database

import "warbler/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join tables come after the tables they reference.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	}
}
