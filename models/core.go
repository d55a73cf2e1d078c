package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&Plan{},
		&Plot{},
		&Role{},
		&RolePermission{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

// EnsureRoles inserts any role that does not exist yet. Existing rows are left untouched.
func EnsureRoles(db *gorm.DB, roles []Role) error {
	for _, role := range roles {
		var existing Role
		err := db.First(&existing, "id = ?", role.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up role %s: %w", role.ID, err)
		}
		if err := db.Create(&Role{ID: role.ID, Label: role.Label}).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", role.ID, err)
		}
	}
	return nil
}
