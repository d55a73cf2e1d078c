package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/GrainArc/TrialMap/logger"
	"github.com/GrainArc/TrialMap/models"
	"gorm.io/gorm"
)

// RoleService keeps stored role grants in line with the permission tables.
type RoleService struct {
	db          *gorm.DB
	resolver    *PermissionResolver
	entityTypes []string
	log         *logger.Logger
}

func NewRoleService(db *gorm.DB, resolver *PermissionResolver, entityTypes []string, log *logger.Logger) *RoleService {
	return &RoleService{
		db:          db,
		resolver:    resolver,
		entityTypes: entityTypes,
		log:         log.With("component", "roles"),
	}
}

// SeedRoles stores every role the resolver knows about.
func (s *RoleService) SeedRoles(ctx context.Context) error {
	roles := make([]models.Role, 0)
	for _, id := range s.resolver.Roles() {
		roles = append(roles, models.Role{ID: id, Label: RoleLabels[id]})
	}
	return models.EnsureRoles(s.db.WithContext(ctx), roles)
}

// SyncRole handles a role save: the role's stored permissions are replaced by
// the resolved set across all managed entity types.
func (s *RoleService) SyncRole(ctx context.Context, roleID string) ([]string, error) {
	set, err := s.resolver.ResolveAll(roleID, s.entityTypes)
	if err != nil {
		return nil, err
	}
	permissions := set.Sorted()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role := models.Role{ID: roleID}
		if err := tx.Where(models.Role{ID: roleID}).Attrs(models.Role{Label: RoleLabels[roleID]}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to save role %s: %w", roleID, err)
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear permissions of %s: %w", roleID, err)
		}
		if len(permissions) == 0 {
			return nil
		}
		rows := make([]models.RolePermission, 0, len(permissions))
		for _, p := range permissions {
			rows = append(rows, models.RolePermission{RoleID: roleID, Permission: p})
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to store permissions of %s: %w", roleID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("synced role permissions", "role", roleID, "count", len(permissions))
	return permissions, nil
}

// StoredPermissions returns the permissions currently granted to roleID, sorted.
func (s *RoleService) StoredPermissions(ctx context.Context, roleID string) ([]string, error) {
	var permissions []string
	err := s.db.WithContext(ctx).Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("permission", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions of %s: %w", roleID, err)
	}
	sort.Strings(permissions)
	return permissions, nil
}
