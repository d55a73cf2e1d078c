package models

// Role mirrors a host platform role. Only its id matters to permission derivation.
type Role struct {
	ID          string           `gorm:"primaryKey;size:128" json:"id"`
	Label       string           `json:"label"`
	Permissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePermission is one granted permission string.
type RolePermission struct {
	RoleID     string `gorm:"primaryKey;size:128" json:"role_id"`
	Permission string `gorm:"primaryKey;size:255" json:"permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
