package user

import (
	"time"

	rbacDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/rbac"
)

type User struct {
	ID           int64               `gorm:"primaryKey"`
	Email        string              `gorm:"column:email;uniqueIndex;not null"`
	Name         string              `gorm:"column:name;not null"`
	PasswordHash string              `gorm:"column:password_hash;not null"`
	IsActive     bool                `gorm:"column:is_active"`
	IsSuperuser  bool                `gorm:"column:is_superuser"`
	RoleID       int64               `gorm:"column:role_id;not null;index"`
	Role         *rbacDatamodel.Role `gorm:"foreignKey:RoleID"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u User) PrimaryKey() int64 {
	return u.ID
}
