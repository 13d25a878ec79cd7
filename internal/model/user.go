package model

import (
	"strings"
	"time"
)

// User 用户模型
// Role 为全局角色: admin / project_manager / team_member
type User struct {
	BaseModel
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        *string    `gorm:"size:100;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255" json:"-"` // LDAP 用户为空
	FirstName    string     `gorm:"size:50" json:"first_name"`
	LastName     string     `gorm:"size:50" json:"last_name"`
	Role         string     `gorm:"size:32;not null;default:team_member;index" json:"role"`
	AuthProvider string     `gorm:"size:20;not null;default:local" json:"auth_provider"`
	Status       int8       `gorm:"not null;default:1" json:"status"` // 1:启用 0:禁用
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return UserTableName
}

// DisplayName 姓名, 为空时退回用户名
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}
