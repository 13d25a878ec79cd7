package model

import (
	"time"

	"gorm.io/datatypes"
)

// Workspace 工作空间
type Workspace struct {
	BaseModel
	Name        string            `gorm:"size:100;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description"`
	CreatedBy   int64             `gorm:"not null;index" json:"created_by"`
	Settings    datatypes.JSONMap `json:"settings"`
}

func (Workspace) TableName() string {
	return WorkspaceTableName
}

// WorkspaceMember 工作空间成员, (workspace_id, user_id) 唯一
type WorkspaceMember struct {
	BaseModel
	WorkspaceID int64     `gorm:"not null;uniqueIndex:idx_workspace_member" json:"workspace_id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_workspace_member;index" json:"user_id"`
	MemberRole  string    `gorm:"size:20;not null;default:member" json:"member_role"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (WorkspaceMember) TableName() string {
	return WorkspaceMemberTableName
}
