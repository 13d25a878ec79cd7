package model

import (
	"time"
)

type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

const (
	UserTableName            = "users"
	WorkspaceTableName       = "workspaces"
	WorkspaceMemberTableName = "workspace_members"
	ProjectTableName         = "projects"
	ProjectMemberTableName   = "project_members"
	TaskTableName            = "tasks"
	CommentTableName         = "comments"
)
