package model

import "time"

// Project 项目
type Project struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	WorkspaceID int64      `gorm:"not null;index" json:"workspace_id"`
	CreatedBy   int64      `gorm:"not null;index" json:"created_by"`
	Status      string     `gorm:"size:20;not null;default:active" json:"status"`

	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// ProjectMember 项目成员, (project_id, user_id) 唯一
type ProjectMember struct {
	BaseModel
	ProjectID int64  `gorm:"not null;uniqueIndex:idx_project_member" json:"project_id"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_project_member;index" json:"user_id"`
	Role      string `gorm:"size:20;not null;default:member" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMember) TableName() string {
	return ProjectMemberTableName
}
