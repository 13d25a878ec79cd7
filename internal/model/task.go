package model

import "time"

// Task 任务
type Task struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Priority    string     `gorm:"size:10;not null;default:medium" json:"priority"`
	ProjectID   int64      `gorm:"not null;index" json:"project_id"`
	AssignedTo  *int64     `gorm:"index" json:"assigned_to"`
	CreatedBy   int64      `gorm:"not null" json:"created_by"`
	DueDate     *time.Time `json:"due_date"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Task) TableName() string {
	return TaskTableName
}
