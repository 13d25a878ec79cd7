package model

// Comment 评论, ProjectID 与 TaskID 有且只有一个非空
// UserName/UserRole 为发表时的快照
type Comment struct {
	BaseModel
	Content   string `gorm:"type:text;not null" json:"content"`
	ProjectID *int64 `gorm:"index" json:"project_id,omitempty"`
	TaskID    *int64 `gorm:"index" json:"task_id,omitempty"`
	UserID    int64  `gorm:"not null;index" json:"user_id"`
	UserName  string `gorm:"size:100" json:"user_name"`
	UserRole  string `gorm:"size:32" json:"user_role"`
}

func (Comment) TableName() string {
	return CommentTableName
}
