package dto

// TaskCreateRequest 创建任务
// status 接受 backlog/todo/completed 等旧写法
type TaskCreateRequest struct {
	Title       string  `json:"title" binding:"max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	ProjectID   int64   `json:"project_id"`
	AssignedTo  *int64  `json:"assigned_to"`
	Status      string  `json:"status" binding:"omitempty,oneof=pending backlog todo in_progress done completed"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

// TaskUpdateRequest 更新任务, 未传字段保持不变, assigned_to=0 表示取消分配
type TaskUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	AssignedTo  *int64  `json:"assigned_to"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending backlog todo in_progress done completed"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

// TaskListQuery 任务列表
type TaskListQuery struct {
	ProjectID int64 `form:"project_id"`
}

// TaskResponse 任务响应
type TaskResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	ProjectID    int64   `json:"project_id"`
	ProjectTitle string  `json:"project_title,omitempty"`
	AssignedTo   *int64  `json:"assigned_to"`
	CreatedBy    int64   `json:"created_by"`
	DueDate      *string `json:"due_date"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
