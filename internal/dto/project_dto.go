package dto

// ProjectCreateRequest 创建项目
// title 与 workspace_id 在鉴权之后校验, 无权限的请求不会暴露字段错误
type ProjectCreateRequest struct {
	Title       string  `json:"title" binding:"max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	DueDate     *string `json:"due_date"`
	WorkspaceID int64   `json:"workspace_id"`
	Status      string  `json:"status" binding:"omitempty,oneof=active in_progress completed on_hold"`
	TeamMembers []int64 `json:"team_members"`
}

// ProjectUpdateRequest 更新项目, 未传字段保持不变
type ProjectUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status" binding:"omitempty,oneof=active in_progress completed on_hold"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          int64                    `json:"id"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description"`
	DueDate     *string                  `json:"due_date"`
	WorkspaceID int64                    `json:"workspace_id"`
	CreatedBy   int64                    `json:"created_by"`
	Status      string                   `json:"status"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
	Members     []*ProjectMemberResponse `json:"members,omitempty"`
	Tasks       []*TaskResponse          `json:"tasks,omitempty"`
}

// FailedMember 添加失败的成员
type FailedMember struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

// ProjectCreateResponse 创建项目响应, FailedMembers 非空表示部分成员未能加入
type ProjectCreateResponse struct {
	Project       *ProjectResponse `json:"project"`
	AddedMembers  []int64          `json:"added_members"`
	FailedMembers []FailedMember   `json:"failed_members,omitempty"`
}

// ProjectProgress 单项目进度
type ProjectProgress struct {
	ProjectID   int64   `json:"project_id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	TotalTasks  int64   `json:"total_tasks"`
	DoneTasks   int64   `json:"done_tasks"`
	Progress    float64 `json:"progress"` // 百分比 0-100
	MemberCount int64   `json:"member_count"`
}

// ProjectAnalyticsResponse 项目统计
type ProjectAnalyticsResponse struct {
	TotalProjects     int                `json:"total_projects"`
	ActiveProjects    int                `json:"active_projects"`
	CompletedProjects int                `json:"completed_projects"`
	AverageProgress   float64            `json:"average_progress"`
	Projects          []*ProjectProgress `json:"projects"`
}

// ProjectMemberAddRequest 添加项目成员
type ProjectMemberAddRequest struct {
	UserID int64  `json:"user_id" binding:"required,min=1"`
	Role   string `json:"role" binding:"omitempty,oneof=member lead"`
}

// ProjectMemberUpdateRequest 修改项目成员角色
type ProjectMemberUpdateRequest struct {
	Role string `json:"role" binding:"required,oneof=member lead"`
}

// ProjectMemberResponse 项目成员响应
type ProjectMemberResponse struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"project_id"`
	UserID    int64   `json:"user_id"`
	Role      string  `json:"role"`
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}
