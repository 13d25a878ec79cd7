package dto

// CommentCreateRequest 创建评论, project_id 与 task_id 二选一
// 嵌套路由 /projects/:id/comments 与 /tasks/:id/comments 会覆盖对应字段
type CommentCreateRequest struct {
	Content   string `json:"content" binding:"max=10000"`
	ProjectID *int64 `json:"project_id"`
	TaskID    *int64 `json:"task_id"`
}

// CommentUpdateRequest 修改评论
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"max=10000"`
}

// CommentListQuery GET /comments 查询条件
type CommentListQuery struct {
	ProjectID *int64 `form:"project_id"`
	TaskID    *int64 `form:"task_id"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	ProjectID *int64 `json:"project_id,omitempty"`
	TaskID    *int64 `json:"task_id,omitempty"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	UserRole  string `json:"user_role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
