package dto

// WorkspaceCreateRequest 创建工作空间
type WorkspaceCreateRequest struct {
	Name        string                 `json:"name" binding:"max=100"`
	Description *string                `json:"description" binding:"omitempty,max=2000"`
	Settings    map[string]interface{} `json:"settings"`
}

// WorkspaceUpdateRequest 更新工作空间, 未传字段保持不变
type WorkspaceUpdateRequest struct {
	Name        *string                `json:"name" binding:"omitempty,max=100"`
	Description *string                `json:"description" binding:"omitempty,max=2000"`
	Settings    map[string]interface{} `json:"settings"`
}

// WorkspaceResponse 工作空间响应
type WorkspaceResponse struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	CreatedBy   int64                  `json:"created_by"`
	Settings    map[string]interface{} `json:"settings"`
	MemberRole  string                 `json:"member_role,omitempty"` // 当前用户在该空间的角色
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// WorkspaceMemberAddRequest 添加成员
type WorkspaceMemberAddRequest struct {
	UserID     int64  `json:"user_id" binding:"required,min=1"`
	MemberRole string `json:"member_role" binding:"omitempty,oneof=admin member viewer"`
}

// WorkspaceMemberUpdateRequest 修改成员角色
type WorkspaceMemberUpdateRequest struct {
	MemberRole string `json:"member_role" binding:"required,oneof=admin member viewer"`
}

// WorkspaceMemberResponse 成员响应
type WorkspaceMemberResponse struct {
	ID          int64   `json:"id"`
	WorkspaceID int64   `json:"workspace_id"`
	UserID      int64   `json:"user_id"`
	MemberRole  string  `json:"member_role"`
	Username    string  `json:"username"`
	FullName    string  `json:"full_name"`
	Email       *string `json:"email"`
	JoinedAt    string  `json:"joined_at"`
}
