package dto

// UserListQuery 用户列表查询
type UserListQuery struct {
	PageQuery
	Role string `form:"role" binding:"omitempty,oneof=admin project_manager team_member"`
}

// UserUpdateRoleRequest 修改全局角色
type UserUpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin project_manager manager team_member"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        *string `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	AuthProvider string  `json:"auth_provider"`
	LastLoginAt  *string `json:"last_login_at"`
	CreatedAt    string  `json:"created_at"`
}
