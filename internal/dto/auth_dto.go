package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
	Role      string `json:"role" binding:"omitempty,oneof=admin project_manager manager team_member"`
}

// LoginRequest 登录请求
// local 登录使用 email(也接受 username), ldap 登录使用 username
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,max=100"`
	Username string `json:"username" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type" binding:"omitempty,oneof=ldap local"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token        string        `json:"token"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	User         *UserResponse `json:"user"`
}

// RefreshTokenRequest 刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
