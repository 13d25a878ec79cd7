package auth

import "strings"

// Role 全局角色
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleTeamMember     Role = "team_member"
)

// Permission 内置权限, 形如 resource[:sub]:action
type Permission string

const (
	PermWorkspaceView         Permission = "workspace:view"
	PermWorkspaceUpdate       Permission = "workspace:update"
	PermWorkspaceDelete       Permission = "workspace:delete"
	PermWorkspaceMemberView   Permission = "workspace:member:view"
	PermWorkspaceMemberAdd    Permission = "workspace:member:add"
	PermWorkspaceMemberRemove Permission = "workspace:member:remove"
	PermWorkspaceMemberUpdate Permission = "workspace:member:update"

	PermProjectCreate       Permission = "project:create"
	PermProjectView         Permission = "project:view"
	PermProjectListAll      Permission = "project:list_all"
	PermProjectUpdate       Permission = "project:update"
	PermProjectDelete       Permission = "project:delete"
	PermProjectMemberManage Permission = "project:member:manage"

	PermTaskCreate Permission = "task:create"
	PermTaskView   Permission = "task:view"
	PermTaskUpdate Permission = "task:update"
	PermTaskDelete Permission = "task:delete"

	PermCommentCreate Permission = "comment:create"
	PermCommentView   Permission = "comment:view"
	PermCommentUpdate Permission = "comment:update"
	PermCommentDelete Permission = "comment:delete"

	PermUserList       Permission = "user:list"
	PermUserDelete     Permission = "user:delete"
	PermUserUpdateRole Permission = "user:update_role"
)

// RolePermissions 全局角色直接拥有的权限
// 不在表中的权限只能通过成员关系或资源归属获得
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		"project:*",
		"task:*",
		"comment:*",
		"user:*",
		PermWorkspaceUpdate,
		PermWorkspaceDelete,
		PermWorkspaceMemberAdd,
		PermWorkspaceMemberRemove,
		PermWorkspaceMemberUpdate,
	},
	RoleProjectManager: {
		"project:*",
		"task:*",
		"comment:*",
		PermUserList,
	},
	RoleTeamMember: {},
}

// NormalizeRole 归一全局角色, manager 视为 project_manager, 无法识别的值按 team_member 处理
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleProjectManager), "manager":
		return RoleProjectManager
	default:
		return RoleTeamMember
	}
}

// ValidRole 是否为可接受的角色输入(含别名)
func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin), string(RoleProjectManager), "manager", string(RoleTeamMember):
		return true
	}
	return false
}

// Allow 判断全局角色是否直接拥有所需权限，支持通配符
func Allow(role Role, need Permission) bool {
	return allow(RolePermissions[role], need)
}

func allow(have []Permission, need Permission) bool {
	for _, p := range have {
		if match(p, need) {
			return true
		}
	}
	return false
}

// match 单条权限匹配, * 匹配剩余所有段
func match(p, need Permission) bool {
	if p == "*" || p == need {
		return true
	}

	allowParts := strings.Split(string(p), ":")
	needParts := strings.Split(string(need), ":")

	for i, part := range allowParts {
		if part == "*" {
			return i < len(needParts)
		}
		if i >= len(needParts) || part != needParts[i] {
			return false
		}
	}
	return len(allowParts) == len(needParts)
}
