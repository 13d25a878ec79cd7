package auth

import (
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
)

// Identity 当前请求的操作者, Role 取自数据库中的最新记录
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// ResourceKind 资源类型
type ResourceKind string

const (
	KindWorkspace ResourceKind = "workspace"
	KindProject   ResourceKind = "project"
	KindTask      ResourceKind = "task"
	KindComment   ResourceKind = "comment"
	KindUser      ResourceKind = "user"
)

// Resource 做判断所需的资源状态快照, 由调用方在判断前读取
type Resource struct {
	Kind ResourceKind
	ID   int64

	// WorkspaceRole 操作者在该工作空间的成员角色, 空串表示不是成员
	WorkspaceRole string
	// ProjectMember 操作者是否为项目(或任务、评论所属项目)成员
	ProjectMember bool
	// OwnerID 资源作者, 评论使用
	OwnerID int64
	// TargetUserID 成员管理/用户管理的目标用户
	TargetUserID int64
}

// Decision 判断结果
type Decision struct {
	Allowed bool
	Rule    string // 命中的规则, 仅用于日志
	self    bool
}

// Err 拒绝时对应的业务错误, 允许时为 nil
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.self {
		return pkgErrors.ErrSelfAction
	}
	return pkgErrors.ErrAccessDenied
}

func allowBy(rule string) Decision { return Decision{Allowed: true, Rule: rule} }
func denyBy(rule string) Decision  { return Decision{Allowed: false, Rule: rule} }

// Authorize 访问控制判断
//
// 判断顺序:
//  1. 结构性拒绝: 把自己移出工作空间、删除自己或修改自己的角色
//  2. 全局角色: admin / project_manager 拥有的权限直接放行, 不再看成员关系
//  3. 资源范围: 工作空间成员角色、项目成员关系、评论作者
//
// 纯函数, 不读写任何状态
func Authorize(id Identity, need Permission, res Resource) Decision {
	switch need {
	case PermWorkspaceMemberRemove, PermUserDelete, PermUserUpdateRole:
		if res.TargetUserID != 0 && res.TargetUserID == id.ID {
			return Decision{Rule: "self_action", self: true}
		}
	}

	if Allow(id.Role, need) {
		return allowBy("global_role:" + string(id.Role))
	}

	switch need {
	case PermWorkspaceView, PermWorkspaceMemberView:
		if res.WorkspaceRole != "" {
			return allowBy("workspace_member")
		}
		return denyBy("not_workspace_member")

	case PermWorkspaceUpdate, PermWorkspaceDelete,
		PermWorkspaceMemberAdd, PermWorkspaceMemberRemove, PermWorkspaceMemberUpdate:
		if res.WorkspaceRole == constants.WorkspaceRoleAdmin {
			return allowBy("workspace_admin")
		}
		return denyBy("not_workspace_admin")

	case PermProjectView,
		PermTaskCreate, PermTaskView, PermTaskUpdate, PermTaskDelete,
		PermCommentCreate, PermCommentView:
		if res.ProjectMember {
			return allowBy("project_member")
		}
		return denyBy("not_project_member")

	case PermCommentUpdate, PermCommentDelete:
		if res.OwnerID != 0 && res.OwnerID == id.ID {
			return allowBy("comment_owner")
		}
		return denyBy("not_comment_owner")
	}

	return denyBy("global_role_required")
}
