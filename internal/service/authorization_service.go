package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	pkgErrors "collabtrack/pkg/errors"
)

// AuthorizationService 读取资源当前的成员关系后交给 auth.Authorize 判断
// 每次调用都重新查询, 不缓存成员关系与判断结果
type AuthorizationService interface {
	// Global 只依赖全局角色的判断(用户管理、创建项目等)
	Global(id auth.Identity, perm auth.Permission, res auth.Resource) error
	// Workspace 工作空间范围的判断, targetUserID 为成员管理的目标用户
	Workspace(ctx context.Context, id auth.Identity, workspaceID int64, perm auth.Permission, targetUserID int64) error
	// Project 项目范围的判断, 任务与评论的读写也以所属项目的成员关系为准
	Project(ctx context.Context, id auth.Identity, projectID int64, perm auth.Permission) error
	// Comment 评论修改/删除, 作者本人或全局 admin/project_manager
	Comment(ctx context.Context, id auth.Identity, comment *model.Comment, perm auth.Permission) error
	// CanListAllProjects 是否能看到全部项目
	CanListAllProjects(id auth.Identity) bool
}

type authorizationService struct {
	store *repository.Store
}

// NewAuthorizationService 创建 AuthorizationService
func NewAuthorizationService(store *repository.Store) AuthorizationService {
	return &authorizationService{store: store}
}

func (s *authorizationService) Global(id auth.Identity, perm auth.Permission, res auth.Resource) error {
	return s.decide(id, perm, res)
}

func (s *authorizationService) Workspace(ctx context.Context, id auth.Identity, workspaceID int64, perm auth.Permission, targetUserID int64) error {
	res := auth.Resource{Kind: auth.KindWorkspace, ID: workspaceID, TargetUserID: targetUserID}

	member, err := s.store.WorkspaceMembers.Find(ctx, workspaceID, id.ID)
	switch {
	case err == nil:
		res.WorkspaceRole = member.MemberRole
	case !errors.Is(err, pkgErrors.ErrNotFound):
		return err
	}

	return s.decide(id, perm, res)
}

func (s *authorizationService) Project(ctx context.Context, id auth.Identity, projectID int64, perm auth.Permission) error {
	res := auth.Resource{Kind: auth.KindProject, ID: projectID}

	// 全局角色已放行时不需要查询成员关系
	if !auth.Allow(id.Role, perm) {
		ok, err := s.store.ProjectMembers.Exists(ctx, projectID, id.ID)
		if err != nil {
			return err
		}
		res.ProjectMember = ok
	}

	return s.decide(id, perm, res)
}

func (s *authorizationService) Comment(ctx context.Context, id auth.Identity, comment *model.Comment, perm auth.Permission) error {
	res := auth.Resource{Kind: auth.KindComment, ID: comment.ID, OwnerID: comment.UserID}
	return s.decide(id, perm, res)
}

func (s *authorizationService) CanListAllProjects(id auth.Identity) bool {
	return auth.Authorize(id, auth.PermProjectListAll, auth.Resource{Kind: auth.KindProject}).Allowed
}

func (s *authorizationService) decide(id auth.Identity, perm auth.Permission, res auth.Resource) error {
	d := auth.Authorize(id, perm, res)
	if !d.Allowed {
		logger.Debug("访问被拒绝",
			zap.Int64("user_id", id.ID),
			zap.String("role", string(id.Role)),
			zap.String("permission", string(perm)),
			zap.String("resource", string(res.Kind)),
			zap.Int64("resource_id", res.ID),
			zap.String("rule", d.Rule),
		)
	}
	return d.Err()
}
