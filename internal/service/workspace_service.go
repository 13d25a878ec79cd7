package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"collabtrack/internal/dto"
	"collabtrack/internal/model"
	"collabtrack/internal/pkg/auth"
	"collabtrack/internal/pkg/logger"
	"collabtrack/internal/repository"
	"collabtrack/pkg/constants"
	pkgErrors "collabtrack/pkg/errors"
	"collabtrack/pkg/utils"
)

type WorkspaceService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.WorkspaceCreateRequest) (*dto.WorkspaceResponse, error)
	List(ctx context.Context, id auth.Identity) ([]*dto.WorkspaceResponse, error)
	Get(ctx context.Context, id auth.Identity, workspaceID int64) (*dto.WorkspaceResponse, error)
	Update(ctx context.Context, id auth.Identity, workspaceID int64, req *dto.WorkspaceUpdateRequest) (*dto.WorkspaceResponse, error)
	Delete(ctx context.Context, id auth.Identity, workspaceID int64) error
	ListProjects(ctx context.Context, id auth.Identity, workspaceID int64) ([]*dto.ProjectResponse, error)

	ListMembers(ctx context.Context, id auth.Identity, workspaceID int64) ([]*dto.WorkspaceMemberResponse, error)
	// AddMember 重复添加时返回已有成员与 ErrAlreadyMember
	AddMember(ctx context.Context, id auth.Identity, workspaceID int64, req *dto.WorkspaceMemberAddRequest) (*dto.WorkspaceMemberResponse, error)
	UpdateMemberRole(ctx context.Context, id auth.Identity, workspaceID, userID int64, req *dto.WorkspaceMemberUpdateRequest) (*dto.WorkspaceMemberResponse, error)
	RemoveMember(ctx context.Context, id auth.Identity, workspaceID, userID int64) error
}

type workspaceService struct {
	store *repository.Store
	authz AuthorizationService
}

func NewWorkspaceService(store *repository.Store, authz AuthorizationService) WorkspaceService {
	return &workspaceService{store: store, authz: authz}
}

// Create 创建工作空间, 创建者在同一事务中成为 admin 成员
func (s *workspaceService) Create(ctx context.Context, id auth.Identity, req *dto.WorkspaceCreateRequest) (*dto.WorkspaceResponse, error) {
	name := utils.SanitizeText(req.Name)
	if name == "" {
		return nil, pkgErrors.Required("name")
	}

	ws := &model.Workspace{
		Name:        name,
		Description: utils.SanitizeTextPtr(req.Description),
		CreatedBy:   id.ID,
		Settings:    datatypes.JSONMap(req.Settings),
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Workspaces.Create(ctx, ws); err != nil {
			return err
		}
		member := &model.WorkspaceMember{
			WorkspaceID: ws.ID,
			UserID:      id.ID,
			MemberRole:  constants.WorkspaceRoleAdmin,
			JoinedAt:    time.Now().UTC(),
		}
		if err := tx.WorkspaceMembers.Create(ctx, member); err != nil {
			return pkgErrors.ErrIncompleteWorkspaceCreation.WithErr(err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("创建工作空间失败", zap.Int64("user_id", id.ID), zap.Error(err))
		return nil, err
	}

	logger.Info("创建工作空间", zap.Int64("workspace_id", ws.ID), zap.Int64("user_id", id.ID))
	return toWorkspaceResponse(ws, constants.WorkspaceRoleAdmin), nil
}

// List 当前用户加入的全部工作空间
func (s *workspaceService) List(ctx context.Context, id auth.Identity) ([]*dto.WorkspaceResponse, error) {
	memberships, err := s.store.WorkspaceMembers.ListByUser(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	roles := lo.SliceToMap(memberships, func(m *model.WorkspaceMember) (int64, string) {
		return m.WorkspaceID, m.MemberRole
	})

	list, err := s.store.Workspaces.FindByIDs(ctx, lo.Keys(roles))
	if err != nil {
		return nil, err
	}

	return lo.Map(list, func(ws *model.Workspace, _ int) *dto.WorkspaceResponse {
		return toWorkspaceResponse(ws, roles[ws.ID])
	}), nil
}

func (s *workspaceService) Get(ctx context.Context, id auth.Identity, workspaceID int64) (*dto.WorkspaceResponse, error) {
	ws, err := s.store.Workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceView, 0); err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws, s.memberRole(ctx, workspaceID, id.ID)), nil
}

func (s *workspaceService) Update(ctx context.Context, id auth.Identity, workspaceID int64, req *dto.WorkspaceUpdateRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.store.Workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceUpdate, 0); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := utils.SanitizeText(*req.Name)
		if name == "" {
			return nil, pkgErrors.Validation("name", "must not be empty")
		}
		ws.Name = name
	}
	if req.Description != nil {
		ws.Description = utils.SanitizeTextPtr(req.Description)
	}
	if req.Settings != nil {
		ws.Settings = datatypes.JSONMap(req.Settings)
	}

	if err := s.store.Workspaces.Update(ctx, ws); err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws, s.memberRole(ctx, workspaceID, id.ID)), nil
}

// Delete 删除工作空间, 依次删除评论、任务、项目成员、项目、工作空间成员
func (s *workspaceService) Delete(ctx context.Context, id auth.Identity, workspaceID int64) error {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceDelete, 0); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		projects, err := tx.Projects.ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		projectIDs := lo.Map(projects, func(p *model.Project, _ int) int64 { return p.ID })
		if err := deleteProjects(ctx, tx, projectIDs); err != nil {
			return err
		}
		if err := tx.Projects.DeleteByWorkspace(ctx, workspaceID); err != nil {
			return err
		}
		if err := tx.WorkspaceMembers.DeleteByWorkspace(ctx, workspaceID); err != nil {
			return err
		}
		return tx.Workspaces.Delete(ctx, workspaceID)
	})
	if err != nil {
		return err
	}

	logger.Info("删除工作空间", zap.Int64("workspace_id", workspaceID), zap.Int64("user_id", id.ID))
	return nil
}

func (s *workspaceService) ListProjects(ctx context.Context, id auth.Identity, workspaceID int64) ([]*dto.ProjectResponse, error) {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceView, 0); err != nil {
		return nil, err
	}

	projects, err := s.store.Projects.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return lo.Map(projects, func(p *model.Project, _ int) *dto.ProjectResponse { return toProjectResponse(p) }), nil
}

func (s *workspaceService) ListMembers(ctx context.Context, id auth.Identity, workspaceID int64) ([]*dto.WorkspaceMemberResponse, error) {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceMemberView, 0); err != nil {
		return nil, err
	}

	members, err := s.store.WorkspaceMembers.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return lo.Map(members, func(m *model.WorkspaceMember, _ int) *dto.WorkspaceMemberResponse {
		return toWorkspaceMemberResponse(m)
	}), nil
}

func (s *workspaceService) AddMember(ctx context.Context, id auth.Identity, workspaceID int64, req *dto.WorkspaceMemberAddRequest) (*dto.WorkspaceMemberResponse, error) {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.authz.Workspace(ctx, id, workspaceID, auth.PermWorkspaceMemberAdd, req.UserID); err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrNotFound) {
			return nil, pkgErrors.Validation("user_id", "does not reference an existing user")
		}
		return nil, err
	}

	role := strings.TrimSpace(req.MemberRole)
	if role == "" {
		role = constants.WorkspaceRoleMember
	}

	member := &model.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		MemberRole:  role,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.store.WorkspaceMembers.Create(ctx, member); err != nil {
		if errors.Is(err, pkgErrors.ErrAlreadyMember) {
			existing, findErr := s.store.WorkspaceMembers.Find(ctx, workspaceID, user.ID)
			if findErr != nil {
				return nil, findErr
			}
			existing.User = user
			return toWorkspaceMemberResponse(existing), pkgErrors.ErrAlreadyMember
		}
		return nil, err
	}
	member.User = user

	logger.Info("添加工作空间成员",
		zap.Int64("workspace_id", workspaceID),
		zap.Int64("member_id", user.ID),
		zap.String("member_role", role),
	)
	return toWorkspaceMemberResponse(member), nil
}

// UpdateMemberRole 修改成员角色, 唯一管理员不能被降级
func (s *workspaceService) UpdateMemberRole(ctx context.Context, id auth.Identity, workspaceID, userID int64, req *dto.WorkspaceMemberUpdateRequest) (*dto.WorkspaceMemberResponse, error) {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	var member *model.WorkspaceMember
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.WorkspaceMembers.Find(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		if current.MemberRole == constants.WorkspaceRoleAdmin && req.MemberRole != constants.WorkspaceRoleAdmin {
			if err := ensureNotLastAdmin(ctx, tx, workspaceID); err != nil {
				return err
			}
		}
		if err := NewAuthorizationService(tx).Workspace(ctx, id, workspaceID, auth.PermWorkspaceMemberUpdate, userID); err != nil {
			return err
		}
		if err := tx.WorkspaceMembers.UpdateRole(ctx, workspaceID, userID, req.MemberRole); err != nil {
			return err
		}
		current.MemberRole = req.MemberRole
		member = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if user, err := s.store.Users.FindByID(ctx, userID); err == nil {
		member.User = user
	}
	return toWorkspaceMemberResponse(member), nil
}

// RemoveMember 移除成员
// 唯一管理员保护先于权限判断, 无论谁发起都返回 LastAdminProtected
// 事务内的读取都走 tx
func (s *workspaceService) RemoveMember(ctx context.Context, id auth.Identity, workspaceID, userID int64) error {
	if _, err := s.store.Workspaces.FindByID(ctx, workspaceID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		target, err := tx.WorkspaceMembers.Find(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		if target.MemberRole == constants.WorkspaceRoleAdmin {
			if err := ensureNotLastAdmin(ctx, tx, workspaceID); err != nil {
				return err
			}
		}
		if err := NewAuthorizationService(tx).Workspace(ctx, id, workspaceID, auth.PermWorkspaceMemberRemove, userID); err != nil {
			return err
		}
		return tx.WorkspaceMembers.Delete(ctx, workspaceID, userID)
	})
	if err != nil {
		return err
	}

	logger.Info("移除工作空间成员", zap.Int64("workspace_id", workspaceID), zap.Int64("member_id", userID))
	return nil
}

func (s *workspaceService) memberRole(ctx context.Context, workspaceID, userID int64) string {
	member, err := s.store.WorkspaceMembers.Find(ctx, workspaceID, userID)
	if err != nil {
		return ""
	}
	return member.MemberRole
}

func ensureNotLastAdmin(ctx context.Context, tx *repository.Store, workspaceID int64) error {
	admins, err := tx.WorkspaceMembers.CountAdmins(ctx, workspaceID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return pkgErrors.ErrLastAdminProtected
	}
	return nil
}

// deleteProjects 删除项目下的评论、任务与成员, 不删除项目本身
func deleteProjects(ctx context.Context, tx *repository.Store, projectIDs []int64) error {
	if len(projectIDs) == 0 {
		return nil
	}
	taskIDs, err := tx.Tasks.ListIDsByProjects(ctx, projectIDs)
	if err != nil {
		return err
	}
	if err := tx.Comments.DeleteByTasks(ctx, taskIDs); err != nil {
		return err
	}
	if err := tx.Comments.DeleteByProjects(ctx, projectIDs); err != nil {
		return err
	}
	if err := tx.Tasks.DeleteByProjects(ctx, projectIDs); err != nil {
		return err
	}
	return tx.ProjectMembers.DeleteByProjects(ctx, projectIDs)
}
